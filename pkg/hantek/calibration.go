package hantek

import "math"

// Factory calibration table geometry. The table is read as 16-bit
// little-endian words; each channel owns a 144-word row, and the final word
// is a sentinel that must match for the device to be considered calibrated.
const (
	// CalibrationEntries is the total word count of the calibration table:
	// twelve vertical scales, twelve entries each, four channels, plus the
	// sentinel.
	CalibrationEntries = VPDCount*VPDCount*NumChannels + 1

	calEntriesPerChannel = (CalibrationEntries - 1) / NumChannels

	calibrationSentinel = 0xfbcf
)

// Vertical-offset base offsets into a channel's calibration row, selected by
// volts-per-division band.
const (
	calOffsetLowBand  = 0x3c // 2 mV .. 100 mV
	calOffsetMidBand  = 0x60 // 200 mV .. 1 V
	calOffsetHighBand = 0x84 // 2 V .. 10 V
)

// vpdOffsetScale divides the calibration span for each vertical scale step.
var vpdOffsetScale = [VPDCount]float64{50, 20, 10, 5, 2, 1, 5, 2, 1, 5, 2, 1}

// calRowOffset selects the calibration row offset for a vertical scale.
func calRowOffset(vpd VoltsPerDiv) int {
	switch {
	case vpd <= VPD100mV:
		return calOffsetLowBand
	case vpd <= VPD1V:
		return calOffsetMidBand
	default:
		return calOffsetHighBand
	}
}

// verticalDACCode maps a channel's 0..255 offset level to the 16-bit DAC
// code that centers the trace, using the channel's factory calibration row.
// The row stores the high and low rail measurements for the scale band; the
// midpoint and a scale-dependent excursion define the usable DAC span.
func (d *Device) verticalDACCode(channel int, vpd VoltsPerDiv, level uint8) uint16 {
	row := d.calibration[channel*calEntriesPerChannel : (channel+1)*calEntriesPerChannel]
	offset := calRowOffset(vpd)

	hi := float64(row[offset])
	lo := float64(row[offset+1])

	mid := math.Round((hi + lo) / 2)
	excursion := math.Round((lo - mid) / vpdOffsetScale[vpd])

	upper := mid + excursion
	lower := mid - excursion

	dac := math.Round((upper-lower)/255*float64(level)) + lower
	return uint16(dac)
}
