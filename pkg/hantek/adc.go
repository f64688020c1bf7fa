package hantek

import "fmt"

// pcbRevisionA is the early board spin whose analog front end needs its own
// ADC full-scale settings.
const pcbRevisionA = 105

// coarseGains maps volts-per-division to the HMCAD1511 4-bit coarse gain
// code.
var coarseGains = [VPDCount]uint16{
	0xd, 0xa, 0x7, 0x5, 0x2, 0x0, 0x5, 0x2, 0x0, 0x5, 0x2, 0x0,
}

// fullScaleRange returns the FS_CNTRL byte for the enabled channel count.
// Revision-105 boards carry different front-end scaling.
func fullScaleRange(enabled int, pcbRevision uint32) byte {
	rev105 := pcbRevision == pcbRevisionA
	switch enabled {
	case 1:
		if rev105 {
			return 0
		}
		return 25
	case 2:
		if rev105 {
			return 10
		}
		return 48
	default:
		if rev105 {
			return 55
		}
		return 63
	}
}

// inputSelectMap computes the HMCAD1511 input-select codes for the current
// enabled set. Disabled positions keep the power-on defaults.
func (d *Device) inputSelectMap(enabled int) [NumChannels]byte {
	chanMap := [NumChannels]byte{1, 2, 4, 8}

	cursor := 0
	for i := range d.channels {
		if !d.channels[i].Enabled {
			continue
		}
		sel := byte(0x2 << i)
		switch enabled {
		case 1:
			// A single channel feeds all four internal ADCs.
			for j := range chanMap {
				chanMap[j] = sel
			}
			cursor = NumChannels
		case 2:
			// Each channel feeds an ADC pair, assigned in discovery order.
			chanMap[cursor] = sel
			chanMap[cursor+1] = sel
			cursor += 2
		default:
			// Three or four channels map by position.
			chanMap[i] = sel
		}
		if cursor >= NumChannels {
			break
		}
	}

	return chanMap
}

// coarseGainWrites returns the register/value pair for the coarse gain
// configuration of the current enabled set.
func (d *Device) coarseGainWrites(enabled int) (reg byte, value uint16) {
	if enabled >= 3 {
		// Quad mode: channel i's gain lives in nibble i.
		for i := range d.channels {
			if d.channels[i].Enabled {
				value |= coarseGains[d.channels[i].VoltsPerDiv] << (4 * i)
			}
		}
		return hmcadRegCGain4, value
	}

	// Single and dual mode pack into the low nibbles of CGAIN2_1,
	// increasing channel index in increasing nibble position. Single mode
	// instead uses the high nibble of the high byte.
	if enabled == 1 {
		for i := range d.channels {
			if d.channels[i].Enabled {
				value = coarseGains[d.channels[i].VoltsPerDiv] << 12
				break
			}
		}
		return hmcadRegCGain21, value
	}

	shift := 0
	for i := range d.channels {
		if d.channels[i].Enabled {
			value |= coarseGains[d.channels[i].VoltsPerDiv] << shift
			shift += 4
		}
	}
	return hmcadRegCGain21, value
}

// ConfigureADCRouting reprograms the HMCAD1511 for the currently enabled
// channel set: full-scale range, input multiplexing, clock divider and
// channel count, and coarse gains. Call it after the front-end configuration
// settles; the routing depends on which channels are enabled.
//
// The converter must be powered down across the channel-count change, so the
// sequence order is fixed.
func (d *Device) ConfigureADCRouting() error {
	enabled := d.enabledCount()
	if enabled < 1 || enabled > NumChannels {
		return fmt.Errorf("%w: %d channels enabled", ErrInvalChannels, enabled)
	}

	fs := fullScaleRange(enabled, d.pcbRevision)
	if err := d.hmcadWrite(hmcadRegFSCntrl, uint16(fs)<<8); err != nil {
		return fmt.Errorf("full-scale range: %w", err)
	}

	chanMap := d.inputSelectMap(enabled)
	if err := d.hmcadWrite(hmcadRegInpSelChLo, uint16(chanMap[0])<<8|uint16(chanMap[1])); err != nil {
		return fmt.Errorf("input select lo: %w", err)
	}
	if err := d.hmcadWrite(hmcadRegInpSelChHi, uint16(chanMap[2])<<8|uint16(chanMap[3])); err != nil {
		return fmt.Errorf("input select hi: %w", err)
	}

	var clkDiv, chanMask uint16
	switch enabled {
	case 1:
		clkDiv, chanMask = 0, 0x1
	case 2:
		clkDiv, chanMask = 1, 0x2
	default:
		clkDiv, chanMask = 2, 0x4
	}

	if err := d.hmcadWrite(hmcadRegSleepPd, hmcadPowerDown); err != nil {
		return fmt.Errorf("power down: %w", err)
	}
	if err := d.hmcadWrite(hmcadRegChanNumClkDiv, clkDiv<<8|chanMask); err != nil {
		return fmt.Errorf("channel count: %w", err)
	}
	if err := d.hmcadWrite(hmcadRegSleepPd, 0); err != nil {
		return fmt.Errorf("power up: %w", err)
	}

	gainReg, gainValue := d.coarseGainWrites(enabled)
	if err := d.hmcadWrite(gainReg, gainValue); err != nil {
		return fmt.Errorf("coarse gains: %w", err)
	}

	return nil
}
