package hantek

import (
	"encoding/binary"
	"fmt"
)

// sampleSpacings maps time-per-division to the sample spacing register
// value, in device clock units. Everything at 2.5 µs/div and faster runs the
// ADC flat out; slower scales step through 2, 5, 10, 25, 50, ... up to
// 500000 at 1 s/div.
var sampleSpacings = map[TimePerDivision]uint32{
	TPD1ns:    1,
	TPD2ns:    1,
	TPD5ns:    1,
	TPD10ns:   1,
	TPD25ns:   1,
	TPD50ns:   1,
	TPD100ns:  1,
	TPD250ns:  1,
	TPD500ns:  1,
	TPD1us:    1,
	TPD2500ns: 1,
	TPD5us:    2,
	TPD10us:   5,
	TPD25us:   10,
	TPD50us:   25,
	TPD100us:  50,
	TPD250us:  100,
	TPD500us:  250,
	TPD1ms:    500,
	TPD2500us: 1000,
	TPD5ms:    2500,
	TPD10ms:   5000,
	TPD25ms:   10000,
	TPD50ms:   25000,
	TPD100ms:  50000,
	TPD250ms:  100000,
	TPD500ms:  250000,
	TPD1s:     500000,
}

// SetSamplingRate programs the capture sample spacing from the horizontal
// scale. The register takes spacing minus one.
func (d *Device) SetSamplingRate(tpd TimePerDivision) error {
	spacing, ok := sampleSpacings[tpd]
	if !ok {
		return fmt.Errorf("%w: %d ns/div", ErrBadSampleRate, tpd)
	}

	msg := make([]byte, 6)
	msg[0] = msgSetTimeDivision
	binary.LittleEndian.PutUint32(msg[2:], spacing-1)

	if err := d.sendCommand(msg); err != nil {
		return fmt.Errorf("time division: %w", err)
	}
	return nil
}
