package hantek

import (
	"encoding/binary"
	"fmt"
)

// triggerMaxLevel is the largest trigger comparator code the FPGA accepts.
const triggerMaxLevel = 0xe4

// triggerLevelScale converts the 0..255 public trigger level into the
// comparator's Q22.10 domain. 201 spans the full 0..255 input onto the
// 28..0xe4 comparator range.
const triggerLevelScale = 201

// triggerLevelOffset positions level zero at the comparator's bottom rail.
const triggerLevelOffset = 28

// Horizontal position words captured from the vendor software. The SDK
// writes these two 48-bit constants regardless of the requested offset;
// until the encoding is reverse engineered the driver reproduces the
// recorded traffic.
const (
	trigHorizLeading  = 0x831c4
	trigHorizTrailing = 0x7d7d0
)

// triggerLevelCode runs the fixed-point conversion from a 0..255 level to
// the comparator code: scale into Q22.10, round at the half bit, then add
// the rail offset. Unsigned integer math throughout keeps it bit-exact with
// the device's expectations.
func triggerLevelCode(level uint8) uint32 {
	pos := (uint32(level) * triggerLevelScale) << 10 >> 8

	var round uint32
	if pos&0x3ff > 0x1ff {
		round = 1
	}
	return pos>>10 + round + triggerLevelOffset
}

// triggerLevelWindow derives the comparator's high and low thresholds from
// the level code and the hysteresis slop. The low threshold reproduces the
// vendor SDK's unsigned underflow handling: a slop larger than the level
// wraps, trips the range check, and lands on 0x40.
func triggerLevelWindow(pos, slop uint32) (high, low uint32) {
	high = pos + slop
	low = pos - slop

	if high > triggerMaxLevel {
		high = triggerMaxLevel
	}
	if low > triggerMaxLevel {
		low = 0x40
	}
	return high, low
}

// put48 little-endian encodes the low 48 bits of v.
func put48(b []byte, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	copy(b[:6], tmp[:6])
}

// ConfigureTrigger programs the trigger engine: horizontal position, source
// multiplexing, comparator level, and mode. channel selects the trigger
// source; level and slop are the comparator setpoint and hysteresis in
// vertical-offset units; horizOffset is the trigger position as a percentage
// of the capture window. horizOffset is range-checked (0..100) but does not
// change the horizontal position message, which always carries the recorded
// constants above.
func (d *Device) ConfigureTrigger(channel int, mode TriggerMode, slope TriggerSlope, coupling Coupling, level, slop uint8, horizOffset uint32) error {
	if channel < 0 || channel >= NumChannels {
		return fmt.Errorf("%w: trigger channel %d", ErrBadArgs, channel)
	}
	if horizOffset > 100 {
		return fmt.Errorf("%w: horizontal offset %d%%", ErrBadArgs, horizOffset)
	}

	enabled := d.enabledCount()
	if enabled < 1 {
		return fmt.Errorf("%w: no channels enabled", ErrInvalChannels)
	}

	if err := d.writeTriggerHorizontal(); err != nil {
		return err
	}
	if err := d.writeTriggerSource(channel, enabled); err != nil {
		return err
	}
	if err := d.writeTriggerLevel(level, slop); err != nil {
		return err
	}

	msg := []byte{msgConfigTrigger, 0x00, byte(mode), byte(slope), byte(coupling), 0x00}
	if err := d.sendCommand(msg); err != nil {
		return fmt.Errorf("trigger mode: %w", err)
	}
	return nil
}

func (d *Device) writeTriggerHorizontal() error {
	msg := make([]byte, 14)
	msg[0] = msgSetTrigHorizPos
	put48(msg[2:8], trigHorizLeading)
	put48(msg[8:14], trigHorizTrailing)

	if err := d.sendCommand(msg); err != nil {
		return fmt.Errorf("trigger horizontal position: %w", err)
	}
	return nil
}

func (d *Device) writeTriggerSource(channel, enabled int) error {
	var mask byte
	switch enabled {
	case 1:
		mask = 0x3
	case 2:
		mask = 0x2
	default:
		mask = 0x1
	}

	var chMask byte
	for i := range d.channels {
		if d.channels[i].Enabled {
			chMask |= 1 << i
		}
	}

	msg := make([]byte, 6)
	msg[0] = msgSetTrigSource
	// Bit 6 is peak-detect, which the driver does not engage.
	msg[2] = chMask<<2 | mask&3
	// msg[4] selects the alternate source path; zero is only valid at or
	// below 250 MSPS.
	if !d.channels[channel].Enabled {
		msg[5] = 1 << 2
	}
	msg[5] |= byte(channel) & 3

	if err := d.sendCommand(msg); err != nil {
		return fmt.Errorf("trigger source: %w", err)
	}
	return nil
}

func (d *Device) writeTriggerLevel(level, slop uint8) error {
	pos := triggerLevelCode(level)
	high, low := triggerLevelWindow(pos, uint32(slop))

	msg := make([]byte, 26)
	msg[0] = msgSetTriggerLevel
	for i := 2; i < 18; i += 4 {
		msg[i] = byte(high)
		msg[i+1] = byte(high)
		msg[i+2] = byte(low)
		msg[i+3] = byte(low)
	}
	for i := 18; i < 26; i++ {
		msg[i] = byte(pos)
	}

	if err := d.sendCommand(msg); err != nil {
		return fmt.Errorf("trigger level: %w", err)
	}
	return nil
}
