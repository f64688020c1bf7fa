package hantek

import (
	"fmt"
	"time"
)

// Channel configuration byte layout for the front-end shift register.
const (
	chanBWLimitShift  = 7
	chanGT1VShift     = 6
	chanLE1VShift     = 5
	chanGT100mVShift  = 4
	chanLE100mVShift  = 3
	chanCouplingShift = 2
	chanConstantShift = 1
)

// frontendLatchMask keeps only the bits that survive the second commit
// step: bandwidth limit, coupling, and the constant bit. The scale-band bits
// are strobes, not state.
const frontendLatchMask = 1<<chanBWLimitShift | 1<<chanCouplingShift | 1<<chanConstantShift

// frontendConfigByte packs one channel's settings into its shift-register
// configuration byte.
func frontendConfigByte(ch Channel) byte {
	var cfg byte

	if ch.BWLimit {
		cfg |= 1 << chanBWLimitShift
	}
	if ch.VoltsPerDiv > VPD1V {
		cfg |= 1 << chanGT1VShift
	} else {
		cfg |= 1 << chanLE1VShift
	}
	if ch.VoltsPerDiv > VPD100mV {
		cfg |= 1 << chanGT100mVShift
	} else {
		cfg |= 1 << chanLE100mVShift
	}
	if ch.Coupling == CouplingDC {
		cfg |= 1 << chanCouplingShift
	}
	cfg |= 1 << chanConstantShift

	return cfg
}

// ConfigureChannelFrontend updates channel n's vertical scale, coupling,
// bandwidth limit, enable, and vertical offset level, then commits the whole
// four-channel front-end state to the device. The shift-register message is
// whole-state: the scope has no per-channel delta write.
func (d *Device) ConfigureChannelFrontend(n int, vpd VoltsPerDiv, coupling Coupling, bwLimit, enable bool, level uint8) error {
	if n < 0 || n >= NumChannels {
		return fmt.Errorf("%w: channel %d", ErrBadArgs, n)
	}
	if vpd >= VPDCount {
		return fmt.Errorf("%w: volts per division %d", ErrInvalVoltsPerDiv, vpd)
	}

	d.channels[n] = Channel{
		Enabled:     enable,
		VoltsPerDiv: vpd,
		Coupling:    coupling,
		BWLimit:     bwLimit,
		Level:       level,
	}

	if err := d.commitFrontend(); err != nil {
		return err
	}

	return d.writeChannelPosition(n)
}

// commitFrontend performs the two-stage shift-register write that latches
// the analog path. The first message shifts the full configuration; the
// second masks down to the latched bits and strobes the latch. The settle
// sleeps match the vendor SDK's analog timing and are not optional.
func (d *Device) commitFrontend() error {
	var cfg [NumChannels]byte
	for i := range d.channels {
		cfg[i] = frontendConfigByte(d.channels[i])
	}

	msg := []byte{msgSendSPI, 0x00, cfg[0], cfg[1], cfg[2], cfg[3], csFrontend, 0x00}
	if err := d.sendCommand(msg); err != nil {
		return fmt.Errorf("frontend shift: %w", err)
	}
	d.sleep(4 * time.Millisecond)

	latch := []byte{
		msgSendSPI, 0x00,
		cfg[0] & frontendLatchMask,
		cfg[1] & frontendLatchMask,
		cfg[2] & frontendLatchMask,
		cfg[3] & frontendLatchMask,
		csFrontend, 0x01,
	}
	if err := d.sendCommand(latch); err != nil {
		return fmt.Errorf("frontend latch: %w", err)
	}
	d.sleep(50 * time.Millisecond)

	return nil
}

// writeChannelPosition converts the channel's offset level through the
// calibration table and writes the resulting DAC code.
func (d *Device) writeChannelPosition(n int) error {
	ch := d.channels[n]
	dac := d.verticalDACCode(n, ch.VoltsPerDiv, ch.Level)

	msg := []byte{positionMessageIDs[n], 0x00, byte(dac), byte(dac >> 8)}
	if err := d.sendCommand(msg); err != nil {
		return fmt.Errorf("channel %d position: %w", n, err)
	}
	d.sleep(10 * time.Millisecond)

	return nil
}
