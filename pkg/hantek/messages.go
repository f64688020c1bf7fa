package hantek

import (
	"fmt"
	"time"
)

// Message IDs carried in byte 0 of a bulk-OUT payload. The FPGA command
// dispatcher demultiplexes on these. Note the gap at 0x03: channel 3's
// position write is 0x04, and 0x03 is start-capture.
const (
	msgPositionCh1     = 0x00
	msgPositionCh2     = 0x01
	msgPositionCh3     = 0x02
	msgStartCapture    = 0x03
	msgPositionCh4     = 0x04
	msgReadbackBuffer  = 0x05
	msgGetStatus       = 0x06
	msgSetTriggerLevel = 0x07
	msgSendSPI         = 0x08
	msgGetHWVersion    = 0x09
	msgReset           = 0x0c
	msgBufferStatus    = 0x0d
	msgBufferPrepare   = 0x0e
	msgSetTimeDivision = 0x0f
	msgSetTrigHorizPos = 0x10
	msgConfigTrigger   = 0x11
	msgSetTrigSource   = 0x12
	msgSetSpecialTrig  = 0x13
)

// Chip selects for the SEND_SPI sub-bus, carried in byte 6 of the envelope.
const (
	csFrontend = 0x01 // analog front-end shift register
	csADF4360  = 0x02 // PLL latches
	csHMCAD    = 0x04 // HMCAD1511 ADC registers
)

// positionMessageIDs maps channel index to its vertical-position message ID.
var positionMessageIDs = [NumChannels]byte{
	msgPositionCh1, msgPositionCh2, msgPositionCh3, msgPositionCh4,
}

// sendCommand performs the full bulk-OUT envelope for one logical command:
// the INITIALIZE control prelude, the CHECK_READY probe, then the bulk
// transfer itself. Every command the driver issues goes through here; it is
// the single place the prelude/ready ordering is enforced.
func (d *Device) sendCommand(payload []byte) error {
	prelude := [initializePayloadLen]byte{0x0f, 0x03, 0x03, 0x03}
	if _, err := d.tr.ControlOut(reqInitialize, 0, 0, prelude[:]); err != nil {
		return fmt.Errorf("command prelude: %w", err)
	}

	var ready [checkReadyReplyLen]byte
	if _, err := d.tr.ControlIn(reqCheckReady, 0, 0, ready[:]); err != nil {
		return fmt.Errorf("readiness probe: %w", err)
	}
	if ready[0] != 0x01 {
		return fmt.Errorf("%w: device not ready for command 0x%02x", ErrControlFail, payload[0])
	}

	n, err := d.tr.BulkOut(payload)
	if err != nil {
		return err
	}
	if n != len(payload) {
		return fmt.Errorf("%w: short bulk write (%d of %d bytes)", ErrNotReady, n, len(payload))
	}
	return nil
}

// readReply reads a short bulk-IN reply. The device always answers with a
// full transfer window; only the first len(out) bytes are meaningful.
func (d *Device) readReply(out []byte) error {
	window := make([]byte, bulkInWindow)
	n, err := d.tr.BulkIn(window)
	if err != nil {
		return err
	}
	if n < len(out) {
		return fmt.Errorf("%w: short bulk read (%d of %d bytes)", ErrNotReady, n, len(out))
	}
	copy(out, window[:len(out)])
	return nil
}

// sendSPI tunnels a 32-bit SPI word to the peripheral selected by cs. The
// word's most significant byte is clocked onto the wire first.
func (d *Device) sendSPI(word uint32, cs byte) error {
	msg := []byte{
		msgSendSPI, 0x00,
		byte(word >> 24), byte(word >> 16), byte(word >> 8), byte(word),
		cs, 0x00,
	}
	return d.sendCommand(msg)
}

// hmcadWrite writes a 16-bit value to an HMCAD1511 register over the SPI
// sub-bus. The register address is clocked first, then the value MSB-first.
// The converter needs 3 ms to latch after every register write.
func (d *Device) hmcadWrite(reg byte, value uint16) error {
	word := uint32(reg)<<24 | uint32(value)<<8
	if err := d.sendSPI(word, csHMCAD); err != nil {
		return fmt.Errorf("HMCAD1511 reg 0x%02x: %w", reg, err)
	}
	d.sleep(3 * time.Millisecond)
	return nil
}
