package hantek

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Capture buffer length limits accepted by Open.
const (
	MinCaptureBufferLen = 1
	MaxCaptureBufferLen = 65536
)

// Identity string byte windows. The string begins with the model preamble
// ("DSO...6000....") and the firmware version fields; the board markings
// follow them.
const (
	idPCBRevisionOffset = 30
	idPCBRevisionLen    = 6
	idSerialOffset      = 36
	idSerialLen         = 8
)

// wakeSequence is the five-command SPI sequence issued after reset. The
// first two words wake the HMCAD1511 (LVDS termination, gain control); the
// remaining three program the ADF4360 PLL latches. The payloads were
// captured from the vendor software and are carried verbatim.
var wakeSequence = []struct {
	word uint32
	cs   byte
}{
	{0x00007747, csHMCAD},
	{0x00000300, csHMCAD},
	{0x00006500, csADF4360},
	{0x000028f1, csADF4360},
	{0x00001238, csADF4360},
}

// Device is an open session with a 6000-series scope. It owns the USB
// transport and the device-side state shadow. A Device is single-owner: only
// one may exist per scope, and it is not safe for concurrent use.
type Device struct {
	tr    Transport
	sleep func(time.Duration)

	captureBufferLen uint32

	fpgaVersion  uint16
	hwRevision   uint32
	pcbRevision  uint32
	serialNumber string
	idString     [maxInfoStringLen]byte

	calibration [CalibrationEntries]uint16

	channels [NumChannels]Channel
}

// Open locates the first attached 6000-series scope, claims it, and walks it
// through the cold-start handshake: reset, FPGA version probe, SPI wake
// sequence, identity readout, calibration readout, hardware revision. The
// returned Device is ready for channel configuration.
//
// captureBufferLen is the per-channel sample count retained by the SDRAM
// capture buffer, 1..65536.
func Open(captureBufferLen uint32) (*Device, error) {
	tr, err := openUSBTransport()
	if err != nil {
		return nil, err
	}
	dev, err := open(tr, captureBufferLen)
	if err != nil {
		tr.Close()
		return nil, err
	}
	return dev, nil
}

// open runs the initialization handshake over an already-claimed transport.
// On failure the transport is left to the caller to release.
func open(tr Transport, captureBufferLen uint32) (*Device, error) {
	if captureBufferLen < MinCaptureBufferLen || captureBufferLen > MaxCaptureBufferLen {
		return nil, fmt.Errorf("%w: capture buffer length %d", ErrBadArgs, captureBufferLen)
	}

	d := &Device{
		tr:               tr,
		sleep:            time.Sleep,
		captureBufferLen: captureBufferLen,
	}

	if err := d.sendCommand([]byte{msgReset, 0x00}); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	// The device has a pending status word after reset; the first two bytes
	// are the FPGA version.
	var version [2]byte
	if err := d.readReply(version[:]); err != nil {
		return nil, fmt.Errorf("FPGA version: %w", err)
	}
	d.fpgaVersion = binary.LittleEndian.Uint16(version[:])

	for i, step := range wakeSequence {
		if err := d.sendSPI(step.word, step.cs); err != nil {
			return nil, fmt.Errorf("wake sequence step %d: %w", i, err)
		}
	}

	if err := d.readIdentity(); err != nil {
		return nil, err
	}

	if err := d.readCalibration(); err != nil {
		return nil, err
	}

	if err := d.sendCommand([]byte{msgGetHWVersion, 0x00}); err != nil {
		return nil, fmt.Errorf("hardware revision: %w", err)
	}
	var hwrev [4]byte
	if err := d.readReply(hwrev[:]); err != nil {
		return nil, fmt.Errorf("hardware revision: %w", err)
	}
	d.hwRevision = binary.LittleEndian.Uint32(hwrev[:])

	return d, nil
}

// readIdentity fetches the 0x47-byte identity string and decodes the PCB
// revision and serial number from the board-marking region.
func (d *Device) readIdentity() error {
	n, err := d.tr.ControlIn(reqGetInfo, valueGetInfoString, 0, d.idString[:])
	if err != nil {
		return fmt.Errorf("identity string: %w", err)
	}
	if n != maxInfoStringLen {
		return fmt.Errorf("%w: identity string truncated (%d of %d bytes)",
			ErrControlFail, n, maxInfoStringLen)
	}

	d.pcbRevision = parseRevisionDigits(
		d.idString[idPCBRevisionOffset : idPCBRevisionOffset+idPCBRevisionLen])

	serial := make([]byte, idSerialLen)
	copy(serial, d.idString[idSerialOffset:idSerialOffset+idSerialLen])
	d.serialNumber = string(serial)

	return nil
}

// parseRevisionDigits folds the ASCII digits of a board-marking window into
// a decimal value, skipping any non-digit bytes.
func parseRevisionDigits(window []byte) uint32 {
	var rev uint32
	for _, b := range window {
		if b < '0' || b > '9' {
			continue
		}
		rev = rev*10 + uint32(b-'0')
	}
	return rev
}

// readCalibration fetches the factory calibration table and validates its
// sentinel. A scope that fails the sentinel check left the factory without
// calibration and cannot produce meaningful vertical offsets.
func (d *Device) readCalibration() error {
	raw := make([]byte, 2*CalibrationEntries)
	n, err := d.tr.ControlIn(reqGetInfo, valueGetCalibration, 0, raw)
	if err != nil {
		return fmt.Errorf("calibration table: %w", err)
	}
	if n != len(raw) {
		return fmt.Errorf("%w: calibration table truncated (%d of %d bytes)",
			ErrControlFail, n, len(raw))
	}

	for i := range d.calibration {
		d.calibration[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}

	if d.calibration[CalibrationEntries-1] != calibrationSentinel {
		return fmt.Errorf("%w: calibration sentinel 0x%04x, device is uncalibrated",
			ErrNotReady, d.calibration[CalibrationEntries-1])
	}
	return nil
}

// Close releases the USB transport. It is idempotent and safe to call on a
// Device whose open failed partway.
func (d *Device) Close() error {
	if d.tr == nil {
		return nil
	}
	err := d.tr.Close()
	d.tr = nil
	return err
}

// FPGAVersion reports the FPGA design version read during open.
func (d *Device) FPGAVersion() uint16 { return d.fpgaVersion }

// HardwareRevision reports the 32-bit hardware revision read during open.
func (d *Device) HardwareRevision() uint32 { return d.hwRevision }

// PCBRevision reports the board revision decoded from the identity string.
// Revision 105 boards use a different ADC full-scale table than later spins.
func (d *Device) PCBRevision() uint32 { return d.pcbRevision }

// SerialNumber reports the 8-character serial decoded from the identity
// string.
func (d *Device) SerialNumber() string { return d.serialNumber }

// Channel returns the host-side shadow of channel n's configuration.
func (d *Device) Channel(n int) (Channel, error) {
	if n < 0 || n >= NumChannels {
		return Channel{}, fmt.Errorf("%w: channel %d", ErrBadArgs, n)
	}
	return d.channels[n], nil
}

// enabledCount returns the number of channels currently enabled.
func (d *Device) enabledCount() int {
	count := 0
	for i := range d.channels {
		if d.channels[i].Enabled {
			count++
		}
	}
	return count
}
