package hantek

import (
	"encoding/binary"
	"fmt"
)

// Scope status byte bits.
const (
	statusTriggered = 1 << 0
	statusDataReady = 1 << 1
	statusPackState = 1 << 3
	statusSDRAMInit = 1 << 4
)

// bufferStatusReady is the ready bit in the 40-bit capture buffer status
// word, mirroring the data-ready convention of the status byte.
const bufferStatusReady = 1 << 1

// StartCapture arms the SDRAM capture engine. At least one channel must be
// enabled first.
func (d *Device) StartCapture(mode CaptureMode) error {
	if d.enabledCount() < 1 {
		return fmt.Errorf("%w: no channels enabled", ErrInvalChannels)
	}

	msg := []byte{msgStartCapture, 0x00, byte(mode), 0x00}
	if err := d.sendCommand(msg); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	return nil
}

// GetStatus polls the scope and reports whether captured data is ready for
// readback.
func (d *Device) GetStatus() (dataReady bool, err error) {
	status, err := d.readStatusByte()
	if err != nil {
		return false, err
	}
	return status&statusDataReady != 0, nil
}

// Status polls the scope and decodes the full status byte.
func (d *Device) Status() (StatusBits, error) {
	status, err := d.readStatusByte()
	if err != nil {
		return StatusBits{}, err
	}
	return StatusBits{
		Triggered: status&statusTriggered != 0,
		DataReady: status&statusDataReady != 0,
		PackState: status&statusPackState != 0,
		SDRAMInit: status&statusSDRAMInit != 0,
	}, nil
}

func (d *Device) readStatusByte() (byte, error) {
	if err := d.sendCommand([]byte{msgGetStatus, 0x00}); err != nil {
		return 0, fmt.Errorf("get status: %w", err)
	}
	var status [1]byte
	if err := d.readReply(status[:]); err != nil {
		return 0, fmt.Errorf("get status: %w", err)
	}
	return status[0], nil
}

// RetrieveBuffer reads back the most recent capture and splits it into
// per-channel sample buffers. Disabled channels come back nil; enabled
// channels receive captureBufferLen bytes each.
//
// The call blocks until the capture buffer reports ready, then issues the
// prepare-transfer and readback commands and drains the bulk pipe.
func (d *Device) RetrieveBuffer() ([NumChannels][]byte, error) {
	var out [NumChannels][]byte

	enabled := d.enabledCount()
	if enabled < 1 {
		return out, fmt.Errorf("%w: no channels enabled", ErrInvalChannels)
	}

	for {
		word, err := d.readBufferStatus()
		if err != nil {
			return out, err
		}
		if word&bufferStatusReady != 0 {
			break
		}
	}

	if err := d.sendCommand([]byte{msgBufferPrepare, 0x00, 0x00, 0x00}); err != nil {
		return out, fmt.Errorf("prepare transfer: %w", err)
	}

	// The readback command takes the capture half-length.
	half := uint16(d.captureBufferLen / 2)
	msg := []byte{msgReadbackBuffer, 0x00, byte(half), byte(half >> 8)}
	if err := d.sendCommand(msg); err != nil {
		return out, fmt.Errorf("readback: %w", err)
	}

	raw := make([]byte, int(d.captureBufferLen)*enabled)
	for filled := 0; filled < len(raw); {
		n, err := d.tr.BulkIn(raw[filled:])
		if err != nil {
			return out, fmt.Errorf("sample readback: %w", err)
		}
		if n == 0 {
			return out, fmt.Errorf("%w: sample readback stalled at %d of %d bytes",
				ErrNotReady, filled, len(raw))
		}
		filled += n
	}

	d.deinterleave(raw, &out)
	return out, nil
}

// readBufferStatus issues the buffer-status command and decodes the 5-byte
// reply as a 40-bit little-endian word.
func (d *Device) readBufferStatus() (uint64, error) {
	if err := d.sendCommand([]byte{msgBufferStatus, 0x00}); err != nil {
		return 0, fmt.Errorf("buffer status: %w", err)
	}
	var reply [5]byte
	if err := d.readReply(reply[:]); err != nil {
		return 0, fmt.Errorf("buffer status: %w", err)
	}

	var word [8]byte
	copy(word[:], reply[:])
	return binary.LittleEndian.Uint64(word[:]), nil
}

// deinterleave splits the raw sample stream into per-channel buffers. The
// HMCAD1511 staggers samples across its internal ADCs, so the stream
// round-robins bytes across the enabled channels in index order; a single
// enabled channel owns the whole stream.
func (d *Device) deinterleave(raw []byte, out *[NumChannels][]byte) {
	var order []int
	for i := range d.channels {
		if d.channels[i].Enabled {
			order = append(order, i)
			out[i] = make([]byte, 0, d.captureBufferLen)
		}
	}

	if len(order) == 1 {
		out[order[0]] = append(out[order[0]], raw...)
		return
	}

	for i, b := range raw {
		ch := order[i%len(order)]
		out[ch] = append(out[ch], b)
	}
}
