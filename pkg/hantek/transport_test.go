package hantek

import (
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// mockTransport scripts the device side of the wire protocol and records
// everything the driver sends. Golden-byte assertions run against the
// recorded bulk payloads.
type mockTransport struct {
	t *testing.T

	readyByte   byte
	idString    []byte
	calibration []byte

	// bulkInReplies is consumed front-first by BulkIn; an empty queue
	// yields zero-filled full-window reads.
	bulkInReplies [][]byte

	events     []string
	preludes   [][]byte
	bulks      [][]byte
	flashReads int
	closed     bool
}

func newMockTransport(t *testing.T) *mockTransport {
	return &mockTransport{
		t:           t,
		readyByte:   0x01,
		idString:    sampleIDString(),
		calibration: sampleCalibration(),
	}
}

func (m *mockTransport) ControlIn(request uint8, value, index uint16, data []byte) (int, error) {
	switch request {
	case reqCheckReady:
		m.events = append(m.events, "ready")
		data[0] = m.readyByte
		return len(data), nil
	case reqGetInfo:
		switch value {
		case valueGetInfoString:
			return copy(data, m.idString), nil
		case valueGetCalibration:
			return copy(data, m.calibration), nil
		}
	case reqFlashAccess:
		m.flashReads++
		return len(data), nil
	}
	return 0, fmt.Errorf("unexpected control-in request 0x%02x value 0x%04x", request, value)
}

func (m *mockTransport) ControlOut(request uint8, value, index uint16, data []byte) (int, error) {
	if request != reqInitialize {
		return 0, fmt.Errorf("unexpected control-out request 0x%02x", request)
	}
	m.events = append(m.events, "init")
	m.preludes = append(m.preludes, append([]byte(nil), data...))
	return len(data), nil
}

func (m *mockTransport) BulkOut(data []byte) (int, error) {
	m.events = append(m.events, fmt.Sprintf("bulk:%02x", data[0]))
	m.bulks = append(m.bulks, append([]byte(nil), data...))
	return len(data), nil
}

func (m *mockTransport) BulkIn(data []byte) (int, error) {
	m.events = append(m.events, "bulkin")
	if len(m.bulkInReplies) > 0 {
		reply := m.bulkInReplies[0]
		m.bulkInReplies = m.bulkInReplies[1:]
		n := copy(data, reply)
		return n, nil
	}
	for i := range data {
		data[i] = 0
	}
	return len(data), nil
}

func (m *mockTransport) Close() error {
	m.closed = true
	return nil
}

// queueBulkIn schedules a bulk-IN reply, padded to a full transfer window.
func (m *mockTransport) queueBulkIn(reply []byte) {
	padded := make([]byte, bulkInWindow)
	copy(padded, reply)
	m.bulkInReplies = append(m.bulkInReplies, padded)
}

// bulkAfterOpen returns the bulk payloads recorded after the open handshake
// (reset + five wake messages + hardware version = 7 commands).
func (m *mockTransport) bulkAfterOpen() [][]byte {
	return m.bulks[7:]
}

// sampleIDString is the identity string recorded from a real PCB-revision
// 1164 scope.
func sampleIDString() []byte {
	id := []byte(
		"DSO\xff\xff\xff6000\xff\xff\xff\xffV1.06\xffD1.00\xffM002C01164D03491201811" +
			"1920181119T033F2\xc001\xff\x07\xff\xff")
	if len(id) != maxInfoStringLen {
		panic(fmt.Sprintf("sample identity string is %d bytes", len(id)))
	}
	return id
}

// Calibration rail values used by sampleCalibration for every channel and
// scale band.
const (
	sampleCalHi = 1800
	sampleCalLo = 2000
)

// sampleCalibration builds a calibration blob with identical rails in every
// band of every channel row and a valid sentinel.
func sampleCalibration() []byte {
	words := make([]uint16, CalibrationEntries)
	for ch := 0; ch < NumChannels; ch++ {
		row := ch * calEntriesPerChannel
		for _, off := range []int{calOffsetLowBand, calOffsetMidBand, calOffsetHighBand} {
			words[row+off] = sampleCalHi
			words[row+off+1] = sampleCalLo
		}
	}
	words[CalibrationEntries-1] = calibrationSentinel

	raw := make([]byte, 2*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint16(raw[2*i:], w)
	}
	return raw
}

// openMockDevice runs the full open handshake against a fresh mock.
func openMockDevice(t *testing.T) (*Device, *mockTransport) {
	t.Helper()
	m := newMockTransport(t)
	d, err := open(m, 4096)
	require.NoError(t, err)
	return d, m
}

// recordSleeps replaces the device's settle sleeps and records the
// requested durations.
func recordSleeps(d *Device) *[]time.Duration {
	var recorded []time.Duration
	d.sleep = func(dur time.Duration) {
		recorded = append(recorded, dur)
	}
	return &recorded
}
