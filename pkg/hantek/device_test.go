package hantek

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenColdStartHappyPath(t *testing.T) {
	d, m := openMockDevice(t)

	assert.Equal(t, uint32(1164), d.PCBRevision())
	assert.Equal(t, "D0349120", d.SerialNumber())
	assert.Equal(t, uint16(calibrationSentinel), d.calibration[CalibrationEntries-1])

	// reset, 5x wake SPI, hardware version.
	require.Len(t, m.bulks, 7)
	assert.Equal(t, []byte{0x0c, 0x00}, m.bulks[0])
	assert.Equal(t, []byte{0x09, 0x00}, m.bulks[6])

	// Every bulk command was wrapped: prelude, ready probe, then the
	// transfer itself.
	for i := 0; i+2 < len(m.events); i++ {
		if m.events[i] == "init" {
			assert.Equal(t, "ready", m.events[i+1])
			assert.Contains(t, m.events[i+2], "bulk:")
		}
	}
}

func TestOpenPreludePayload(t *testing.T) {
	_, m := openMockDevice(t)

	want := []byte{0x0f, 0x03, 0x03, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	for _, prelude := range m.preludes {
		assert.Equal(t, want, prelude)
	}
}

func TestOpenWakeSequence(t *testing.T) {
	_, m := openMockDevice(t)

	want := [][]byte{
		{0x08, 0x00, 0x00, 0x00, 0x77, 0x47, 0x04, 0x00},
		{0x08, 0x00, 0x00, 0x00, 0x03, 0x00, 0x04, 0x00},
		{0x08, 0x00, 0x00, 0x00, 0x65, 0x00, 0x02, 0x00},
		{0x08, 0x00, 0x00, 0x00, 0x28, 0xf1, 0x02, 0x00},
		{0x08, 0x00, 0x00, 0x00, 0x12, 0x38, 0x02, 0x00},
	}
	require.Len(t, m.bulks, 7)
	assert.Equal(t, want, m.bulks[1:6])
}

func TestOpenFPGAVersion(t *testing.T) {
	m := newMockTransport(t)
	m.queueBulkIn([]byte{0x34, 0x12})

	d, err := open(m, 4096)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), d.FPGAVersion())
}

func TestOpenHardwareRevision(t *testing.T) {
	m := newMockTransport(t)
	m.queueBulkIn(nil) // FPGA version

	var hwrev [4]byte
	binary.LittleEndian.PutUint32(hwrev[:], 0xdeadbeef)
	m.queueBulkIn(hwrev[:])

	d, err := open(m, 4096)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), d.HardwareRevision())
}

func TestOpenRejectsBadCalibrationSentinel(t *testing.T) {
	m := newMockTransport(t)
	m.calibration[2*CalibrationEntries-2] = 0x00
	m.calibration[2*CalibrationEntries-1] = 0x00

	_, err := open(m, 4096)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestOpenRejectsBadBufferLength(t *testing.T) {
	for _, length := range []uint32{0, MaxCaptureBufferLen + 1} {
		_, err := open(newMockTransport(t), length)
		assert.ErrorIs(t, err, ErrBadArgs, "length %d", length)
	}
}

func TestReadyHandshakeFailureStopsBulk(t *testing.T) {
	m := newMockTransport(t)
	m.readyByte = 0x00

	_, err := open(m, 4096)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrControlFail)

	// The prelude and probe ran, but the bulk transfer never went out.
	assert.Empty(t, m.bulks)
	assert.Equal(t, []string{"init", "ready"}, m.events)
}

func TestParseRevisionDigitsSkipsNonDigits(t *testing.T) {
	assert.Equal(t, uint32(1164), parseRevisionDigits([]byte("C01164")))
	assert.Equal(t, uint32(12), parseRevisionDigits([]byte("1x2")))
	assert.Equal(t, uint32(0), parseRevisionDigits([]byte("....")))
}

func TestCloseIsIdempotent(t *testing.T) {
	d, m := openMockDevice(t)

	require.NoError(t, d.Close())
	assert.True(t, m.closed)
	require.NoError(t, d.Close())
}

func TestChannelAccessorBounds(t *testing.T) {
	d, _ := openMockDevice(t)

	_, err := d.Channel(-1)
	assert.ErrorIs(t, err, ErrBadArgs)
	_, err = d.Channel(NumChannels)
	assert.ErrorIs(t, err, ErrBadArgs)
	_, err = d.Channel(0)
	assert.NoError(t, err)
}

func TestReadBitstreamFlashChunking(t *testing.T) {
	d, m := openMockDevice(t)

	buf, err := d.ReadBitstreamFlash()
	require.NoError(t, err)
	assert.Len(t, buf, BitstreamFlashSize)
	assert.Equal(t, 8192, m.flashReads)
}
