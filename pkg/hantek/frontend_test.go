package hantek

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontendConfigByte(t *testing.T) {
	cases := []struct {
		name string
		ch   Channel
		want byte
	}{
		{
			name: "50mV AC no limit",
			ch:   Channel{VoltsPerDiv: VPD50mV, Coupling: CouplingAC},
			want: 0x2a,
		},
		{
			name: "10V DC with limit",
			ch:   Channel{VoltsPerDiv: VPD10V, Coupling: CouplingDC, BWLimit: true},
			want: 0xd6,
		},
		{
			name: "200mV DC",
			ch:   Channel{VoltsPerDiv: VPD200mV, Coupling: CouplingDC},
			want: 0x36,
		},
		{
			name: "2mV AC",
			ch:   Channel{VoltsPerDiv: VPD2mV, Coupling: CouplingAC},
			want: 0x2a,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, frontendConfigByte(tc.ch))
		})
	}
}

func TestFrontendCommitGoldenBytes(t *testing.T) {
	d, m := openMockDevice(t)
	recordSleeps(d)

	require.NoError(t, d.ConfigureChannelFrontend(0, VPD50mV, CouplingAC, false, true, 128))

	bulks := m.bulkAfterOpen()
	require.Len(t, bulks, 3)

	// Step one shifts the full configuration; the three untouched channels
	// still carry their zero-value state (2 mV, DC, disabled).
	assert.Equal(t, []byte{0x08, 0x00, 0x2a, 0x2e, 0x2e, 0x2e, 0x01, 0x00}, bulks[0])

	// Step two masks down to bandwidth, coupling, and the constant bit,
	// then strobes the latch.
	assert.Equal(t, []byte{0x08, 0x00, 0x02, 0x06, 0x06, 0x06, 0x01, 0x01}, bulks[1])
}

func TestFrontendCommitWholeState(t *testing.T) {
	d, m := openMockDevice(t)
	recordSleeps(d)

	require.NoError(t, d.ConfigureChannelFrontend(0, VPD10V, CouplingDC, true, true, 0))
	require.NoError(t, d.ConfigureChannelFrontend(2, VPD50mV, CouplingAC, false, true, 0))

	bulks := m.bulkAfterOpen()
	require.Len(t, bulks, 6)

	// The second commit re-sends channel 0's configuration untouched.
	assert.Equal(t, []byte{0x08, 0x00, 0xd6, 0x2e, 0x2a, 0x2e, 0x01, 0x00}, bulks[3])
	assert.Equal(t, []byte{0x08, 0x00, 0x86, 0x06, 0x02, 0x06, 0x01, 0x01}, bulks[4])
}

func TestFrontendPositionWrite(t *testing.T) {
	d, m := openMockDevice(t)
	recordSleeps(d)

	// With rails 1800/2000 the calibration midpoint is 1900 and the 50 mV
	// excursion is 50; level 128 lands on the midpoint DAC code 1900.
	require.NoError(t, d.ConfigureChannelFrontend(1, VPD50mV, CouplingAC, false, true, 128))

	bulks := m.bulkAfterOpen()
	require.Len(t, bulks, 3)
	assert.Equal(t, []byte{0x01, 0x00, 0x6c, 0x07}, bulks[2])
}

func TestFrontendPositionMessageIDs(t *testing.T) {
	// Channel 3's position message skips 0x03, which is start-capture.
	for n, want := range []byte{0x00, 0x01, 0x02, 0x04} {
		d, m := openMockDevice(t)
		recordSleeps(d)

		require.NoError(t, d.ConfigureChannelFrontend(n, VPD2V, CouplingDC, false, true, 0))
		bulks := m.bulkAfterOpen()
		require.Len(t, bulks, 3)
		assert.Equal(t, want, bulks[2][0], "channel %d", n)
	}
}

func TestFrontendPositionLevelExtremes(t *testing.T) {
	// Level 0 pins the DAC to the lower rail, 255 to the upper.
	d, m := openMockDevice(t)
	recordSleeps(d)

	require.NoError(t, d.ConfigureChannelFrontend(0, VPD50mV, CouplingAC, false, true, 0))
	require.NoError(t, d.ConfigureChannelFrontend(0, VPD50mV, CouplingAC, false, true, 255))

	bulks := m.bulkAfterOpen()
	require.Len(t, bulks, 6)
	assert.Equal(t, []byte{0x00, 0x00, 0x3a, 0x07}, bulks[2]) // 1850
	assert.Equal(t, []byte{0x00, 0x00, 0x9e, 0x07}, bulks[5]) // 1950
}

func TestFrontendArgumentValidation(t *testing.T) {
	d, _ := openMockDevice(t)

	err := d.ConfigureChannelFrontend(4, VPD2mV, CouplingDC, false, true, 0)
	assert.ErrorIs(t, err, ErrBadArgs)

	err = d.ConfigureChannelFrontend(0, VoltsPerDiv(12), CouplingDC, false, true, 0)
	assert.ErrorIs(t, err, ErrInvalVoltsPerDiv)
}

func TestFrontendCommitTiming(t *testing.T) {
	d, _ := openMockDevice(t)
	sleeps := recordSleeps(d)

	require.NoError(t, d.ConfigureChannelFrontend(0, VPD50mV, CouplingAC, false, true, 128))

	// Shift settle, latch settle, position settle — in that order, never
	// shorter than the SDK's analog timing.
	require.Len(t, *sleeps, 3)
	assert.GreaterOrEqual(t, (*sleeps)[0], 4*time.Millisecond)
	assert.GreaterOrEqual(t, (*sleeps)[1], 50*time.Millisecond)
	assert.GreaterOrEqual(t, (*sleeps)[2], 10*time.Millisecond)
}
