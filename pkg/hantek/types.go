package hantek

// TimePerDivision selects the horizontal scale. Values are the spacing of
// one graticule division in nanoseconds.
type TimePerDivision uint32

const (
	TPD1ns    TimePerDivision = 1
	TPD2ns    TimePerDivision = 2
	TPD5ns    TimePerDivision = 5
	TPD10ns   TimePerDivision = 10
	TPD25ns   TimePerDivision = 25
	TPD50ns   TimePerDivision = 50
	TPD100ns  TimePerDivision = 100
	TPD250ns  TimePerDivision = 250
	TPD500ns  TimePerDivision = 500
	TPD1us    TimePerDivision = 1000
	TPD2500ns TimePerDivision = 2500
	TPD5us    TimePerDivision = 5000
	TPD10us   TimePerDivision = 10000
	TPD25us   TimePerDivision = 25000
	TPD50us   TimePerDivision = 50000
	TPD100us  TimePerDivision = 100000
	TPD250us  TimePerDivision = 250000
	TPD500us  TimePerDivision = 500000
	TPD1ms    TimePerDivision = 1000000
	TPD2500us TimePerDivision = 2500000
	TPD5ms    TimePerDivision = 5000000
	TPD10ms   TimePerDivision = 10000000
	TPD25ms   TimePerDivision = 25000000
	TPD50ms   TimePerDivision = 50000000
	TPD100ms  TimePerDivision = 100000000
	TPD250ms  TimePerDivision = 250000000
	TPD500ms  TimePerDivision = 500000000
	TPD1s     TimePerDivision = 1000000000
)

// VoltsPerDiv selects the vertical scale, 2 mV to 10 V in a 1/2/5 sequence.
type VoltsPerDiv uint8

const (
	VPD2mV VoltsPerDiv = iota
	VPD5mV
	VPD10mV
	VPD20mV
	VPD50mV
	VPD100mV
	VPD200mV
	VPD500mV
	VPD1V
	VPD2V
	VPD5V
	VPD10V

	// VPDCount is the number of supported vertical scale steps.
	VPDCount = 12
)

// Coupling selects the front-end input coupling.
type Coupling uint8

const (
	CouplingDC Coupling = 0
	CouplingAC Coupling = 1
)

// TriggerMode selects the trigger engine behavior.
type TriggerMode uint8

const (
	TriggerEdge  TriggerMode = 0
	TriggerPulse TriggerMode = 1
	TriggerVideo TriggerMode = 2
	TriggerForce TriggerMode = 0x80
)

// TriggerSlope selects which edge direction arms the trigger.
type TriggerSlope uint8

const (
	TriggerSlopeRise TriggerSlope = 0
	TriggerSlopeFall TriggerSlope = 1
)

// CaptureMode selects how the SDRAM capture buffer is filled.
type CaptureMode uint8

const (
	CaptureAuto   CaptureMode = 0x0
	CaptureRoll   CaptureMode = 0x1
	CaptureSingle CaptureMode = 0x2
)

// NumChannels is the number of analog input channels on the 6000-series.
const NumChannels = 4

// Channel holds the host-side view of one analog channel's front-end
// configuration. The device only ever sees whole-state commits of all four.
type Channel struct {
	Enabled     bool
	VoltsPerDiv VoltsPerDiv
	Coupling    Coupling
	BWLimit     bool

	// Level is the vertical offset code, 0..255. It maps through the
	// factory calibration table to a 16-bit DAC value.
	Level uint8
}

// StatusBits is the decoded scope status byte.
type StatusBits struct {
	Triggered bool
	DataReady bool
	PackState bool
	SDRAMInit bool
}
