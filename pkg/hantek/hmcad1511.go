package hantek

// HMCAD1511 register map, as far as the driver touches it.
const (
	hmcadRegSleepPd       = 0x0f
	hmcadRegLVDSTerm      = 0x12
	hmcadRegCGain4        = 0x2a
	hmcadRegCGain21       = 0x2b
	hmcadRegJitterCtrl    = 0x30
	hmcadRegChanNumClkDiv = 0x31
	hmcadRegGainControl   = 0x33
	hmcadRegInpSelChLo    = 0x3a
	hmcadRegInpSelChHi    = 0x3b
	hmcadRegFSCntrl       = 0x55
)

// hmcadPowerDown is the SLEEP_PD bit that parks the converter while the
// channel-count/clock-divider register changes.
const hmcadPowerDown = 0x200
