package hantek

import "errors"

// Error kinds surfaced by the driver. Callers match with errors.Is; the
// wrapped detail (if any) carries the underlying USB failure.
var (
	// ErrBadArgs indicates a precondition violation at the API boundary,
	// such as a channel index or volts-per-div value out of range.
	ErrBadArgs = errors.New("hantek: bad arguments")

	// ErrNotFound indicates no attached USB device matched the supported
	// vendor/product IDs.
	ErrNotFound = errors.New("hantek: no supported device found")

	// ErrCantOpen indicates a matching device was present but opening it or
	// claiming its interface failed.
	ErrCantOpen = errors.New("hantek: cannot open device")

	// ErrControlFail indicates a vendor control transfer failed, returned an
	// unexpected length, or the device reported itself not ready to accept a
	// bulk command.
	ErrControlFail = errors.New("hantek: control transfer failed")

	// ErrNotReady indicates a bulk transfer failed or moved fewer bytes than
	// expected.
	ErrNotReady = errors.New("hantek: device not ready")

	// ErrBadSampleRate indicates a time-per-division value outside the
	// supported lookup table.
	ErrBadSampleRate = errors.New("hantek: unsupported sampling rate")

	// ErrInvalChannels indicates zero channels are enabled where at least
	// one is required, or the enabled-channel count is outside 1..4.
	ErrInvalChannels = errors.New("hantek: invalid channel configuration")

	// ErrInvalVoltsPerDiv indicates a volts-per-division value outside 0..11.
	ErrInvalVoltsPerDiv = errors.New("hantek: invalid volts per division")
)
