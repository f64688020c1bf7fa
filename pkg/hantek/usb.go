package hantek

import (
	"fmt"

	"github.com/google/gousb"
)

// USB identity and endpoint layout of the 6000-series scopes.
const (
	VendorID  = 0x04b5
	ProductID = 0x6cde

	epOut = 2
	epIn  = 6
)

// Vendor control requests.
const (
	// reqInitialize is sent before every bulk command. The 10-byte payload
	// begins 0F 03 03 03; the device treats it as a start-of-transaction
	// marker.
	reqInitialize = 0xb3

	// reqCheckReady is a 10-byte IN transfer; the first reply byte is 0x01
	// once the previous bulk command's side effect has been applied. The
	// vendor SDK calls this "USB 2 mode", but it behaves as flow control.
	reqCheckReady = 0xb2

	// reqGetInfo returns the identity string (wValue 0x1580) or the factory
	// calibration table (wValue 0x1600).
	reqGetInfo          = 0xa2
	valueGetInfoString  = 0x1580
	valueGetCalibration = 0x1600

	// reqFlashAccess reads the FPGA bitstream flash, 64 bytes per transfer.
	reqFlashAccess       = 0xf1
	valueBitstreamFlash  = 0x1e00
	flashIOChunkSize     = 0x40
	BitstreamFlashSize   = 0x80000
	maxInfoStringLen     = 0x47
	checkReadyReplyLen   = 10
	initializePayloadLen = 10
)

// bulkInWindow is the smallest unit the device will answer a bulk IN with.
// Short replies are read into a full window and the caller gets the prefix.
const bulkInWindow = 64

// Transport carries the three USB primitives the driver is built on. The
// production implementation wraps gousb; tests substitute a recording mock.
type Transport interface {
	// ControlIn issues a vendor device-to-host control transfer.
	ControlIn(request uint8, value, index uint16, data []byte) (int, error)

	// ControlOut issues a vendor host-to-device control transfer.
	ControlOut(request uint8, value, index uint16, data []byte) (int, error)

	// BulkOut writes to the command endpoint.
	BulkOut(data []byte) (int, error)

	// BulkIn blocks until data has been received from the data endpoint.
	BulkIn(data []byte) (int, error)

	Close() error
}

// usbTransport is the gousb-backed Transport.
type usbTransport struct {
	ctx    *gousb.Context
	device *gousb.Device
	config *gousb.Config
	intf   *gousb.Interface
	out    *gousb.OutEndpoint
	in     *gousb.InEndpoint
}

// openUSBTransport locates the first attached scope and claims interface 0.
func openUSBTransport() (Transport, error) {
	ctx := gousb.NewContext()

	device, err := ctx.OpenDeviceWithVIDPID(VendorID, ProductID)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("%w: %v", ErrCantOpen, err)
	}
	if device == nil {
		ctx.Close()
		return nil, fmt.Errorf("%w (VID:0x%04x PID:0x%04x)", ErrNotFound, VendorID, ProductID)
	}

	config, err := device.Config(1)
	if err != nil {
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("%w: set configuration: %v", ErrCantOpen, err)
	}

	intf, err := config.Interface(0, 0)
	if err != nil {
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("%w: claim interface: %v", ErrCantOpen, err)
	}

	out, err := intf.OutEndpoint(epOut)
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("%w: OUT endpoint: %v", ErrCantOpen, err)
	}

	in, err := intf.InEndpoint(epIn)
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("%w: IN endpoint: %v", ErrCantOpen, err)
	}

	return &usbTransport{
		ctx:    ctx,
		device: device,
		config: config,
		intf:   intf,
		out:    out,
		in:     in,
	}, nil
}

func (t *usbTransport) ControlIn(request uint8, value, index uint16, data []byte) (int, error) {
	n, err := t.device.Control(gousb.ControlIn|gousb.ControlVendor|gousb.ControlDevice,
		request, value, index, data)
	if err != nil {
		return n, fmt.Errorf("%w: request 0x%02x: %v", ErrControlFail, request, err)
	}
	return n, nil
}

func (t *usbTransport) ControlOut(request uint8, value, index uint16, data []byte) (int, error) {
	n, err := t.device.Control(gousb.ControlOut|gousb.ControlVendor|gousb.ControlDevice,
		request, value, index, data)
	if err != nil {
		return n, fmt.Errorf("%w: request 0x%02x: %v", ErrControlFail, request, err)
	}
	return n, nil
}

func (t *usbTransport) BulkOut(data []byte) (int, error) {
	n, err := t.out.Write(data)
	if err != nil {
		return n, fmt.Errorf("%w: bulk write: %v", ErrNotReady, err)
	}
	return n, nil
}

func (t *usbTransport) BulkIn(data []byte) (int, error) {
	n, err := t.in.Read(data)
	if err != nil {
		return n, fmt.Errorf("%w: bulk read: %v", ErrNotReady, err)
	}
	return n, nil
}

// Close releases the claimed interface, configuration, device, and USB
// context in the reverse of acquisition order. Safe on partially opened
// transports.
func (t *usbTransport) Close() error {
	if t.intf != nil {
		t.intf.Close()
		t.intf = nil
	}
	if t.config != nil {
		t.config.Close()
		t.config = nil
	}
	if t.device != nil {
		t.device.Close()
		t.device = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
	return nil
}
