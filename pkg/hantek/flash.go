package hantek

import "fmt"

// ReadBitstreamFlash reads back the 512 KiB FPGA bitstream flash. The flash
// controller only answers 64 bytes per control transfer, so the full region
// takes 8192 round trips. The flash is read-only from the host side.
func (d *Device) ReadBitstreamFlash() ([]byte, error) {
	buf := make([]byte, BitstreamFlashSize)

	for off := 0; off < BitstreamFlashSize; off += flashIOChunkSize {
		n, err := d.tr.ControlIn(reqFlashAccess, valueBitstreamFlash, 0,
			buf[off:off+flashIOChunkSize])
		if err != nil {
			return nil, fmt.Errorf("bitstream flash at 0x%08x: %w", off, err)
		}
		if n != flashIOChunkSize {
			return nil, fmt.Errorf("%w: bitstream flash short read at 0x%08x (%d bytes)",
				ErrControlFail, off, n)
		}
	}

	return buf, nil
}
