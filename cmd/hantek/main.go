// Command hantek is a demonstration client for 6000-series scopes: it opens
// the first attached device, reports its identity, and either dumps the FPGA
// bitstream flash or runs a single roll-mode capture.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pvachon/libhantek6xx4/internal/hexdump"
	"github.com/pvachon/libhantek6xx4/pkg/hantek"
)

var (
	bitstreamFile = flag.String("B", "", "dump the FPGA bitstream flash to this file and exit")
	triggerLevel  = flag.Int("t", 128, "trigger level, 0..255")
	captureLen    = flag.Uint("n", 4096, "per-channel capture length in samples")
	dumpBytes     = flag.Int("d", 64, "bytes of each channel buffer to hex dump")
)

func main() {
	flag.Parse()

	fmt.Println("Hantek 6000-series Device Test")

	if *triggerLevel < 0 || *triggerLevel > 255 {
		log.Fatalf("trigger level %d out of range 0..255", *triggerLevel)
	}

	dev, err := hantek.Open(uint32(*captureLen))
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer dev.Close()

	fmt.Printf("PCB revision: %d\n", dev.PCBRevision())
	fmt.Printf("Serial number: %s\n", dev.SerialNumber())
	fmt.Printf("FPGA version: 0x%04x\n", dev.FPGAVersion())
	fmt.Printf("Hardware revision: 0x%08x\n", dev.HardwareRevision())

	if *bitstreamFile != "" {
		if err := dumpBitstream(dev, *bitstreamFile); err != nil {
			log.Fatalf("Bitstream dump failed: %v", err)
		}
		return
	}

	if err := captureOnce(dev, uint8(*triggerLevel)); err != nil {
		log.Fatalf("Capture failed: %v", err)
	}
}

func dumpBitstream(dev *hantek.Device, path string) error {
	fmt.Printf("Reading %d KiB bitstream flash...\n", hantek.BitstreamFlashSize/1024)

	buf, err := dev.ReadBitstreamFlash()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("Wrote %d bytes to %s\n", len(buf), path)
	return nil
}

func captureOnce(dev *hantek.Device, trigLevel uint8) error {
	fmt.Println("Configuring channels...")
	if err := dev.SetSamplingRate(hantek.TPD500us); err != nil {
		return err
	}
	for ch := 0; ch < hantek.NumChannels; ch++ {
		if err := dev.ConfigureChannelFrontend(ch, hantek.VPD50mV, hantek.CouplingAC, false, true, 128); err != nil {
			return err
		}
	}
	if err := dev.ConfigureADCRouting(); err != nil {
		return err
	}
	if err := dev.ConfigureTrigger(0, hantek.TriggerEdge, hantek.TriggerSlopeRise, hantek.CouplingDC, trigLevel, 1, 50); err != nil {
		return err
	}

	fmt.Println("Starting roll capture...")
	if err := dev.StartCapture(hantek.CaptureRoll); err != nil {
		return err
	}

	for {
		ready, err := dev.GetStatus()
		if err != nil {
			return err
		}
		if ready {
			break
		}
	}

	buffers, err := dev.RetrieveBuffer()
	if err != nil {
		return err
	}

	for ch, buf := range buffers {
		if buf == nil {
			continue
		}
		n := *dumpBytes
		if n > len(buf) {
			n = len(buf)
		}
		fmt.Printf("\nChannel %d, first %d of %d samples:\n", ch+1, n, len(buf))
		if err := hexdump.Dump(buf[:n]); err != nil {
			return err
		}
	}

	return nil
}
