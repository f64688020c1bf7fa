// Package hantek drives Hantek 6000-series four-channel USB oscilloscopes
// (VID 0x04b5, PID 0x6cde) over their proprietary vendor protocol.
//
// The driver speaks one bulk-OUT endpoint, one bulk-IN endpoint, and a
// handful of vendor control transfers. Every command rides a fixed envelope:
// an INITIALIZE control prelude, a CHECK_READY flow-control probe, then the
// bulk payload itself. On the device side the payloads fan out to an
// HMCAD1511 ADC, an ADF4360 PLL, the analog front-end shift registers, the
// trigger logic, and the SDRAM capture buffer.
//
// A typical capture:
//
//	dev, err := hantek.Open(4096)
//	if err != nil { ... }
//	defer dev.Close()
//
//	dev.SetSamplingRate(hantek.TPD500us)
//	for ch := 0; ch < hantek.NumChannels; ch++ {
//		dev.ConfigureChannelFrontend(ch, hantek.VPD50mV, hantek.CouplingAC, false, true, 128)
//	}
//	dev.ConfigureADCRouting()
//	dev.ConfigureTrigger(0, hantek.TriggerEdge, hantek.TriggerSlopeRise, hantek.CouplingDC, 128, 1, 50)
//	dev.StartCapture(hantek.CaptureRoll)
//
//	for {
//		ready, err := dev.GetStatus()
//		if err != nil { ... }
//		if ready {
//			break
//		}
//	}
//	buffers, err := dev.RetrieveBuffer()
//
// A Device is single-owner and not safe for concurrent use. Calls block for
// the full duration of their USB traffic and analog settling sleeps.
package hantek
