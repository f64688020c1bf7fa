// Command scope-server exposes an attached 6000-series scope over a small
// HTTP API, so capture jobs can be driven from scripts or a remote host.
// The device session is single-owner; a mutex serializes all handlers.
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/pvachon/libhantek6xx4/pkg/hantek"
)

var (
	port       = flag.Int("port", 8089, "HTTP listen port")
	captureLen = flag.Uint("n", 4096, "per-channel capture length in samples")
)

type server struct {
	mu  sync.Mutex
	dev *hantek.Device
}

type channelRequest struct {
	VoltsPerDiv uint8 `json:"volts_per_div"`
	Coupling    uint8 `json:"coupling"`
	BWLimit     bool  `json:"bw_limit"`
	Enable      bool  `json:"enable"`
	Level       uint8 `json:"level"`
}

type triggerRequest struct {
	Channel     int    `json:"channel"`
	Mode        uint8  `json:"mode"`
	Slope       uint8  `json:"slope"`
	Coupling    uint8  `json:"coupling"`
	Level       uint8  `json:"level"`
	Slop        uint8  `json:"slop"`
	HorizOffset uint32 `json:"horiz_offset"`
}

type timebaseRequest struct {
	TimePerDivNs uint32 `json:"time_per_div_ns"`
}

type captureRequest struct {
	Mode uint8 `json:"mode"`
}

func (s *server) handleDevice(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"pcb_revision":      s.dev.PCBRevision(),
		"serial_number":     s.dev.SerialNumber(),
		"fpga_version":      s.dev.FPGAVersion(),
		"hardware_revision": s.dev.HardwareRevision(),
	})
}

func (s *server) handleStatus(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.dev.Status()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"triggered":  status.Triggered,
		"data_ready": status.DataReady,
		"pack_state": status.PackState,
		"sdram_init": status.SDRAMInit,
	})
}

func (s *server) handleChannel(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel"})
		return
	}

	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.dev.ConfigureChannelFrontend(n, hantek.VoltsPerDiv(req.VoltsPerDiv),
		hantek.Coupling(req.Coupling), req.BWLimit, req.Enable, req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Routing follows the front end: it depends on the enabled set.
	if err := s.dev.ConfigureADCRouting(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": n})
}

func (s *server) handleTrigger(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.dev.ConfigureTrigger(req.Channel, hantek.TriggerMode(req.Mode),
		hantek.TriggerSlope(req.Slope), hantek.Coupling(req.Coupling),
		req.Level, req.Slop, req.HorizOffset)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": req.Channel})
}

func (s *server) handleTimebase(c *gin.Context) {
	var req timebaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.dev.SetSamplingRate(hantek.TimePerDivision(req.TimePerDivNs)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"time_per_div_ns": req.TimePerDivNs})
}

func (s *server) handleCapture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.dev.StartCapture(hantek.CaptureMode(req.Mode)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for {
		ready, err := s.dev.GetStatus()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if ready {
			break
		}
	}

	buffers, err := s.dev.RetrieveBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	channels := gin.H{}
	for ch, buf := range buffers {
		if buf == nil {
			continue
		}
		channels[fmt.Sprintf("ch%d", ch+1)] = base64.StdEncoding.EncodeToString(buf)
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func listenPort() int {
	if env := os.Getenv("SCOPE_SERVER_PORT"); env != "" {
		if p, err := strconv.Atoi(env); err == nil {
			return p
		}
		log.Printf("Ignoring invalid SCOPE_SERVER_PORT=%q", env)
	}
	return *port
}

func main() {
	flag.Parse()

	dev, err := hantek.Open(uint32(*captureLen))
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer dev.Close()

	srv := &server{dev: dev}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	api.GET("/device", srv.handleDevice)
	api.GET("/status", srv.handleStatus)
	api.POST("/channels/:n", srv.handleChannel)
	api.POST("/trigger", srv.handleTrigger)
	api.POST("/timebase", srv.handleTimebase)
	api.POST("/capture", srv.handleCapture)

	addr := fmt.Sprintf(":%d", listenPort())
	log.Printf("scope-server listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
