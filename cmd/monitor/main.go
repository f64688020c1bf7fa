// Command monitor is an interactive status console for an attached
// 6000-series scope: it polls the capture status bits alongside host CPU and
// memory load while a capture runs.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	psutil "github.com/shirou/gopsutil/v3/cpu"
	psmem "github.com/shirou/gopsutil/v3/mem"

	"github.com/pvachon/libhantek6xx4/pkg/hantek"
)

var (
	pollInterval = flag.Duration("interval", 250*time.Millisecond, "status poll interval")
	captureLen   = flag.Uint("n", 4096, "per-channel capture length in samples")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	idleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// tickMsg drives one poll cycle.
type tickMsg time.Time

// statusMsg carries one poll's results back into the model.
type statusMsg struct {
	status  hantek.StatusBits
	cpuPct  float64
	memPct  float64
	pollErr error
}

type model struct {
	dev     *hantek.Device
	spin    spinner.Model
	status  hantek.StatusBits
	cpuPct  float64
	memPct  float64
	polls   int
	lastErr error
}

func newModel(dev *hantek.Device) model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return model{dev: dev, spin: spin}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(*pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) poll() tea.Msg {
	var msg statusMsg

	msg.status, msg.pollErr = m.dev.Status()

	if pct, err := psutil.Percent(0, false); err == nil && len(pct) > 0 {
		msg.cpuPct = pct[0]
	}
	if vm, err := psmem.VirtualMemory(); err == nil {
		msg.memPct = vm.UsedPercent
	}

	return msg
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.poll

	case statusMsg:
		m.polls++
		m.status = msg.status
		m.cpuPct = msg.cpuPct
		m.memPct = msg.memPct
		m.lastErr = msg.pollErr
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func statusLine(label string, set bool) string {
	if set {
		return okStyle.Render(fmt.Sprintf("%-10s yes", label))
	}
	return idleStyle.Render(fmt.Sprintf("%-10s no", label))
}

func (m model) View() string {
	header := titleStyle.Render("Hantek 6000 Monitor") + "  " + m.spin.View()

	device := panelStyle.Render(fmt.Sprintf(
		"PCB rev: %d   Serial: %s\nFPGA: 0x%04x   Polls: %d",
		m.dev.PCBRevision(), m.dev.SerialNumber(), m.dev.FPGAVersion(), m.polls))

	status := panelStyle.Render(
		statusLine("triggered", m.status.Triggered) + "\n" +
			statusLine("data", m.status.DataReady) + "\n" +
			statusLine("pack", m.status.PackState) + "\n" +
			statusLine("sdram", m.status.SDRAMInit))

	host := panelStyle.Render(fmt.Sprintf("host cpu: %5.1f%%\nhost mem: %5.1f%%", m.cpuPct, m.memPct))

	body := lipgloss.JoinHorizontal(lipgloss.Top, device, status, host)

	footer := idleStyle.Render("q to quit")
	if m.lastErr != nil {
		footer = errStyle.Render(fmt.Sprintf("poll error: %v", m.lastErr))
	}

	return header + "\n" + body + "\n" + footer + "\n"
}

func main() {
	flag.Parse()

	dev, err := hantek.Open(uint32(*captureLen))
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer dev.Close()

	p := tea.NewProgram(newModel(dev))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "monitor: %v\n", err)
		os.Exit(1)
	}
}
