// Package sysinfo gathers host metrics by running the usual Unix tools and
// reading /proc. Every probe fails independently.
package sysinfo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Runner executes an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(out), nil
}

type Probe struct {
	runner   Runner
	readFile func(string) ([]byte, error)
}

func New(r Runner) *Probe {
	if r == nil {
		r = ExecRunner{Timeout: 10 * time.Second}
	}
	return &Probe{runner: r, readFile: os.ReadFile}
}

// NewWithFS lets tests substitute /proc.
func NewWithFS(r Runner, readFile func(string) ([]byte, error)) *Probe {
	p := New(r)
	p.readFile = readFile
	return p
}

func (p *Probe) Disk(ctx context.Context) (string, error) {
	return p.runner.Run(ctx, "df", "-h", "/")
}

func (p *Probe) Memory(ctx context.Context) (string, error) {
	return p.runner.Run(ctx, "free", "-h")
}

// ProcessCount counts the lines of `ps aux` minus the header.
func (p *Probe) ProcessCount(ctx context.Context) (int, error) {
	out, err := p.runner.Run(ctx, "ps", "aux")
	if err != nil {
		return 0, err
	}
	lines := nonEmptyLines(out)
	if len(lines) == 0 {
		return 0, fmt.Errorf("ps: empty output")
	}
	return len(lines) - 1, nil
}

// TopProcesses returns the ps header followed by the n busiest processes by CPU.
func (p *Probe) TopProcesses(ctx context.Context, n int) ([]string, error) {
	out, err := p.runner.Run(ctx, "ps", "aux", "--sort=-%cpu")
	if err != nil {
		return nil, err
	}
	lines := nonEmptyLines(out)
	if len(lines) > n+1 {
		lines = lines[:n+1]
	}
	return lines, nil
}

func (p *Probe) Uptime() (time.Duration, error) {
	b, err := p.readFile("/proc/uptime")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(b))
	if len(fields) == 0 {
		return 0, fmt.Errorf("uptime: malformed /proc/uptime")
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("uptime: %w", err)
	}
	return time.Duration(secs) * time.Second, nil
}

// LoadAverage returns the 1, 5 and 15 minute load averages.
func (p *Probe) LoadAverage() ([3]float64, error) {
	var avg [3]float64
	b, err := p.readFile("/proc/loadavg")
	if err != nil {
		return avg, err
	}
	fields := strings.Fields(string(b))
	if len(fields) < 3 {
		return avg, fmt.Errorf("loadavg: malformed /proc/loadavg")
	}
	for i := 0; i < 3; i++ {
		if avg[i], err = strconv.ParseFloat(fields[i], 64); err != nil {
			return avg, fmt.Errorf("loadavg: %w", err)
		}
	}
	return avg, nil
}

type HostInfo struct {
	Platform  string
	OS        string
	Arch      string
	CPUs      int
	Hostname  string
	GoVersion string
}

func Host() HostInfo {
	h, _ := os.Hostname()
	return HostInfo{
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
		Hostname:  h,
		GoVersion: runtime.Version(),
	}
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
