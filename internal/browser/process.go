package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/dhruvsoni1802/wiredriver/internal/transport"
	"github.com/dhruvsoni1802/wiredriver/internal/wire"
)

type ProcessStatus string

const (
	StatusStarting ProcessStatus = "starting"
	StatusRunning  ProcessStatus = "running"
	StatusStopped  ProcessStatus = "stopped"
	StatusFailed   ProcessStatus = "failed"
)

// ErrNotReady is returned when the driver server never answered its status endpoint
var ErrNotReady = errors.New("driver server did not become ready")

const readyPollInterval = 100 * time.Millisecond

// Process is a local driver server, e.g. chromedriver
type Process struct {
	BinaryPath string        // Path to the driver binary
	Port       int           // Port the driver listens on
	Args       []string      // Extra command line arguments
	Cmd        *exec.Cmd     // Running command
	StartedAt  time.Time     // Time when the process started
	Status     ProcessStatus // Status of the process

	ports       *PortPool
	releaseOnce sync.Once
}

// NewProcess creates a driver process configuration on a free port from the default pool
func NewProcess(binaryPath string, args ...string) (*Process, error) {
	return newProcess(defaultPorts, binaryPath, args...)
}

func newProcess(ports *PortPool, binaryPath string, args ...string) (*Process, error) {
	if binaryPath == "" {
		return nil, fmt.Errorf("driver binary path is empty")
	}

	port, err := ports.Acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to get free port: %w", err)
	}

	return &Process{
		BinaryPath: binaryPath,
		Port:       port,
		Args:       args,
		Status:     StatusStarting,
		ports:      ports,
	}, nil
}

// buildFlags serves the driver under /wd/hub like a remote hub does
func (p *Process) buildFlags() []string {
	flags := []string{
		fmt.Sprintf("--port=%d", p.Port),
		"--url-base=/wd/hub",
	}
	return append(flags, p.Args...)
}

// Start launches the driver server
func (p *Process) Start() error {
	p.Cmd = exec.Command(p.BinaryPath, p.buildFlags()...)

	if err := p.Cmd.Start(); err != nil {
		p.Status = StatusFailed
		p.releasePort()
		return fmt.Errorf("failed to start driver process: %w", err)
	}

	p.Status = StatusRunning
	p.StartedAt = time.Now()

	slog.Info("driver process started", "binary", p.BinaryPath, "port", p.Port, "pid", p.GetPID())
	return nil
}

// WaitReady polls GET /status until the server answers or timeout passes
func (p *Process) WaitReady(t transport.Transport, timeout time.Duration) error {
	probe := wire.NewExecutor(p.URL(), t)
	deadline := time.Now().Add(timeout)

	var lastErr error
	for {
		resp, err := probe.Execute(http.MethodGet, "/status", nil)
		if err == nil && resp.StatusCode == http.StatusOK {
			return nil
		}
		lastErr = err
		if lastErr == nil {
			lastErr = fmt.Errorf("status returned %d", resp.StatusCode)
		}

		if !p.IsAlive() {
			return fmt.Errorf("%w: process exited: %v", ErrNotReady, lastErr)
		}
		if time.Now().Add(readyPollInterval).After(deadline) {
			return fmt.Errorf("%w within %s: %v", ErrNotReady, timeout, lastErr)
		}
		time.Sleep(readyPollInterval)
	}
}

// Stop gracefully terminates the driver process
func (p *Process) Stop() error {
	if p.Cmd == nil || p.Cmd.Process == nil {
		return fmt.Errorf("process was never started")
	}
	defer p.releasePort()

	if err := p.Cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			p.Status = StatusStopped
			slog.Info("driver process already exited", "port", p.Port)
			return nil
		}
		p.Status = StatusFailed
		return fmt.Errorf("failed to send termination signal: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- p.Cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil && err.Error() != "signal: terminated" {
			p.Status = StatusFailed
			return fmt.Errorf("process exit error: %w", err)
		}
	case <-time.After(5 * time.Second):
		// Timeout exceeded, force kill
		if err := p.Cmd.Process.Kill(); err != nil {
			p.Status = StatusFailed
			return fmt.Errorf("failed to force kill process: %w", err)
		}
	}

	p.Status = StatusStopped
	slog.Info("driver process stopped", "port", p.Port)
	return nil
}

// releasePort hands the port back to the pool once
func (p *Process) releasePort() {
	p.releaseOnce.Do(func() {
		p.ports.Release(p.Port)
	})
}

// IsAlive checks if the process is still running
func (p *Process) IsAlive() bool {
	if p.Cmd == nil || p.Cmd.Process == nil {
		return false
	}

	// Signal 0 checks existence without affecting the process
	err := p.Cmd.Process.Signal(syscall.Signal(0))
	return err == nil
}

// GetPID returns the process ID if the process is running
func (p *Process) GetPID() int {
	if p.Cmd != nil && p.Cmd.Process != nil {
		return p.Cmd.Process.Pid
	}
	return 0
}

// URL returns the session endpoint of the driver server
func (p *Process) URL() string {
	return fmt.Sprintf("http://localhost:%d/wd/hub", p.Port)
}
