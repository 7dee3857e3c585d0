// Package launcher starts the dashboard server as a detached child process
// and reports whether it came up.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"arsat/finanzas/internal/fileutils"
	"arsat/finanzas/internal/logging"
)

// DefaultStartupWait is how long the child gets before its liveness is checked.
const DefaultStartupWait = 8 * time.Second

const healthTimeout = 2 * time.Second

// Options configures a launch.
type Options struct {
	// Executable defaults to the running binary.
	Executable string
	Args       []string
	// LogFile receives the child's stdout and stderr.
	LogFile     string
	StartupWait time.Duration
	// URL is reported to the user; URL+"/health" is probed when set.
	URL string
}

// Result describes the child after the startup wait.
type Result struct {
	Running  bool
	Healthy  bool
	URL      string
	PID      int
	ExitCode int
	Output   string
	Process  *os.Process
}

// Launcher starts the dashboard child process.
type Launcher struct {
	logger  logging.Logger
	options Options
	client  *http.Client
}

// New creates a Launcher.
func New(logger logging.Logger, options Options) *Launcher {
	if logger == nil {
		logger = logging.Nop()
	}
	if options.StartupWait <= 0 {
		options.StartupWait = DefaultStartupWait
	}
	return &Launcher{
		logger:  logger.WithField(logging.FieldOperation, "launch"),
		options: options,
		client:  &http.Client{Timeout: healthTimeout},
	}
}

// Options returns the effective launch options.
func (l *Launcher) Options() Options { return l.options }

// Launch starts the child, waits the startup period and reports its state.
// An error means the child could not be started at all.
func (l *Launcher) Launch(ctx context.Context) (*Result, error) {
	exe := l.options.Executable
	if exe == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate executable: %w", err)
		}
		exe = self
	}
	if l.options.LogFile == "" {
		return nil, errors.New("launcher needs a log file for the child output")
	}
	if err := fileutils.WriteFile(l.options.LogFile, nil); err != nil {
		return nil, err
	}
	logFile, err := os.OpenFile(l.options.LogFile, os.O_WRONLY|os.O_APPEND, 0) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open child log: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	cmd := exec.Command(exe, l.options.Args...) // #nosec G204 -- runs this binary
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	l.logger.Info("Starting dashboard",
		logging.F("executable", exe),
		logging.F("args", l.options.Args),
		logging.F(logging.FieldOutputFile, l.options.LogFile))
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start dashboard: %w", err)
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	res := &Result{URL: l.options.URL, PID: cmd.Process.Pid, Process: cmd.Process}
	timer := time.NewTimer(l.options.StartupWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-exited
		return nil, ctx.Err()
	case <-exited:
		res.ExitCode = cmd.ProcessState.ExitCode()
		res.Output = l.readOutput()
		l.logger.Error("Dashboard exited during startup",
			logging.F(logging.FieldStatus, res.ExitCode))
		return res, nil
	case <-timer.C:
	}

	res.Running = true
	res.Healthy = l.probe(ctx)
	l.logger.Info("Dashboard running",
		logging.F("url", res.URL),
		logging.F("pid", res.PID),
		logging.F("healthy", res.Healthy))
	return res, nil
}

func (l *Launcher) probe(ctx context.Context) bool {
	if l.options.URL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.options.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.WithError(err).Warn("Dashboard health check failed")
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

func (l *Launcher) readOutput() string {
	data, err := os.ReadFile(l.options.LogFile)
	if err != nil {
		l.logger.WithError(err).Warn("Failed to read child output")
		return ""
	}
	return string(data)
}
