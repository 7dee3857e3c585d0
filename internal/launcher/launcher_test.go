package launcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"arsat/finanzas/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "ARSAT_LAUNCHER_HELPER"

// TestMain lets the test binary act as the launched child.
func TestMain(m *testing.M) {
	switch os.Getenv(helperEnv) {
	case "fail":
		fmt.Println("boom: input missing")
		os.Exit(3)
	case "sleep":
		fmt.Println("serving")
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func helper(t *testing.T, mode string) Options {
	t.Helper()
	t.Setenv(helperEnv, mode)
	return Options{
		Executable:  os.Args[0],
		Args:        []string{"-test.run=^$"},
		LogFile:     filepath.Join(t.TempDir(), "logs", "dashboard.log"),
		StartupWait: 300 * time.Millisecond,
	}
}

func TestLaunch_ChildExitsEarly(t *testing.T) {
	logger := logging.NewMockLogger()
	res, err := New(logger, helper(t, "fail")).Launch(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Running)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Output, "boom: input missing")
	assert.True(t, logger.HasEntry("ERROR", "Dashboard exited during startup"))
}

func TestLaunch_ChildStillRunning(t *testing.T) {
	opts := helper(t, "sleep")
	opts.URL = "http://127.0.0.1:1"

	res, err := New(nil, opts).Launch(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Process.Kill() })

	assert.True(t, res.Running)
	assert.False(t, res.Healthy)
	assert.NotZero(t, res.PID)
	assert.Equal(t, opts.URL, res.URL)
}

func TestLaunch_HealthProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), ReadHeaderTimeout: time.Second}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })

	opts := helper(t, "sleep")
	opts.URL = "http://" + ln.Addr().String()

	res, err := New(nil, opts).Launch(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Process.Kill() })

	assert.True(t, res.Running)
	assert.True(t, res.Healthy)
}

func TestLaunch_MissingExecutable(t *testing.T) {
	opts := Options{
		Executable: filepath.Join(t.TempDir(), "does-not-exist"),
		LogFile:    filepath.Join(t.TempDir(), "dashboard.log"),
	}
	_, err := New(nil, opts).Launch(context.Background())
	assert.Error(t, err)
}

func TestLaunch_RequiresLogFile(t *testing.T) {
	_, err := New(nil, Options{Executable: os.Args[0]}).Launch(context.Background())
	assert.Error(t, err)
}

func TestLaunch_Canceled(t *testing.T) {
	opts := helper(t, "sleep")
	opts.StartupWait = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := New(nil, opts).Launch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_DefaultWait(t *testing.T) {
	l := New(nil, Options{})
	assert.Equal(t, DefaultStartupWait, l.options.StartupWait)
}
