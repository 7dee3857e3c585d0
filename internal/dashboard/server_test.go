package dashboard

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"arsat/finanzas/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	router, _, _ := newTestRouter(t, purchaseOrdersCSV, transfersCSV)
	logger := logging.NewMockLogger()
	srv := NewServer(ln.Addr().String(), router, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) // #nosec G107 -- test server
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, logger.HasEntry("INFO", "Shutting down dashboard"))
}

func TestServer_RunAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	srv := NewServer(ln.Addr().String(), http.NotFoundHandler(), nil)
	assert.Error(t, srv.Run(context.Background()))
}

func TestNewServer_ErrorLog(t *testing.T) {
	withLogrus := NewServer("127.0.0.1:0", http.NotFoundHandler(), logging.NewLogrusAdapter("info", "text"))
	assert.NotNil(t, withLogrus.srv.ErrorLog)
	assert.Equal(t, "127.0.0.1:0", withLogrus.Addr())

	withMock := NewServer("127.0.0.1:0", http.NotFoundHandler(), logging.NewMockLogger())
	assert.Nil(t, withMock.srv.ErrorLog)
}
