package browser

import (
	"net"
	"net/http"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhruvsoni1802/wiredriver/internal/testutil"
)

func TestPortPoolAcquireRelease(t *testing.T) {
	pool := NewPortPool(19515, 19518)

	total, available := pool.Stats()
	assert.Equal(t, 3, total)
	assert.Equal(t, 3, available)

	port, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 19515, port)

	_, available = pool.Stats()
	assert.Equal(t, 2, available)

	pool.Release(port)
	pool.Release(port)
	pool.Release(30000)

	_, available = pool.Stats()
	assert.Equal(t, 3, available)
}

func TestPortPoolExhausted(t *testing.T) {
	pool := NewPortPool(19520, 19521)

	_, err := pool.Acquire()
	require.NoError(t, err)

	_, err = pool.Acquire()
	assert.Error(t, err)
}

func TestPortPoolSkipsBusyPortWithoutLosingIt(t *testing.T) {
	pool := NewPortPool(19560, 19562)

	l, err := net.Listen("tcp", "localhost:19560")
	require.NoError(t, err)

	port, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 19561, port)

	_, available := pool.Stats()
	assert.Equal(t, 1, available)

	require.NoError(t, l.Close())

	port, err = pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 19560, port)
}

func TestStopExitedProcessReleasesPort(t *testing.T) {
	bin, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true binary not available")
	}

	pool := NewPortPool(19570, 19571)
	p, err := newProcess(pool, bin)
	require.NoError(t, err)
	require.NoError(t, p.Start())

	// Reap the process so the termination signal has nothing to reach
	_ = p.Cmd.Wait()

	require.NoError(t, p.Stop())
	assert.Equal(t, StatusStopped, p.Status)

	_, available := pool.Stats()
	assert.Equal(t, 1, available)

	// A second stop does not hand the port out twice
	_ = p.Stop()
	_, available = pool.Stats()
	assert.Equal(t, 1, available)
}

func TestNewProcess(t *testing.T) {
	pool := NewPortPool(19530, 19532)

	_, err := newProcess(pool, "")
	assert.Error(t, err)

	p, err := newProcess(pool, "/usr/bin/chromedriver", "--verbose")
	require.NoError(t, err)

	assert.Equal(t, StatusStarting, p.Status)
	assert.Equal(t, []string{"--port=19530", "--url-base=/wd/hub", "--verbose"}, p.buildFlags())
	assert.Equal(t, "http://localhost:19530/wd/hub", p.URL())
	assert.False(t, p.IsAlive())
	assert.Zero(t, p.GetPID())
	assert.Error(t, p.Stop())
}

func TestStartMissingBinaryReleasesPort(t *testing.T) {
	pool := NewPortPool(19540, 19541)

	p, err := newProcess(pool, "/nonexistent/driver-binary")
	require.NoError(t, err)

	assert.Error(t, p.Start())
	assert.Equal(t, StatusFailed, p.Status)

	_, available := pool.Stats()
	assert.Equal(t, 1, available)
}

func TestWaitReadyNotStarted(t *testing.T) {
	pool := NewPortPool(19550, 19551)
	p, err := newProcess(pool, "/usr/bin/chromedriver")
	require.NoError(t, err)

	ft := testutil.NewFakeTransport().
		On(http.MethodGet, "/wd/hub/status", testutil.Raw(http.StatusServiceUnavailable, nil, ""))

	err = p.WaitReady(ft, time.Second)
	assert.ErrorIs(t, err, ErrNotReady)
}
