package pool

import (
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhruvsoni1802/wiredriver/internal/testutil"
	"github.com/dhruvsoni1802/wiredriver/internal/transport"
)

func TestNewHubPool(t *testing.T) {
	_, err := NewHubPool(nil, testutil.NewFakeTransport())
	assert.Error(t, err)

	pool, err := NewHubPool([]string{"http://a:4444/wd/hub", "http://a:4444/wd/hub/", "http://b:4444/wd/hub"}, testutil.NewFakeTransport())
	require.NoError(t, err)
	assert.Equal(t, 2, pool.GetHubCount())
	assert.NotNil(t, pool.FindHub("http://b:4444/wd/hub"))
	assert.Nil(t, pool.FindHub("http://c:4444/wd/hub"))
}

func TestCheckHealth(t *testing.T) {
	ft := testutil.NewFakeTransport().
		On(http.MethodGet, "a:4444/wd/hub/status", testutil.OK(map[string]any{"build": map[string]string{"version": "2.53"}})).
		On(http.MethodGet, "b:4444/wd/hub/status", testutil.OK(map[string]any{"ready": false})).
		Fail(http.MethodGet, "c:4444/wd/hub/status", errors.New("connection refused"))

	pool, err := NewHubPool([]string{"http://a:4444/wd/hub", "http://b:4444/wd/hub", "http://c:4444/wd/hub"}, ft)
	require.NoError(t, err)

	assert.Equal(t, 1, pool.CheckHealth())

	metrics := pool.GetMetrics()
	assert.Equal(t, 3, metrics.TotalHubs)
	assert.Equal(t, 1, metrics.HealthyHubs)
	assert.True(t, metrics.Hubs[0].Healthy)
	assert.False(t, metrics.Hubs[1].Healthy)
	assert.Contains(t, metrics.Hubs[2].LastError, "connection refused")
}

func TestSelectHubLeastLoaded(t *testing.T) {
	pool, err := NewHubPool([]string{"http://a:4444/wd/hub", "http://b:4444/wd/hub"}, testutil.NewFakeTransport())
	require.NoError(t, err)
	lb := NewLoadBalancer(pool)

	a := pool.FindHub("http://a:4444/wd/hub")
	a.IncrementSessionCount()

	hub, err := lb.SelectHub()
	require.NoError(t, err)
	assert.Equal(t, "http://b:4444/wd/hub", hub.GetURL())
	assert.Equal(t, int64(1), hub.GetSessionCount())

	hub.IncrementSessionCount()

	hub, err = lb.SelectHub()
	require.NoError(t, err)
	assert.Equal(t, "http://a:4444/wd/hub", hub.GetURL())
	assert.Equal(t, int64(2), a.GetSessionCount())
}

func TestSelectHubSpreadsConcurrentSelections(t *testing.T) {
	urls := []string{"http://a:4444/wd/hub", "http://b:4444/wd/hub", "http://c:4444/wd/hub"}
	pool, err := NewHubPool(urls, testutil.NewFakeTransport())
	require.NoError(t, err)
	lb := NewLoadBalancer(pool)

	var wg sync.WaitGroup
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := lb.SelectHub()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	for _, u := range urls {
		assert.Equal(t, int64(3), pool.FindHub(u).GetSessionCount(), u)
	}
}

func TestSelectHubSkipsUnhealthy(t *testing.T) {
	ft := testutil.NewFakeTransport().
		Fail(http.MethodGet, "/status", transport.ErrTransport)

	pool, err := NewHubPool([]string{"http://a:4444/wd/hub"}, ft)
	require.NoError(t, err)
	pool.CheckHealth()

	_, err = NewLoadBalancer(pool).SelectHub()
	assert.ErrorIs(t, err, ErrNoHealthyHub)
}

func TestDecrementSessionCountFloorsAtZero(t *testing.T) {
	hub := NewManagedHub("http://a:4444/wd/hub", testutil.NewFakeTransport())
	hub.DecrementSessionCount()
	assert.Equal(t, int64(0), hub.GetSessionCount())
}
