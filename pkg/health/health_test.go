package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func passing() CheckFunc {
	return func(context.Context) error { return nil }
}

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func get(t *testing.T, h *Health, path string) (int, response) {
	t.Helper()
	mux := http.NewServeMux()
	h.Register(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func runN(p *probe, n int) {
	for range n {
		p.run(context.Background())
	}
}

func TestLiveness(t *testing.T) {
	tests := []struct {
		name       string
		runs       int
		wantStatus int
	}{
		{name: "not run yet", runs: 0, wantStatus: http.StatusOK},
		{name: "below failure threshold", runs: failureThreshold - 1, wantStatus: http.StatusOK},
		{name: "at failure threshold", runs: failureThreshold, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			h.AddLivenessCheck("ok", time.Second, passing())
			h.AddLivenessCheck("db", time.Second, failing("connection refused"))
			runN(h.liveness[1], tt.runs)

			status, body := get(t, h, "/livez")
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ok", body.Status)
				assert.Empty(t, body.Checks)
				return
			}
			assert.Equal(t, "unhealthy", body.Status)
			assert.Equal(t, map[string]string{"db": "connection refused"}, body.Checks)
		})
	}
}

func TestReadiness(t *testing.T) {
	h := New()
	h.AddReadinessCheck("catalog", time.Second, passing())

	status, body := get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, status, "not ready before SetReady")
	assert.Contains(t, body.Checks, "_readiness")
	assert.False(t, h.IsReady())

	h.SetReady(true)
	status, _ = get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, h.IsReady())

	h.SetReady(false)
	status, _ = get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, status, "draining")
}

func TestReadiness_FailingCheck(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passing())
	h.AddReadinessCheck("catalog", time.Second, failing("catalog is empty"))
	h.SetReady(true)
	runN(h.readiness[1], failureThreshold)

	status, body := get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "catalog is empty", body.Checks["catalog"])
	assert.NotContains(t, body.Checks, "postgres")
	assert.False(t, h.IsReady())
}

func TestProbe_Recovers(t *testing.T) {
	down := true
	p := newProbe("flaky", time.Second, func(context.Context) error {
		if down {
			return errors.New("down")
		}
		return nil
	})

	runN(p, failureThreshold)
	assert.Equal(t, "down", p.failure())

	down = false
	runN(p, successThreshold)
	assert.Empty(t, p.failure())
}

func TestProbe_Timeout(t *testing.T) {
	p := newProbe("slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	runN(p, failureThreshold)
	assert.Contains(t, p.failure(), "deadline exceeded")
}

func TestStartStop(t *testing.T) {
	h := New()
	h.AddLivenessCheck("fails", time.Second, failing("err"))
	h.AddReadinessCheck("passes", time.Second, passing())
	h.SetReady(true)

	h.Start(context.Background(), 5*time.Millisecond)
	require.Eventually(t, func() bool {
		status, _ := get(t, h, "/livez")
		return status == http.StatusServiceUnavailable
	}, time.Second, 5*time.Millisecond)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				h.IsReady()
				h.LiveEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/livez", nil))
			}
		}()
	}
	wg.Wait()

	h.Stop()
	h.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestPingCheck(t *testing.T) {
	assert.NoError(t, PingCheck(pinger{})(context.Background()))
	assert.EqualError(t, PingCheck(pinger{err: errors.New("refused")})(context.Background()), "refused")
}
