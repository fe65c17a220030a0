package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	up   = pingerFunc(func(context.Context) error { return nil })
	down = pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") })
)

func TestRegistry_CheckAll(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		want     Status
	}{
		{
			name:     "empty registry is up",
			registry: NewRegistry(),
			want:     StatusUp,
		},
		{
			name:     "all passing",
			registry: NewRegistry().Critical(NewPingChecker("postgres", up)).Optional(NewPingChecker("opensearch", up)),
			want:     StatusUp,
		},
		{
			name:     "optional failure degrades",
			registry: NewRegistry().Critical(NewPingChecker("postgres", up)).Optional(NewPingChecker("mercadopago", down)),
			want:     StatusDegraded,
		},
		{
			name: "critical failure wins over degraded",
			registry: NewRegistry().
				Optional(NewPingChecker("mercadopago", down)).
				Critical(NewPingChecker("postgres", down)),
			want: StatusDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.registry.CheckAll(context.Background()).Status)
		})
	}
}

func TestRegistry_CheckAll_KeepsOrder(t *testing.T) {
	slow := pingerFunc(func(context.Context) error {
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	resp := NewRegistry().
		Critical(NewPingChecker("postgres", slow)).
		Optional(NewPingChecker("mercadopago", down)).
		CheckAll(context.Background())

	require.Len(t, resp.Checks, 2)
	assert.Equal(t, "postgres", resp.Checks[0].Name)
	assert.True(t, resp.Checks[0].Critical)
	assert.GreaterOrEqual(t, resp.Checks[0].LatencyMs, int64(20))
	assert.Equal(t, "mercadopago", resp.Checks[1].Name)
	assert.False(t, resp.Checks[1].Critical)
	assert.Equal(t, StatusDown, resp.Checks[1].Status)
	assert.Equal(t, "dial tcp: refused", resp.Checks[1].Message)
}

func TestReadinessHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		registry *Registry
		code     int
		status   Status
	}{
		{"degraded still serves", NewRegistry().Optional(NewPingChecker("opensearch", down)), http.StatusOK, StatusDegraded},
		{"critical down", NewRegistry().Critical(NewPingChecker("postgres", down)), http.StatusServiceUnavailable, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := gin.New()
			e.GET("/ready", ReadinessHandler(tt.registry, time.Second))

			w := httptest.NewRecorder()
			e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.code, w.Code)
			var resp ReadinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
		})
	}
}

func TestKafkaChecker_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res := NewKafkaChecker([]string{"127.0.0.1:1"}, "orders.events").Check(ctx)
	assert.Equal(t, StatusDown, res.Status)
	assert.Contains(t, res.Message, "all brokers unreachable")
}
