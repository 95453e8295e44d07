package health

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name       string
		sub        []Status
		wantStatus string
	}{
		{
			name:       "all healthy",
			sub:        []Status{NewHealthy("store", "ok"), NewHealthy("audit", "ok")},
			wantStatus: "healthy",
		},
		{
			name:       "one unhealthy wins",
			sub:        []Status{NewHealthy("store", "ok"), NewUnhealthy("audit", "down")},
			wantStatus: "unhealthy",
		},
		{
			name:       "degraded without unhealthy",
			sub:        []Status{NewHealthy("store", "ok"), NewDegraded("audit", "slow")},
			wantStatus: "degraded",
		},
		{
			name:       "empty is healthy",
			sub:        nil,
			wantStatus: "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("wellgraph", tt.sub)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, "wellgraph", got.Component)
			assert.Len(t, got.SubStatuses, len(tt.sub))
		})
	}
}

func TestMonitor(t *testing.T) {
	m := NewMonitor()
	m.UpdateHealthy("store", "ok")
	m.UpdateUnhealthy("audit", "append failed")

	store, ok := m.Get("store")
	assert.True(t, ok)
	assert.True(t, store.IsHealthy())
	assert.Equal(t, "store", store.Component)

	agg := m.AggregateHealth("wellgraph")
	assert.True(t, agg.IsUnhealthy())
	assert.ElementsMatch(t, []string{"store", "audit"}, m.Components())

	m.UpdateHealthy("audit", "recovered")
	assert.True(t, m.AggregateHealth("wellgraph").IsHealthy())
}

func TestSanitizeMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"url", "dial sqlite://var/db failed", "dial [URL] failed"},
		{"path", "open /var/lib/wellgraph/sessions.db: permission denied", "open [PATH]: permission denied"},
		{"ip and port", "connect 10.0.0.12:5432 refused", "connect [IP][PORT] refused"},
		{"credential", "auth failed: password=hunter2", "auth failed: [REDACTED]"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeMessage(tt.in))
		})
	}
}

func TestFromError(t *testing.T) {
	st := FromError("store", errors.New("open /data/sessions.db: locked"))
	assert.True(t, st.IsUnhealthy())
	assert.Equal(t, "open [PATH]: locked", st.Message)

	assert.True(t, FromError("store", nil).IsHealthy())
}
