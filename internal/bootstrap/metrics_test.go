package bootstrap

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/aihub-dashboard/config"
	"github.com/target/aihub-dashboard/internal/observability/metrics"
)

func TestBuildMetrics(t *testing.T) {
	disabled := BuildMetrics(context.Background(), config.ObservabilityConfig{}, nil)
	assert.Equal(t, metrics.Discard, disabled.Sink)
	require.NoError(t, disabled.Close())

	bad := BuildMetrics(context.Background(), config.ObservabilityConfig{MetricsEnabled: true}, nil)
	assert.Equal(t, metrics.Discard, bad.Sink)

	srv, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	live := BuildMetrics(context.Background(), config.ObservabilityConfig{
		MetricsEnabled: true,
		StatsdAddress:  srv.LocalAddr().String(),
		Prefix:         "aihub",
		Environment:    "test",
	}, nil)
	assert.IsType(t, &metrics.Statsd{}, live.Sink)
	require.NoError(t, live.Close())
}
