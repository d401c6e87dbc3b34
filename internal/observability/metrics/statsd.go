// Package metrics emits StatsD counters and timings for chat traffic and HTTP requests.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Tags are DogStatsD-style key/value tags.
type Tags map[string]string

// Sink receives metrics. Implementations must be safe for concurrent use.
type Sink interface {
	Count(name string, value int64, tags Tags)
	Timing(name string, d time.Duration, tags Tags)
}

// Discard drops every metric.
var Discard Sink = discard{}

type discard struct{}

func (discard) Count(string, int64, Tags)          {}
func (discard) Timing(string, time.Duration, Tags) {}

// StatsdConfig describes the UDP endpoint and naming of a Statsd sink.
type StatsdConfig struct {
	Address string
	Prefix  string
	// Tags are added to every metric; per-call tags win on conflict.
	Tags   Tags
	Logger *slog.Logger
}

// Statsd writes the StatsD line protocol over UDP.
type Statsd struct {
	prefix string
	tags   Tags
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

var _ Sink = (*Statsd)(nil)

// DialStatsd connects to cfg.Address. UDP dialing only resolves the address,
// so an absent collector does not fail startup.
func DialStatsd(ctx context.Context, cfg StatsdConfig) (*Statsd, error) {
	addr := strings.TrimSpace(cfg.Address)
	if addr == "" {
		return nil, fmt.Errorf("statsd address is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(dialCtx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", addr, err)
	}

	return &Statsd{
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "."),
		tags:   cleanTags(cfg.Tags),
		logger: logger,
		conn:   conn,
	}, nil
}

// Count adds value to a counter.
func (s *Statsd) Count(name string, value int64, tags Tags) {
	s.send(name, strconv.FormatInt(value, 10), "c", tags)
}

// Timing records d in milliseconds.
func (s *Statsd) Timing(name string, d time.Duration, tags Tags) {
	ms := strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', -1, 64)
	s.send(name, ms, "ms", tags)
}

// Close releases the socket. Later writes are dropped.
func (s *Statsd) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Statsd) send(name, value, kind string, tags Tags) {
	if s == nil {
		return
	}
	metric := joinName(s.prefix, name)
	if metric == "" {
		return
	}
	line := metric + ":" + value + "|" + kind + tagSuffix(s.tags, tags)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	if _, err := s.conn.Write([]byte(line)); err != nil {
		s.logger.Debug("statsd write failed", "metric", metric, "error", err)
	}
}

// joinName prefixes name and maps characters StatsD collectors reject.
func joinName(prefix, name string) string {
	n := strings.NewReplacer(" ", "_", "/", "_", ":", "_", "|", "_").Replace(strings.TrimSpace(name))
	for strings.Contains(n, "..") {
		n = strings.ReplaceAll(n, "..", ".")
	}
	n = strings.Trim(n, ".")
	switch {
	case n == "":
		return ""
	case prefix == "":
		return n
	default:
		return prefix + "." + n
	}
}

// tagSuffix merges global and local tags into a sorted "|#k:v,..." suffix.
func tagSuffix(global, local Tags) string {
	merged := cleanTags(global)
	for k, v := range cleanTags(local) {
		merged[k] = v
	}
	if len(merged) == 0 {
		return ""
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("|#")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(merged[k])
	}
	return b.String()
}

func cleanTags(tags Tags) Tags {
	out := make(Tags, len(tags))
	for k, v := range tags {
		if key := strings.TrimSpace(k); key != "" {
			out[key] = strings.TrimSpace(v)
		}
	}
	return out
}
