// Package statsd emits counters and timings in the DogStatsD line format.
package statsd

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

// Sink receives metrics. Implementations must be safe for concurrent use.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Config describes the UDP endpoint and naming for a Client.
type Config struct {
	Address string
	Prefix  string
	Tags    map[string]string // Added to every metric; per-call tags win.
	Logger  *slog.Logger
}

// Client writes one UDP datagram per metric. Write failures are logged at
// debug level and otherwise ignored.
type Client struct {
	prefix string
	tags   map[string]string
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

var _ Sink = (*Client)(nil)

// NewClient dials cfg.Address over UDP.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	addr := strings.TrimSpace(cfg.Address)
	if addr == "" {
		return nil, fmt.Errorf("statsd: address is required")
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

	return &Client{
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "."),
		tags:   cleanTags(cfg.Tags),
		logger: logger,
		conn:   conn,
	}, nil
}

// Count increments a counter.
func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.send(name, strconv.FormatInt(value, 10), "c", tags)
}

// Timing records a duration in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	ms := strconv.FormatFloat(float64(value)/float64(time.Millisecond), 'f', -1, 64)
	c.send(name, ms, "ms", tags)
}

// Close releases the socket. Metrics sent afterwards are dropped.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) send(name, value, kind string, tags map[string]string) {
	if c == nil {
		return
	}
	line := c.format(name, value, kind, tags)
	if line == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write([]byte(line)); err != nil {
		c.logger.Debug("statsd write failed", "metric", name, "error", err)
	}
}

// format renders "prefix.name:value|kind|#k:v,..." with tags sorted by key.
func (c *Client) format(name, value, kind string, tags map[string]string) string {
	metric := metricName(c.prefix, name)
	if metric == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(metric)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte('|')
	b.WriteString(kind)

	merged := cleanTags(c.tags)
	for k, v := range cleanTags(tags) {
		merged[k] = v
	}
	if len(merged) == 0 {
		return b.String()
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
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

func metricName(prefix, name string) string {
	n := strings.NewReplacer(" ", "_", "/", "_").Replace(strings.TrimSpace(name))
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

func cleanTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		if key := strings.TrimSpace(k); key != "" {
			out[key] = strings.TrimSpace(v)
		}
	}
	return out
}
