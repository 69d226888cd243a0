// Package hostcheck tells a user, while they type, which address the
// hostname they entered currently resolves to.
package hostcheck

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ccheshirecat/routeassist/internal/hostname"
)

const (
	// DefaultDelay is how long input has to stay unchanged before a lookup.
	DefaultDelay = 500 * time.Millisecond
	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 10 * time.Second
)

// Result is what a check reports. A zero IP and Error means there is
// nothing to tell, which is the case for IPs and other non-domain input.
type Result struct {
	Host  string `json:"host"`
	IP    string `json:"ip,omitempty"`
	Error string `json:"error,omitempty"`
}

// Empty reports whether r carries neither an address nor an error.
func (r Result) Empty() bool {
	return r.IP == "" && r.Error == ""
}

// Options configures a Checker.
type Options struct {
	Resolver Resolver
	// Delay defaults to DefaultDelay.
	Delay time.Duration
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// OnResult receives results of checks that were not superseded. It is
	// called from the checker's own goroutines, one call at a time.
	OnResult func(Result)
	Logger   *slog.Logger
}

// Checker debounces hostname checks: only the last Check of a burst reaches
// the resolver. Lookups are never cancelled; results of superseded ones are
// dropped.
type Checker struct {
	resolver Resolver
	delay    time.Duration
	timeout  time.Duration
	onResult func(Result)
	logger   *slog.Logger

	deliver sync.Mutex

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	latest Result
	closed bool
}

// New constructs a Checker.
func New(opts Options) (*Checker, error) {
	if opts.Resolver == nil {
		return nil, errors.New("hostcheck: resolver required")
	}
	c := &Checker{
		resolver: opts.Resolver,
		delay:    opts.Delay,
		timeout:  opts.Timeout,
		onResult: opts.OnResult,
		logger:   opts.Logger,
	}
	if c.delay <= 0 {
		c.delay = DefaultDelay
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Check schedules a check of host, replacing any check not yet started and
// clearing the previous result.
func (c *Checker) Check(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.seq++
	seq := c.seq
	c.latest = Result{}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() { c.run(seq, host) })
}

// Latest returns the result of the most recent completed check, or a zero
// Result while a check is pending.
func (c *Checker) Latest() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Close stops a pending check and drops any result still in flight.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Checker) current(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && seq == c.seq
}

func (c *Checker) run(seq uint64, host string) {
	// A timer that fired while Check was replacing it is stale.
	if !c.current(seq) {
		return
	}

	name := hostname.StripPort(host)
	if !hostname.IsDomain(name) {
		c.publish(seq, Result{Host: host})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	ip, err := c.resolver.LookupHost(ctx, name)
	res := Result{Host: host, IP: ip}
	if err != nil {
		c.logger.Debug("hostname lookup failed", "host", name, "error", err)
		res = Result{Host: host, Error: err.Error()}
	}
	c.publish(seq, res)
}

func (c *Checker) publish(seq uint64, res Result) {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.latest = res
	onResult := c.onResult
	c.mu.Unlock()

	if onResult != nil {
		onResult(res)
	}
}
