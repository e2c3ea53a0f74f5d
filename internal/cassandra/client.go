// Package cassandra owns the process-wide session to the storage cluster.
// One Client is constructed at startup, handed by reference to every store,
// and closed once at shutdown.
package cassandra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"github.com/wirechat/messenger/internal/logger"
)

// Executor is the query surface the stores depend on. Rows come back as
// column-name keyed mappings, one per row.
type Executor interface {
	Execute(ctx context.Context, stmt string, params ...interface{}) ([]map[string]interface{}, error)
}

// Config carries the connection settings for a Client. An empty Keyspace
// connects without one, which the provisioner needs to create it.
type Config struct {
	Host     string
	Port     int
	Keyspace string

	// MaxRetries bounds ConnectWithRetry; 0 means retry until the context
	// is cancelled.
	MaxRetries uint
	RetryDelay time.Duration

	// Timeout applies per query.
	Timeout time.Duration
}

// Client wraps a single shared gocql session. The session is safe for
// concurrent use; Client adds lazy connection with retry on top.
type Client struct {
	cfg Config
	log *logger.Logger

	mu      sync.Mutex
	session *gocql.Session
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		log: logger.New("cassandra"),
	}
}

// Connect establishes the session, failing immediately on error. It is a
// no-op when a session already exists.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	if c.session != nil {
		return nil
	}

	cluster := gocql.NewCluster(c.cfg.Host)
	cluster.Port = c.cfg.Port
	cluster.Keyspace = c.cfg.Keyspace
	cluster.Consistency = gocql.Quorum
	if c.cfg.Timeout > 0 {
		cluster.Timeout = c.cfg.Timeout
		cluster.ConnectTimeout = c.cfg.Timeout
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return fmt.Errorf("connecting to cassandra at %s:%d: %w", c.cfg.Host, c.cfg.Port, err)
	}

	c.session = session
	c.log.Info("connected to cassandra at %s:%d, keyspace %q", c.cfg.Host, c.cfg.Port, c.cfg.Keyspace)
	return nil
}

// ConnectWithRetry keeps attempting Connect with a fixed delay between
// attempts. Intended for startup: with MaxRetries of 0 it never gives up on
// its own, so callers that need a deadline must cancel the context.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	var attempts uint
	for {
		err := c.Connect()
		if err == nil {
			return nil
		}

		attempts++
		c.log.Warn("connection attempt %d failed: %v", attempts, err)

		if c.cfg.MaxRetries > 0 && attempts >= c.cfg.MaxRetries {
			return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
		}

		c.log.Info("retrying in %s...", c.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.RetryDelay):
		}
	}
}

func (c *Client) ensureSession(ctx context.Context) (*gocql.Session, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session != nil {
		return session, nil
	}

	if err := c.ConnectWithRetry(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, nil
}

// Execute runs a statement synchronously and returns the resulting rows as
// column-keyed mappings. A connection is established through the retry path
// if none exists yet.
func (c *Client) Execute(ctx context.Context, stmt string, params ...interface{}) ([]map[string]interface{}, error) {
	session, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	query := session.Query(stmt, params...).WithContext(ctx)
	defer query.Release()

	iter := query.Iter()
	rows, err := iter.SliceMap()
	if err != nil {
		iter.Close()
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	return rows, nil
}

// ExecuteAsync runs a statement fire-and-forget. Failures are logged, not
// returned.
func (c *Client) ExecuteAsync(stmt string, params ...interface{}) {
	go func() {
		ctx := context.Background()
		var cancel context.CancelFunc
		if c.cfg.Timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()
		}
		if _, err := c.Execute(ctx, stmt, params...); err != nil {
			c.log.Error("async query failed: %v", err)
		}
	}()
}

// Close releases the session. The Client can reconnect afterwards through
// the lazy path, but in practice Close is called once at shutdown.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Close()
		c.session = nil
		c.log.Info("cassandra connection closed")
	}
}
