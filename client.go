package redis

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pior/redis/resp"
)

// Config holds configuration for the redis client connection pools.
type Config struct {
	// MaxSize is the maximum number of connections per server pool.
	// Required: must be > 0.
	MaxSize int32

	// MaxConnLifetime is the maximum duration a connection can be reused.
	// Zero means no limit.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum duration a connection can be idle
	// before being closed. Zero means no limit.
	MaxConnIdleTime time.Duration

	// HealthCheckInterval is how often idle connections are checked for
	// health and lifecycle limits. Zero disables health checks.
	HealthCheckInterval time.Duration

	// Dialer is the net.Dialer used to create new connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// Pool is the connection pool factory function.
	// If nil, NewPuddlePool is used.
	Pool func(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error)

	// SelectServer picks which server to use for a key.
	// If nil, DefaultSelectServer (XXH3 + jump hash) is used.
	SelectServer SelectServerFunc

	// NewCircuitBreaker creates a circuit breaker for a server.
	// Called once per server address when its pool is created.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(serverAddr string) *CircuitBreaker

	// for testing purposes only
	constructor func(ctx context.Context) (*Connection, error)
}

func (c Config) dialer() *net.Dialer {
	if c.Dialer == nil {
		return &net.Dialer{}
	}
	return c.Dialer
}

// Client is a redis client routing commands to one or more servers,
// with one lazily created connection pool per server.
type Client struct {
	servers      Servers
	selectServer SelectServerFunc
	config       Config

	mu    sync.RWMutex
	pools map[string]*ServerPool

	stopHealthCheck chan struct{}
}

// NewClient creates a client for the given servers.
// For a single server, use: NewClient(NewStaticServers("host:port"), config)
func NewClient(servers Servers, config Config) (*Client, error) {
	if len(servers.List()) == 0 {
		return nil, ErrNoServersAvailable
	}

	selectServer := config.SelectServer
	if selectServer == nil {
		selectServer = DefaultSelectServer
	}

	client := &Client{
		servers:         servers,
		selectServer:    selectServer,
		config:          config,
		pools:           make(map[string]*ServerPool),
		stopHealthCheck: make(chan struct{}),
	}

	if config.HealthCheckInterval > 0 {
		go client.healthCheckLoop()
	}

	return client, nil
}

// Close stops the health check goroutine and destroys all connections
// in all pools.
func (c *Client) Close() {
	if c.config.HealthCheckInterval > 0 {
		close(c.stopHealthCheck)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sp := range c.pools {
		sp.Close()
	}
}

// Do executes a single command and returns its reply. The command is
// routed by its key argument (the second component) when present.
func (c *Client) Do(ctx context.Context, args ...string) (*resp.Reply, error) {
	var req resp.Request
	if err := req.AddCommandByComponents(args...); err != nil {
		return nil, err
	}

	rsp, err := c.ExecutePipeline(ctx, routingKey(args), &req)
	if err != nil {
		return nil, err
	}
	return rsp.Reply(0), nil
}

// ExecutePipeline executes a pre-built request on the server selected
// for key, returning one reply per pipelined command. All commands of
// the pipeline go to the same server.
func (c *Client) ExecutePipeline(ctx context.Context, key string, req *resp.Request) (*resp.Response, error) {
	sp, err := c.poolForKey(key)
	if err != nil {
		return nil, err
	}
	return sp.Execute(ctx, req)
}

// Stats returns per-server pool statistics.
func (c *Client) Stats() []ServerPoolStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make([]ServerPoolStats, 0, len(c.pools))
	for _, sp := range c.pools {
		stats = append(stats, sp.Stats())
	}
	return stats
}

func (c *Client) poolForKey(key string) (*ServerPool, error) {
	addr, err := c.selectServer(key, c.servers.List())
	if err != nil {
		return nil, err
	}
	return c.getOrCreatePool(addr)
}

func (c *Client) getOrCreatePool(addr string) (*ServerPool, error) {
	c.mu.RLock()
	sp, exists := c.pools[addr]
	c.mu.RUnlock()
	if exists {
		return sp, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if sp, exists := c.pools[addr]; exists {
		return sp, nil
	}

	sp, err := NewServerPool(addr, c.config)
	if err != nil {
		return nil, fmt.Errorf("redis: creating pool for %s: %w", addr, err)
	}
	c.pools[addr] = sp
	return sp, nil
}

// healthCheckLoop periodically checks idle connections for health and
// lifecycle limits.
func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(c.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopHealthCheck:
			return
		case <-ticker.C:
			c.checkAllPools()
		}
	}
}

func (c *Client) checkAllPools() {
	c.mu.RLock()
	pools := make([]*ServerPool, 0, len(c.pools))
	for _, sp := range c.pools {
		pools = append(pools, sp)
	}
	c.mu.RUnlock()

	for _, sp := range pools {
		c.checkPoolConnections(sp.pool)
	}
}

// checkPoolConnections inspects all idle connections in a pool and
// destroys those past their lifecycle limits or failing a PING probe.
// Healthy connections go back without resetting their idle accounting.
func (c *Client) checkPoolConnections(pool Pool) {
	now := time.Now()

	for _, res := range pool.AcquireAllIdle() {
		if c.config.MaxConnLifetime > 0 && now.Sub(res.CreationTime()) > c.config.MaxConnLifetime {
			res.Destroy()
			continue
		}

		if c.config.MaxConnIdleTime > 0 && res.IdleDuration() > c.config.MaxConnIdleTime {
			res.Destroy()
			continue
		}

		if err := c.healthCheck(res.Value()); err != nil {
			res.Destroy()
			continue
		}

		res.ReleaseUnused()
	}
}

func (c *Client) healthCheck(conn *Connection) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.HealthCheckInterval)
	defer cancel()
	return conn.Ping(ctx)
}

// routingKey picks the argument used for server selection: the key for
// commands that have one, the verb itself otherwise.
func routingKey(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	if len(args) == 1 {
		return args[0]
	}
	return ""
}
