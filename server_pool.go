package redis

import (
	"context"

	"github.com/sony/gobreaker/v2"

	"github.com/pior/redis/resp"
)

// NewServerPool creates the pool and circuit breaker for one server.
func NewServerPool(addr string, config Config) (*ServerPool, error) {
	constructor := config.constructor
	if constructor == nil {
		constructor = func(ctx context.Context) (*Connection, error) {
			netConn, err := config.dialer().DialContext(ctx, "tcp", addr)
			if err != nil {
				return nil, err
			}
			return NewConnection(netConn), nil
		}
	}

	poolFactory := config.Pool
	if poolFactory == nil {
		poolFactory = NewPuddlePool
	}

	pool, err := poolFactory(constructor, config.MaxSize)
	if err != nil {
		return nil, err
	}

	sp := &ServerPool{addr: addr, pool: pool}
	if config.NewCircuitBreaker != nil {
		sp.circuitBreaker = config.NewCircuitBreaker(addr)
	}
	return sp, nil
}

// ServerPool wraps a connection pool and a circuit breaker for a
// single server address.
type ServerPool struct {
	addr           string
	pool           Pool
	circuitBreaker *CircuitBreaker // nil if not configured
}

// Address returns the server address.
func (sp *ServerPool) Address() string {
	return sp.addr
}

// ServerPoolStats contains stats for a single server pool.
type ServerPoolStats struct {
	Addr                 string
	PoolStats            PoolStats
	CircuitBreakerState  gobreaker.State
	CircuitBreakerCounts gobreaker.Counts
}

func (sp *ServerPool) Stats() ServerPoolStats {
	stats := ServerPoolStats{
		Addr:      sp.addr,
		PoolStats: sp.pool.Stats(),
	}
	if sp.circuitBreaker != nil {
		stats.CircuitBreakerState = sp.circuitBreaker.State()
		stats.CircuitBreakerCounts = sp.circuitBreaker.Counts()
	}
	return stats
}

// Execute runs one pipeline on a pooled connection, wrapped with the
// server's circuit breaker when configured. The connection is destroyed
// instead of released when the error class indicates corrupted protocol
// state.
func (sp *ServerPool) Execute(ctx context.Context, req *resp.Request) (*resp.Response, error) {
	if sp.circuitBreaker == nil {
		return sp.execDirect(ctx, req)
	}

	return sp.circuitBreaker.Execute(func() (*resp.Response, error) {
		return sp.execDirect(ctx, req)
	})
}

func (sp *ServerPool) execDirect(ctx context.Context, req *resp.Request) (*resp.Response, error) {
	resource, err := sp.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rsp, err := resource.Value().Execute(ctx, req)
	if err != nil {
		if resp.ShouldCloseConnection(err) {
			resource.Destroy()
		} else {
			resource.Release()
		}
		return nil, err
	}

	resource.Release()
	return rsp, nil
}

// Close destroys all pooled connections.
func (sp *ServerPool) Close() {
	sp.pool.Close()
}
