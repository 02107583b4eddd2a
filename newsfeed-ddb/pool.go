package newsfeedddb

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

const poolIdleCapacity = 256

// Factory creates a new store client for the pool.
type Factory func() (dynamodbiface.DynamoDBAPI, error)

// Pool hands out store clients and sizes itself from demand: it tracks the
// time-weighted average number of clients in use since startup, and on each
// release discards the client instead of pooling it whenever the fleet has
// grown past ceil(1.2 * average). Bursts are served by creating clients on
// demand; the surplus drains once the burst passes.
type Pool struct {
	idle    chan dynamodbiface.DynamoDBAPI
	factory Factory
	clock   func() time.Time

	createdAt time.Time

	totalConns  atomic.Int32
	activeConns atomic.Int32

	// mu guards the moving average only; the counters are atomics.
	mu        sync.Mutex
	lastSeen  time.Time
	avgActive float64
}

// NewPool returns an empty pool; clients are created lazily via factory.
func NewPool(factory Factory) *Pool {
	p := &Pool{
		idle:    make(chan dynamodbiface.DynamoDBAPI, poolIdleCapacity),
		factory: factory,
		clock:   time.Now,
	}
	p.createdAt = p.clock()
	p.lastSeen = p.createdAt
	return p
}

// Conn is a leased store client. Close returns it to the pool; Close is
// idempotent and must be called exactly once per Get.
type Conn struct {
	pool *Pool
	api  dynamodbiface.DynamoDBAPI
	done bool
}

// API exposes the underlying store client.
func (c *Conn) API() dynamodbiface.DynamoDBAPI { return c.api }

// Close returns the connection to its pool.
func (c *Conn) Close() {
	if c == nil || c.done {
		return
	}
	c.done = true
	c.pool.release(c.api)
}

// Get leases a client, creating one when no idle client is available.
func (p *Pool) Get() (*Conn, error) {
	var api dynamodbiface.DynamoDBAPI
	select {
	case api = <-p.idle:
	default:
		var err error
		if api, err = p.factory(); err != nil {
			return nil, err
		}
	}

	prior := p.activeConns.Add(1) - 1
	p.advanceAverage(float64(prior))
	p.totalConns.Add(1)

	return &Conn{pool: p, api: api}, nil
}

func (p *Pool) release(api dynamodbiface.DynamoDBAPI) {
	prior := p.activeConns.Add(-1) + 1
	avg := p.advanceAverage(float64(prior))

	if float64(p.totalConns.Load()) > math.Ceil(1.2*avg) {
		p.totalConns.Add(-1) // dropped; the client needs no explicit teardown
		return
	}
	select {
	case p.idle <- api:
	default:
		p.totalConns.Add(-1)
	}
}

// advanceAverage folds the active-connection count held since the last
// sample into the time-weighted average and returns the new value.
func (p *Pool) advanceAverage(active float64) float64 {
	now := p.clock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if elapsed := now.Sub(p.createdAt).Seconds(); elapsed > 0 {
		prior := p.lastSeen.Sub(p.createdAt).Seconds()
		p.avgActive = (p.avgActive*prior + active*now.Sub(p.lastSeen).Seconds()) / elapsed
	}
	p.lastSeen = now
	return p.avgActive
}

// Stats is a point-in-time snapshot of pool sizing.
type Stats struct {
	Total     int32   `json:"total"`
	Active    int32   `json:"active"`
	AvgActive float64 `json:"avgActive"`
}

// Stats reports current pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	avg := p.avgActive
	p.mu.Unlock()

	return Stats{
		Total:     p.totalConns.Load(),
		Active:    p.activeConns.Load(),
		AvgActive: avg,
	}
}
