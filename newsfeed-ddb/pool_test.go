package newsfeedddb

import (
	"math"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/tj/assert"
)

func TestPool(t *testing.T) {
	var created int
	factory := func() (dynamodbiface.DynamoDBAPI, error) {
		created++
		return &scriptedAPI{}, nil
	}

	epoch := time.Unix(1_700_000_000, 0)
	now := epoch
	pool := NewPool(factory)
	pool.clock = func() time.Time { return now }
	pool.createdAt = epoch
	pool.lastSeen = epoch

	// two leases held concurrently
	c1, err := pool.Get()
	assert.Nil(t, err)

	now = epoch.Add(10 * time.Second)
	c2, err := pool.Get()
	assert.Nil(t, err)
	assert.Equal(t, 2, created)
	assert.EqualValues(t, 2, pool.Stats().Active)

	// releasing inside the sizing bound pools both clients
	now = epoch.Add(20 * time.Second)
	c1.Close()
	now = epoch.Add(30 * time.Second)
	c2.Close()
	assert.EqualValues(t, 0, pool.Stats().Active)
	assert.EqualValues(t, 2, pool.Stats().Total)

	// the next lease reuses an idle client instead of creating one
	now = epoch.Add(40 * time.Second)
	c3, err := pool.Get()
	assert.Nil(t, err)
	assert.Equal(t, 2, created)

	// after a long quiet stretch the average decays and the surplus client
	// is discarded on release
	now = epoch.Add(1000 * time.Second)
	c3.Close()

	stats := pool.Stats()
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 0, stats.Active)
	assert.True(t, float64(stats.Total) <= math.Ceil(1.2*stats.AvgActive)+1)
	assert.InDelta(t, 1.0, stats.AvgActive, 0.05)
}

func TestPoolCloseIdempotent(t *testing.T) {
	pool := NewPool(func() (dynamodbiface.DynamoDBAPI, error) {
		return &scriptedAPI{}, nil
	})

	conn, err := pool.Get()
	assert.Nil(t, err)
	conn.Close()
	conn.Close() // second close must not double-release

	assert.EqualValues(t, 0, pool.Stats().Active)
}
