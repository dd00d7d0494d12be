package seatlock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	tbl := NewTable()
	l, err := tbl.Acquire(context.Background(), "seat:1:1A", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "seat:1:1A", l.Key())
	l.Release()
	l.Release() // idempotent

	l2, err := tbl.Acquire(context.Background(), "seat:1:1A", time.Second)
	require.NoError(t, err)
	l2.Release()
	assert.Equal(t, 1, tbl.Len())
}

func TestAcquireTimeout(t *testing.T) {
	tbl := NewTable()
	held, err := tbl.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer held.Release()

	start := time.Now()
	_, err = tbl.Acquire(context.Background(), "k", 50*time.Millisecond)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestAcquireContextCancelled(t *testing.T) {
	tbl := NewTable()
	held, err := tbl.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer held.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tbl.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDistinctKeysDoNotBlock(t *testing.T) {
	tbl := NewTable()
	a, err := tbl.Acquire(context.Background(), SeatKey(1, "1A"), time.Second)
	require.NoError(t, err)
	defer a.Release()
	b, err := tbl.Acquire(context.Background(), SeatKey(1, "1B"), 10*time.Millisecond)
	require.NoError(t, err)
	b.Release()
}

func TestMutualExclusion(t *testing.T) {
	tbl := NewTable()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := tbl.Acquire(context.Background(), "shared", 5*time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			l.Release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestNilLockRelease(t *testing.T) {
	var l *Lock
	assert.NotPanics(t, l.Release)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "seat:7:12C", SeatKey(7, "12C"))
	assert.Equal(t, "passenger:AA12345", PassengerKey("AA12345"))
	assert.Equal(t, "status:7", StatusKey(7))
}
