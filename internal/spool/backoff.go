package spool

import (
	"context"
	"math/rand"
	"time"
)

type sleepFunc func(ctx context.Context, d time.Duration) error

type backoff struct {
	base  time.Duration
	max   time.Duration
	cur   time.Duration
	sleep sleepFunc
}

func newBackoff(base, max time.Duration, sleep sleepFunc) *backoff {
	return &backoff{base: base, max: max, sleep: sleep}
}

// next returns the following delay, doubling up to max.
func (b *backoff) next() time.Duration {
	if b.cur <= 0 {
		b.cur = b.base
	} else {
		b.cur *= 2
		if b.cur > b.max {
			b.cur = b.max
		}
	}
	return b.cur
}

// Sleep waits for the next delay with ~±20% jitter.
func (b *backoff) Sleep(ctx context.Context) error {
	j := 0.8 + 0.4*rand.Float64()
	return b.sleep(ctx, time.Duration(float64(b.next())*j))
}

func (b *backoff) Reset() { b.cur = 0 }
