package spool

import (
	"context"
	"testing"
	"time"
)

func TestBackoff_DoublesUpToMax(t *testing.T) {
	b := newBackoff(time.Second, 5*time.Second, nil)

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := b.next(); got != w {
			t.Errorf("next() #%d = %v, want %v", i+1, got, w)
		}
	}

	b.Reset()
	if got := b.next(); got != time.Second {
		t.Errorf("next() after Reset = %v, want 1s", got)
	}
}

func TestBackoff_SleepJitter(t *testing.T) {
	var slept []time.Duration
	b := newBackoff(time.Second, time.Minute, func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	})

	for i := 0; i < 3; i++ {
		if err := b.Sleep(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	bases := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for i, d := range slept {
		lo := time.Duration(float64(bases[i]) * 0.8)
		hi := time.Duration(float64(bases[i]) * 1.2)
		if d < lo || d > hi {
			t.Errorf("sleep #%d = %v, want within [%v, %v]", i+1, d, lo, hi)
		}
	}
}
