package transport

import (
	"math/rand"
	"testing"
	"time"
)

func TestNextBackoffDelayGrowsGeometrically(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2, MaxDelay: 10 * time.Second}
	d1 := NextBackoffDelay(cfg, 1, nil)
	d2 := NextBackoffDelay(cfg, 2, nil)
	d3 := NextBackoffDelay(cfg, 3, nil)
	if d1 != 100*time.Millisecond {
		t.Fatalf("d1 = %v, want 100ms", d1)
	}
	if d2 != 200*time.Millisecond {
		t.Fatalf("d2 = %v, want 200ms", d2)
	}
	if d3 != 400*time.Millisecond {
		t.Fatalf("d3 = %v, want 400ms", d3)
	}
}

func TestNextBackoffDelayClampsToMax(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: time.Second, Multiplier: 10, MaxDelay: 5 * time.Second}
	d := NextBackoffDelay(cfg, 5, nil)
	if d != 5*time.Second {
		t.Fatalf("d = %v, want clamped to 5s", d)
	}
}

func TestNextBackoffDelayJitterStaysInRange(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: time.Second, Multiplier: 1, MaxDelay: time.Minute, Jitter: true}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		d := NextBackoffDelay(cfg, 1, rng)
		if d < 500*time.Millisecond || d > time.Second {
			t.Fatalf("jittered delay out of range: %v", d)
		}
	}
}
