// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		got, found := c.Get(key)
		if !found {
			t.Errorf("Get(%q) not found", key)
			continue
		}
		if got != want {
			t.Errorf("Get(%q) = %d, want %d", key, got, want)
		}
	}

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c := NewLRU[string](3, time.Minute)
	c.Add("a", "A")
	c.Add("b", "B")
	c.Add("c", "C")

	// Touch 'a' so 'b' becomes least recently used
	c.Get("a")
	c.Add("d", "D")

	if _, found := c.Get("b"); found {
		t.Error("expected 'b' to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := c.Get(key); !found {
			t.Errorf("expected %q to be present", key)
		}
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](10, 50*time.Millisecond)
	c.Add("a", 1)

	if _, found := c.Get("a"); !found {
		t.Fatal("expected 'a' before expiry")
	}

	time.Sleep(60 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("expected 'a' to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expired Get, want 0", c.Len())
	}
}

func TestLRU_UpdateExisting(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](2, time.Minute)
	c.Add("a", 1)
	c.Add("a", 2)

	if got, _ := c.Get("a"); got != 2 {
		t.Errorf("Get(a) = %d, want 2", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_RemoveAndClear(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](10, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)

	if !c.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if c.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}

	// The list must still be usable after Clear
	c.Add("c", 3)
	if _, found := c.Get("c"); !found {
		t.Error("expected 'c' after Clear and Add")
	}
}

func TestLRU_CleanupExpired(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](10, 30*time.Millisecond)
	c.Add("a", 1)
	c.Add("b", 2)
	time.Sleep(40 * time.Millisecond)
	c.Add("c", 3)

	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_Stats(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](10, time.Minute)
	c.Add("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("Stats() = (%d, %d, %d), want (2, 1, 1)", hits, misses, size)
	}
}

func TestLRU_DefaultsForNonPositiveArgs(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](0, 0)
	if c.capacity != 10000 {
		t.Errorf("capacity = %d, want 10000", c.capacity)
	}
	if c.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](100, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := strconv.Itoa((g*500 + i) % 150)
				c.Add(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Len() = %d, exceeds capacity 100", c.Len())
	}
}

func BenchmarkLRU_Add(b *testing.B) {
	c := NewLRU[int](10000, time.Minute)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Add(strconv.Itoa(i%20000), i)
	}
}
