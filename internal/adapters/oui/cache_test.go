package oui

import (
	"fmt"
	"sync"
	"testing"
)

func TestCache(t *testing.T) {
	cache := NewCache(3)

	cache.Set("00:00:00", "Vendor1")
	cache.Set("11:11:11", "Vendor2")
	cache.Set("22:22:22", "Vendor3")

	if val, ok := cache.Get("00:00:00"); !ok || val != "Vendor1" {
		t.Errorf("Expected Vendor1, got %s", val)
	}

	// 11:11:11 is now the least recently used
	cache.Set("33:33:33", "Vendor4")

	if _, ok := cache.Get("11:11:11"); ok {
		t.Error("Expected 11:11:11 to be evicted")
	}
	if val, ok := cache.Get("00:00:00"); !ok || val != "Vendor1" {
		t.Errorf("Expected Vendor1, got %s", val)
	}
	if cache.Len() != 3 {
		t.Errorf("Expected cache length 3, got %d", cache.Len())
	}

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Expected 2 hits / 1 miss, got %d / %d", stats.Hits, stats.Misses)
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Expected cache length 0 after clear, got %d", cache.Len())
	}
}

func TestCacheConcurrency(t *testing.T) {
	cache := NewCache(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%02d:%02d", id, j)
				cache.Set(key, "Vendor")
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() > 100 {
		t.Errorf("Cache exceeded capacity: %d", cache.Len())
	}
}

func BenchmarkCacheGet(b *testing.B) {
	cache := NewCache(1000)
	cache.Set("00:00:00", "TestVendor")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get("00:00:00")
	}
}
