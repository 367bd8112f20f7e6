package visited

import (
	"fmt"
	"sync"
	"testing"
)

func TestSetAddIfNew(t *testing.T) {
	s := New(nil)

	if !s.AddIfNew("https://example.com") {
		t.Error("first AddIfNew should report new")
	}
	if s.AddIfNew("https://example.com") {
		t.Error("second AddIfNew should report not-new")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSetContains(t *testing.T) {
	s := New(nil)
	if s.Contains("https://example.com") {
		t.Error("Contains should be false before Add")
	}
	s.Add("https://example.com")
	if !s.Contains("https://example.com") {
		t.Error("Contains should be true after Add")
	}
}

func TestSetMonotonic(t *testing.T) {
	s := New(nil)
	s.Add("https://example.com/a")
	s.Add("https://example.com/b")
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	// No removal API exists; re-adding must not shrink or duplicate.
	s.Add("https://example.com/a")
	if s.Len() != 2 {
		t.Errorf("Len() after re-add = %d, want 2", s.Len())
	}
}

func TestSetConcurrentAddIfNew(t *testing.T) {
	s := New(nil)
	const n = 200
	var wg sync.WaitGroup
	newCount := make(chan bool, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			newCount <- s.AddIfNew("https://example.com/shared")
		}()
	}
	wg.Wait()
	close(newCount)

	trueCount := 0
	for v := range newCount {
		if v {
			trueCount++
		}
	}
	if trueCount != 1 {
		t.Errorf("exactly one goroutine should observe new=true, got %d", trueCount)
	}
}

func TestSetAddIfNewBoundedRejectsAtCapacity(t *testing.T) {
	s := New(nil)
	if !s.AddIfNewBounded("https://example.com/a", 2) {
		t.Fatal("first insert under cap should succeed")
	}
	if !s.AddIfNewBounded("https://example.com/b", 2) {
		t.Fatal("second insert reaching cap should succeed")
	}
	if s.AddIfNewBounded("https://example.com/c", 2) {
		t.Error("insert beyond cap should be rejected")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestSetAddIfNewBoundedUnlimitedWhenMaxZero(t *testing.T) {
	s := New(nil)
	for i := 0; i < 10; i++ {
		if !s.AddIfNewBounded(fmt.Sprintf("https://example.com/%d", i), 0) {
			t.Fatalf("insert %d with max=0 should never be rejected", i)
		}
	}
}

func TestSetAddIfNewBoundedConcurrentNeverExceedsCap(t *testing.T) {
	s := New(nil)
	const maxVisited = 10
	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddIfNewBounded(fmt.Sprintf("https://example.com/%d", i), maxVisited)
		}(i)
	}
	wg.Wait()
	if s.Len() > maxVisited {
		t.Errorf("Len() = %d, want at most %d", s.Len(), maxVisited)
	}
}

func TestSetWithPrefilter(t *testing.T) {
	pf, err := NewDiskPrefilter(1000, 0.01)
	if err != nil {
		t.Fatalf("NewDiskPrefilter() error: %v", err)
	}
	defer pf.Close()

	s := New(pf)
	if s.Contains("https://example.com") {
		t.Error("Contains should be false before Add")
	}
	if !s.AddIfNew("https://example.com") {
		t.Error("first AddIfNew should report new")
	}
	if !s.Contains("https://example.com") {
		t.Error("Contains should be true after Add, even with prefilter fronting the set")
	}
	if s.AddIfNew("https://example.com") {
		t.Error("second AddIfNew should report not-new")
	}
}
