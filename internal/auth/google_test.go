package auth

import (
	"fmt"
	"testing"
	"time"
)

func TestStateStoreConsumeIsOneShot(t *testing.T) {
	store := newStateStore()
	store.put("state-1", time.Now().Add(time.Minute))

	if !store.consume("state-1") {
		t.Fatalf("expected first consume to succeed")
	}
	if store.consume("state-1") {
		t.Fatalf("expected second consume to fail")
	}
	if store.consume("never-issued") {
		t.Fatalf("expected unknown state to fail")
	}
}

func TestStateStoreRejectsExpired(t *testing.T) {
	store := newStateStore()
	store.put("stale", time.Now().Add(-time.Minute))

	if store.consume("stale") {
		t.Fatalf("expected expired state to fail")
	}
}

func TestStateStorePrunesExpiredOnPut(t *testing.T) {
	store := newStateStore()
	for i := 0; i < 50; i++ {
		store.put(fmt.Sprintf("stale-%d", i), time.Now().Add(-time.Minute))
	}
	store.put("fresh", time.Now().Add(time.Minute))

	store.mu.Lock()
	n := len(store.items)
	store.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected only the fresh state to remain, got %d entries", n)
	}
}
