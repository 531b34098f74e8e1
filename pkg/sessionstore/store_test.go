package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/shardmux/txrouter/pkg/txrouter"
)

func testSessionID(b byte) txrouter.SessionID {
	var id txrouter.SessionID
	id[0] = b
	return id
}

func TestCheckoutCreatesOnFirstContact(t *testing.T) {
	s := New(8)
	id := testSessionID(1)
	created := 0
	newRouter := func() *txrouter.Router {
		created++
		return txrouter.New(id)
	}

	co, err := s.Checkout(context.Background(), id, newRouter)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	co.Release()

	if created != 1 {
		t.Fatalf("expected newRouter called once, got %d", created)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestCheckoutSerializesConcurrentCallers(t *testing.T) {
	s := New(8)
	id := testSessionID(2)
	newRouter := func() *txrouter.Router { return txrouter.New(id) }

	first, err := s.Checkout(context.Background(), id, newRouter)
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.Checkout(ctx, id, newRouter); err == nil {
		t.Fatal("expected the second checkout to block until the deadline while the first is held")
	}

	first.Release()

	co, err := s.Checkout(context.Background(), id, newRouter)
	if err != nil {
		t.Fatalf("checkout after release: %v", err)
	}
	co.Release()
}

func TestEvictForgetsSession(t *testing.T) {
	s := New(8)
	id := testSessionID(3)
	co, err := s.Checkout(context.Background(), id, func() *txrouter.Router { return txrouter.New(id) })
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	co.Release()

	s.Evict(id)
	if s.Len() != 0 {
		t.Fatalf("Len() = %d after evict, want 0", s.Len())
	}
}
