package memory

import (
	"context"
	"testing"
)

func TestPublishFanOut(t *testing.T) {
	bus := New()
	a := make(chan any, 1)
	b := make(chan any, 1)
	unsubA, err := bus.Subscribe("t", a)
	if err != nil {
		t.Fatalf("subscribe a: %v", err)
	}
	defer unsubA()
	unsubB, err := bus.Subscribe("t", b)
	if err != nil {
		t.Fatalf("subscribe b: %v", err)
	}

	if err := bus.Publish(context.Background(), "t", "hello"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := <-a; got != "hello" {
		t.Fatalf("a got %v", got)
	}
	if got := <-b; got != "hello" {
		t.Fatalf("b got %v", got)
	}

	unsubB()
	unsubB()
	if err := bus.Publish(context.Background(), "t", "again"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := <-a; got != "again" {
		t.Fatalf("a got %v", got)
	}
	select {
	case got := <-b:
		t.Fatalf("unsubscribed channel received %v", got)
	default:
	}
}

func TestPublishDropsForFullSubscriber(t *testing.T) {
	bus := New()
	ch := make(chan any)
	if _, err := bus.Subscribe("t", ch); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := bus.Publish(context.Background(), "t", 1); err != nil {
		t.Fatalf("publish should not block or fail: %v", err)
	}
}

func TestSubscribeRejectsNil(t *testing.T) {
	if _, err := New().Subscribe("t", nil); err == nil {
		t.Fatalf("expected error for nil channel")
	}
}

func TestPublishCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New().Publish(ctx, "t", 1); err == nil {
		t.Fatalf("expected context error")
	}
}
