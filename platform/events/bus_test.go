package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncDispatchesToMatchingHandlersOnly(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var calledA, calledB int
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error {
		calledA++
		return nil
	}))
	bus.Subscribe("b", HandlerFunc(func(context.Context, Event) error {
		calledB++
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "a"}); err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if calledA != 1 {
		t.Errorf("handler for %q called %d times, want 1", "a", calledA)
	}
	if calledB != 0 {
		t.Errorf("handler for %q called %d times, want 0", "b", calledB)
	}
}

func TestPublishSyncReturnsFirstErrorButRunsAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	errFirst := errors.New("first")
	var secondRan bool
	bus.Subscribe("evt", HandlerFunc(func(context.Context, Event) error {
		return errFirst
	}))
	bus.Subscribe("evt", HandlerFunc(func(context.Context, Event) error {
		secondRan = true
		return errors.New("second")
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "evt"})
	if !errors.Is(err, errFirst) {
		t.Errorf("PublishSync error = %v, want %v", err, errFirst)
	}
	if !secondRan {
		t.Error("second handler did not run after first handler failed")
	}
}

func TestPublishSyncRecoversHandlerPanic(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	bus.Subscribe("evt", HandlerFunc(func(context.Context, Event) error {
		panic("boom")
	}))

	if err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "evt"}); err == nil {
		t.Error("PublishSync did not surface the handler panic as an error")
	}
}

func TestPublishIsAsynchronous(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	done := make(chan struct{})
	bus.Subscribe("evt", HandlerFunc(func(context.Context, Event) error {
		close(done)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "evt"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handler was not invoked")
	}
}
