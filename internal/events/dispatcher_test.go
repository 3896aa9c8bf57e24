package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestDispatcher_PublishReachesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []EventType
	d.Subscribe(EventSessionOpened, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})
	d.Subscribe(EventSessionRefreshed, func(context.Context, Event) error {
		t.Fatal("unexpected handler")
		return nil
	})

	if err := d.Publish(context.Background(), NewEvent(EventSessionOpened, uuid.New(), uuid.New(), nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 1 || got[0] != EventSessionOpened {
		t.Fatalf("got = %v", got)
	}
}

func TestDispatcher_HandlerErrorsAreJoined(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	calls := 0
	d.Subscribe(EventIdentityRegistered, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventIdentityRegistered, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventIdentityRegistered, uuid.New(), uuid.New(), nil))
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
