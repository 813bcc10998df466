package notify

import (
	"context"
	"errors"
	"testing"
)

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) Notify(context.Context, Event) error {
	c.calls++
	return c.err
}

func TestMultiCallsEveryNotifier(t *testing.T) {
	errBroker := errors.New("broker down")
	first := &countingNotifier{err: errBroker}
	second := &countingNotifier{}

	err := Multi(first, nil, second).Notify(context.Background(), Event{Type: EventMatchFinished, TournamentID: 1})
	if !errors.Is(err, errBroker) {
		t.Fatalf("err = %v, want %v", err, errBroker)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
}

func TestMultiWithoutNotifiersIsNop(t *testing.T) {
	n := Multi(nil, nil)
	if _, ok := n.(nopNotifier); !ok {
		t.Fatalf("Multi(nil, nil) = %T, want nopNotifier", n)
	}
	if err := n.Notify(context.Background(), Event{}); err != nil {
		t.Fatalf("nop returned %v", err)
	}
}

func TestRoomID(t *testing.T) {
	if got := RoomID(42); got != "tournament_42" {
		t.Fatalf("RoomID(42) = %q", got)
	}
}
