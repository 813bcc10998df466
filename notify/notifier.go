package notify

import (
	"context"
	"errors"
	"strconv"
	"time"
)

type EventType string

const (
	EventMatchFinished       EventType = "match.finished"
	EventMatchesUpdated      EventType = "stage.matches_updated"
	EventStandingsUpdated    EventType = "standings.updated"
	EventTournamentCompleted EventType = "tournament.completed"
)

// Event is an engine change pushed to listeners after a progression pass.
type Event struct {
	Type         EventType   `json:"type"`
	TournamentID int64       `json:"tournament_id"`
	StageID      int64       `json:"stage_id,omitempty"`
	MatchID      int64       `json:"match_id,omitempty"`
	Payload      interface{} `json:"payload,omitempty"`
	At           time.Time   `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// RoomID is the websocket room of a tournament.
func RoomID(tournamentID int64) string {
	return "tournament_" + strconv.FormatInt(tournamentID, 10)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) error { return nil }

// Nop discards events.
func Nop() Notifier { return nopNotifier{} }

type multiNotifier []Notifier

// Multi fans an event out to every notifier; a failing one does not stop the others.
func Multi(notifiers ...Notifier) Notifier {
	var list multiNotifier
	for _, n := range notifiers {
		if n != nil {
			list = append(list, n)
		}
	}
	if len(list) == 0 {
		return Nop()
	}
	return list
}

func (m multiNotifier) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
