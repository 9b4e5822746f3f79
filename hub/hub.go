// hub/hub.go
package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/wfunc/blockduel/events"
	"github.com/wfunc/blockduel/lobby"
	"github.com/wfunc/blockduel/logger"
	"github.com/wfunc/blockduel/models"
	"github.com/wfunc/blockduel/network"
	"github.com/wfunc/blockduel/room"
)

// ErrInvalidRows rejects a drop clearing fewer than 0 or more rows than one
// piece can complete.
var ErrInvalidRows = room.ErrInvalidRows

// Observer receives gameplay counters.
type Observer interface {
	ObserveDrop(attack, cancelled, garbage int)
	IncMatchesStarted()
	IncMatchesFinished()
}

// MatchRecorder stores finished matches.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, record *models.MatchRecord) error
}

type nopObserver struct{}

func (nopObserver) ObserveDrop(int, int, int) {}
func (nopObserver) IncMatchesStarted()        {}
func (nopObserver) IncMatchesFinished()       {}

// Hub implements every client operation on top of the matchmaking directory
// and the session registry. It holds no lock of its own: directory calls
// serialize on the lobby, gameplay calls on the room.
type Hub struct {
	lobby    *lobby.Lobby
	rooms    *room.Manager
	notifier lobby.Notifier

	observer  Observer
	recorder  MatchRecorder
	publisher events.Publisher
}

// Option customizes a Hub.
type Option func(*Hub)

func WithObserver(o Observer) Option {
	return func(h *Hub) { h.observer = o }
}

func WithMatchRecorder(r MatchRecorder) Option {
	return func(h *Hub) { h.recorder = r }
}

func WithPublisher(p events.Publisher) Option {
	return func(h *Hub) { h.publisher = p }
}

func NewHub(l *lobby.Lobby, notifier lobby.Notifier, opts ...Option) *Hub {
	h := &Hub{
		lobby:     l,
		rooms:     l.Rooms(),
		notifier:  notifier,
		observer:  nopObserver{},
		publisher: events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Lobby returns the directory the hub operates on.
func (h *Hub) Lobby() *lobby.Lobby {
	return h.lobby
}

func (h *Hub) StartWaiting(connID, name string) {
	h.lobby.StartWaiting(connID, name)
}

func (h *Hub) Browse(connID string) []network.WaitingPlayer {
	return h.lobby.Browse(connID)
}

func (h *Hub) StopWaiting(connID string) {
	h.lobby.StopWaiting(connID)
}

func (h *Hub) RemoveJoiningPlayer(connID string) {
	h.lobby.RemoveBrowsing(connID)
}

// Disconnect cleans up the directory. A running room stays registered.
func (h *Hub) Disconnect(connID string) {
	h.lobby.Disconnect(connID)
	if r, ok := h.rooms.GetRoom(connID); ok {
		logger.Log.Infof("Connection %s left room %s without reporting a loss", connID, r.ID)
	}
}

// PickWaitingPlayer starts a room between picker and otherConnID.
func (h *Hub) PickWaitingPlayer(picker room.Seat, otherConnID string) error {
	r, err := h.lobby.Pick(picker, otherConnID)
	if err != nil {
		return err
	}
	h.observer.IncMatchesStarted()

	ids := r.ConnIDs()
	h.publish(events.SubjectMatchStarted, events.MatchStarted{
		RoomID:    r.ID,
		Players:   ids,
		StartedAt: r.CreatedAt,
	})
	return nil
}

func (h *Hub) lookup(connID string) (*room.Room, error) {
	r, ok := h.rooms.GetRoom(connID)
	if !ok {
		return nil, room.ErrInvalidSession
	}
	return r, nil
}

// Drop applies a landed piece and mirrors the result to the opponent as
// otherDropped. The same result is returned as the reply to connID.
func (h *Hub) Drop(connID string, rowsCleared int) (*network.DropResult, error) {
	if rowsCleared < 0 || rowsCleared > room.MaxRowsCleared {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRows, rowsCleared)
	}
	r, err := h.lookup(connID)
	if err != nil {
		return nil, err
	}
	out, err := r.Drop(connID, rowsCleared)
	if err != nil {
		return nil, err
	}

	if err := h.notifier.SendTo(out.Opponent, network.MsgTypeOtherDropped, out.Result); err != nil {
		logger.Log.Debugf("Room %s: otherDropped to %s failed: %v", r.ID, out.Opponent, err)
	}
	h.observer.ObserveDrop(out.Attack, out.Cancelled, out.Garbage)
	return out.Result, nil
}

// relay forwards a movement message to the opponent unchecked.
func (h *Hub) relay(connID string, msgID uint16, payload interface{}) error {
	r, err := h.lookup(connID)
	if err != nil {
		return err
	}
	other, err := r.Opponent(connID)
	if err != nil {
		return err
	}
	if err := h.notifier.SendTo(other, msgID, payload); err != nil {
		logger.Log.Debugf("Room %s: %s to %s failed: %v", r.ID, network.MsgName(msgID), other, err)
	}
	return nil
}

func (h *Hub) Move(connID string, offset int) error {
	return h.relay(connID, network.MsgTypeOtherMove, network.MoveMessage{Offset: offset})
}

func (h *Hub) Rotate(connID string) error {
	return h.relay(connID, network.MsgTypeOtherRotate, nil)
}

func (h *Hub) Down(connID string) error {
	return h.relay(connID, network.MsgTypeOtherDown, nil)
}

// Lost ends the room of connID. The opponent is told it won; the match is
// then recorded and published outside of any lock.
func (h *Hub) Lost(ctx context.Context, connID string) error {
	r, winner, err := h.lobby.ReportLoss(connID)
	if err != nil {
		return err
	}
	h.observer.IncMatchesFinished()

	winnerP, loserP, err := r.Pair(winner)
	if err != nil {
		return err
	}
	record := &models.MatchRecord{
		RoomID:     r.ID,
		Winner:     winnerP.UserName,
		Loser:      loserP.UserName,
		WinnerConn: winner,
		LoserConn:  connID,
		StartedAt:  r.CreatedAt,
		EndedAt:    r.EndedAt(),
	}
	if h.recorder != nil {
		if err := h.recorder.RecordMatch(ctx, record); err != nil {
			logger.Log.Errorf("Room %s: %v", r.ID, err)
		}
	}
	h.publish(events.SubjectMatchEnded, events.MatchEnded{
		RoomID:   r.ID,
		Winner:   record.Winner,
		Loser:    record.Loser,
		EndedAt:  record.EndedAt,
		Duration: record.Duration().Seconds(),
	})
	return nil
}

func (h *Hub) publish(subject string, event interface{}) {
	if err := h.publisher.Publish(subject, event); err != nil {
		logger.Log.Warnf("Publish %s: %v", subject, err)
	}
}

// Stats is the snapshot served on /status and over RPC.
type Stats struct {
	lobby.Stats
	Time time.Time `json:"time"`
}

func (h *Hub) Stats() Stats {
	return Stats{Stats: h.lobby.Stats(), Time: time.Now()}
}

// String identifies the hub in logs.
func (h *Hub) String() string {
	s := h.lobby.Stats()
	return fmt.Sprintf("hub(waiting=%d browsing=%d rooms=%d)", s.Waiting, s.Browsing, s.Rooms)
}
