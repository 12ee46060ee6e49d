package services

import (
	"log"

	"clicker-backend/internal/ws"
)

// Wire event names shared with the frontend.
const (
	EventStats = "stats"
	EventYou   = "you"
	EventError = "error_msg"
)

// User-facing advisory texts. Store failures are never echoed verbatim.
const (
	MsgLoginToPress = "Log in to press."
	MsgTooFast      = "Too fast."
	MsgPressFailed  = "Something went wrong. Try again."
)

// GlobalUpdate goes to every connection after an accepted press. It carries
// no personal count: someone else's press never touches your own counter,
// so the payload cannot overwrite it.
type GlobalUpdate struct {
	Total int64              `json:"total"`
	Top   []LeaderboardEntry `json:"top"`
}

// PersonalUpdate goes only to the connection whose press was accepted.
type PersonalUpdate struct {
	Mine int64 `json:"mine"`
}

// CounterStore is what the coordinator needs from the durable store.
type CounterStore interface {
	IncrementAndRead(userID uint) (total, mine int64, err error)
	ReadSnapshot(userID uint) (*Snapshot, error)
	GetTop(n int) ([]LeaderboardEntry, error)
	UpsertDisplayName(userID uint, name string) error
}

// Broadcaster is the fan-out side of the websocket hub.
type Broadcaster interface {
	SendTo(connID string, message ws.Message)
	BroadcastAll(message ws.Message)
}

// PressCoordinator runs one inbound event end to end: gate, mutate,
// read back, fan out. It owns the rate-limit table explicitly; there is no
// package-level state.
type PressCoordinator struct {
	store   CounterStore
	limiter *RateLimiter
	hub     Broadcaster
}

func NewPressCoordinator(store CounterStore, limiter *RateLimiter, hub Broadcaster) *PressCoordinator {
	return &PressCoordinator{store: store, limiter: limiter, hub: hub}
}

// HandlePress gates one press through the limiter, applies the atomic
// increment, and fans out: new total and leaderboard to everyone, the new
// personal count to the presser only. Rejections go to the caller only and
// never mutate anything. A failed press is not retried; the client may
// simply press again.
func (p *PressCoordinator) HandlePress(connID string, userID uint) {
	if userID == 0 {
		p.hub.SendTo(connID, ws.Message{Type: EventError, Data: MsgLoginToPress})
		return
	}

	if !p.limiter.Allow(connID) {
		p.hub.SendTo(connID, ws.Message{Type: EventError, Data: MsgTooFast})
		return
	}

	total, mine, err := p.store.IncrementAndRead(userID)
	if err != nil {
		log.Printf("press: %v", err)
		p.hub.SendTo(connID, ws.Message{Type: EventError, Data: MsgPressFailed})
		return
	}

	top, err := p.store.GetTop(TopSize)
	if err != nil {
		// The increment already landed; broadcast the total so clients
		// don't go stale, with the previous board left as-is client-side.
		log.Printf("press: %v", err)
	}

	p.hub.BroadcastAll(ws.Message{Type: EventStats, Data: GlobalUpdate{Total: total, Top: top}})
	p.hub.SendTo(connID, ws.Message{Type: EventYou, Data: PersonalUpdate{Mine: mine}})
}

// SetNameAndRefresh stores a new display name and refreshes everyone's view
// of the board. The broadcast is a GlobalUpdate on purpose: pushing the
// name-changer's personal count to every client would overwrite counters
// that never changed.
func (p *PressCoordinator) SetNameAndRefresh(userID uint, rawName string) error {
	if err := p.store.UpsertDisplayName(userID, rawName); err != nil {
		return err
	}

	snap, err := p.store.ReadSnapshot(userID)
	if err != nil {
		return err
	}

	p.hub.BroadcastAll(ws.Message{Type: EventStats, Data: GlobalUpdate{Total: snap.Total, Top: snap.Top}})
	return nil
}

// HandleSetName is the websocket flavor of SetNameAndRefresh; failures stay
// scoped to the calling connection.
func (p *PressCoordinator) HandleSetName(connID string, userID uint, rawName string) {
	if userID == 0 {
		return
	}

	if err := p.SetNameAndRefresh(userID, rawName); err != nil {
		log.Printf("set_name: %v", err)
		p.hub.SendTo(connID, ws.Message{Type: EventError, Data: MsgPressFailed})
	}
}

// HandleHello answers a fresh connection with a full snapshot, caller only.
// Spectators get the real total and board with a zero personal count plus
// an advisory that pressing needs an account.
func (p *PressCoordinator) HandleHello(connID string, userID uint) {
	snap, err := p.store.ReadSnapshot(userID)
	if err != nil {
		log.Printf("hello: %v", err)
		p.hub.SendTo(connID, ws.Message{Type: EventError, Data: MsgPressFailed})
		return
	}

	p.hub.SendTo(connID, ws.Message{Type: EventStats, Data: *snap})
	if userID == 0 {
		p.hub.SendTo(connID, ws.Message{Type: EventError, Data: MsgLoginToPress})
	}
}

// Disconnect releases per-connection limiter state.
func (p *PressCoordinator) Disconnect(connID string) {
	p.limiter.Forget(connID)
}
