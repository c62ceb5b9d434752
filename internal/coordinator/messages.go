package coordinator

import (
	"github.com/mateus-s-a/jokenpo/internal/engine"
	"github.com/mateus-s-a/jokenpo/internal/proto"
	"github.com/mateus-s-a/jokenpo/internal/room"
)

type Msg interface{ isCoordMsg() }

// Connected announces a new transport connection.
type Connected struct{ ConnID string }

func (Connected) isCoordMsg() {}

// Disconnected announces that a connection's socket closed.
type Disconnected struct{ ConnID string }

func (Disconnected) isCoordMsg() {}

// FromClient carries one decoded client envelope.
type FromClient struct {
	ConnID string
	Env    proto.Envelope
}

func (FromClient) isCoordMsg() {}

// TimerExpired is posted by the timer registry's fire callback. Gen is
// re-checked against the registry before it has any effect.
type TimerExpired struct {
	RoomID string
	Gen    uint64
}

func (TimerExpired) isCoordMsg() {}

type Shutdown struct{}

func (Shutdown) isCoordMsg() {}

// GetState reflects internal state without data races; test-only.
type GetState struct {
	Reply chan View
}

func (GetState) isCoordMsg() {}

type PlayerView struct {
	ID     string
	Name   string
	Choice engine.Move
	Ready  bool
	Score  room.Score
}

type RoomView struct {
	ID           string
	Name         string
	State        room.State
	Mode         room.Mode
	TimerSeconds int
	HostID       string
	HasPassword  bool
	Password     string
	QuickPlay    bool
	TimerArmed   bool
	Players      map[string]PlayerView
}

type View struct {
	Conns int
	Rooms map[string]RoomView
}
