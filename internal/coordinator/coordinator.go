// Package coordinator holds the authoritative room/match state machine.
//
// All state lives behind a single goroutine draining the inbox: a
// message is handled to completion before the next one, so rooms and
// timers need no locking. Timer expiries are posted back onto the same
// inbox and validated against the registry generation when processed,
// which settles the race between a late choice and a firing timeout.
package coordinator

import (
	"context"

	"go.uber.org/zap"

	"github.com/mateus-s-a/jokenpo/internal/proto"
	"github.com/mateus-s-a/jokenpo/internal/room"
	"github.com/mateus-s-a/jokenpo/internal/timer"
)

// Sender delivers a message to one connection. Implementations must not
// block the coordinator goroutine.
type Sender interface {
	Send(connID string, msg proto.OutMessage)
}

type Coordinator struct {
	log    *zap.Logger
	inbox  chan Msg
	rooms  *room.Store
	timers *timer.Registry
	sender Sender
	conns  map[string]struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, log *zap.Logger, sender Sender) *Coordinator {
	ctx, cancel := context.WithCancel(parent)

	c := &Coordinator{
		log:    log,
		inbox:  make(chan Msg, 64),
		rooms:  room.NewStore(),
		timers: timer.NewRegistry(),
		sender: sender,
		conns:  make(map[string]struct{}),
		ctx:    ctx,
		cancel: cancel,
	}

	go c.loop()
	return c
}

// Inbox is where the transport layer and tests post messages.
func (c *Coordinator) Inbox() chan<- Msg { return c.inbox }

func (c *Coordinator) loop() {
	for {
		select {
		case <-c.ctx.Done():
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case Connected:
				c.handleConnected(msg.ConnID)
			case Disconnected:
				c.handleDisconnected(msg.ConnID)
			case FromClient:
				c.handleClient(msg.ConnID, msg.Env)
			case TimerExpired:
				c.handleTimerExpired(msg.RoomID, msg.Gen)
			case GetState:
				msg.Reply <- c.view()
			case Shutdown:
				c.cancel()
				return
			}
		}
	}
}

func (c *Coordinator) handleClient(connID string, env proto.Envelope) {
	switch env.Type {
	case proto.TypeCreateRoom:
		var p proto.CreateRoomPayload
		if err := proto.Decode(env.Payload, &p); err != nil {
			c.clientError(connID, err.Error())
			return
		}
		c.handleCreateRoom(connID, p)

	case proto.TypeJoinRoom:
		var p proto.JoinRoomPayload
		if err := proto.Decode(env.Payload, &p); err != nil {
			c.joinError(connID, err.Error())
			return
		}
		c.handleJoinRoom(connID, p)

	case proto.TypePlayerToggleReady:
		c.handleToggleReady(connID)

	case proto.TypeUpdateSettings:
		var p proto.UpdateSettingsPayload
		if err := proto.Decode(env.Payload, &p); err != nil {
			c.clientError(connID, err.Error())
			return
		}
		c.handleUpdateSettings(connID, p)

	case proto.TypeGeneratePassword:
		c.handleGeneratePassword(connID)

	case proto.TypeKickPlayer:
		var p proto.KickPlayerPayload
		if err := proto.Decode(env.Payload, &p); err != nil {
			c.clientError(connID, err.Error())
			return
		}
		c.handleKickPlayer(connID, p)

	case proto.TypeDeleteRoom:
		c.handleDeleteRoom(connID)

	case proto.TypeFindGame:
		var p proto.FindGamePayload
		if err := proto.Decode(env.Payload, &p); err != nil {
			c.clientError(connID, err.Error())
			return
		}
		c.handleFindGame(connID, p)

	case proto.TypePlayerChoice:
		var p proto.PlayerChoicePayload
		if err := proto.Decode(env.Payload, &p); err != nil {
			c.clientError(connID, err.Error())
			return
		}
		c.handlePlayerChoice(connID, p)

	case proto.TypePlayerForfeit:
		c.handleForfeit(connID)

	default:
		c.clientError(connID, "unknown message type: "+env.Type)
	}
}

func (c *Coordinator) view() View {
	v := View{
		Conns: len(c.conns),
		Rooms: make(map[string]RoomView),
	}
	for _, r := range c.rooms.List() {
		rv := RoomView{
			ID:           r.ID,
			Name:         r.Name,
			State:        r.State,
			Mode:         r.Mode,
			TimerSeconds: r.TimerSeconds,
			HostID:       r.HostID,
			HasPassword:  r.HasPassword,
			Password:     r.Password,
			QuickPlay:    r.QuickPlay,
			TimerArmed:   c.timers.Armed(r.ID),
			Players:      make(map[string]PlayerView),
		}
		for id, p := range r.Players {
			rv.Players[id] = PlayerView{
				ID:     p.ID,
				Name:   p.Name,
				Choice: p.Choice,
				Ready:  p.Ready,
				Score:  p.Score,
			}
		}
		v.Rooms[r.ID] = rv
	}
	return v
}
