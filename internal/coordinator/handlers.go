package coordinator

import (
	"time"

	"go.uber.org/zap"

	"github.com/mateus-s-a/jokenpo/internal/engine"
	"github.com/mateus-s-a/jokenpo/internal/proto"
	"github.com/mateus-s-a/jokenpo/internal/room"
)

const (
	minTimerSeconds       = 1
	maxTimerSeconds       = 5
	quickPlayTimerSeconds = 5
)

func (c *Coordinator) handleConnected(connID string) {
	c.conns[connID] = struct{}{}
	c.sender.Send(connID, roomListMessage(c.publicRoomList()))
}

func (c *Coordinator) handleDisconnected(connID string) {
	delete(c.conns, connID)

	r, ok := c.rooms.ByConn(connID)
	if !ok {
		return
	}
	c.timers.Cancel(r.ID)

	wasHost := r.HostID == connID
	wasPlaying := r.State == room.StatePlaying
	c.rooms.Detach(connID)

	if r.PlayerCount() == 0 {
		c.rooms.Remove(r.ID)
		c.broadcastRoomList()
		return
	}

	if wasHost {
		for id := range r.Players {
			r.HostID = id
			break
		}
	}

	if wasPlaying {
		// The survivor keeps the room as a fresh lobby.
		r.State = room.StateWaiting
		for _, p := range r.Players {
			p.Choice = engine.MoveNone
			p.Ready = false
			p.Score = room.Score{}
		}
		c.sendToRoom(r, proto.OutMessage{Type: proto.TypeOpponentDisconnected})
	} else {
		c.sendLobbySnapshots(r)
	}
	c.broadcastRoomList()
}

func (c *Coordinator) handleCreateRoom(connID string, p proto.CreateRoomPayload) {
	if _, ok := c.rooms.ByConn(connID); ok {
		c.clientError(connID, "already in a room")
		return
	}
	name, ok := room.CleanName(p.PlayerName)
	if !ok {
		c.clientError(connID, "player name is required")
		return
	}

	r := c.rooms.Create(connID, name, room.ModeInfinite)
	c.log.Info("room created", zap.String("room", r.ID), zap.String("host", name))
	c.sendLobbySnapshots(r)
	c.broadcastRoomList()
}

func (c *Coordinator) handleJoinRoom(connID string, p proto.JoinRoomPayload) {
	if _, ok := c.rooms.ByConn(connID); ok {
		c.joinError(connID, "already in a room")
		return
	}
	name, ok := room.CleanName(p.PlayerName)
	if !ok {
		c.joinError(connID, "player name is required")
		return
	}

	// Quick-play rooms are invisible to the lobby flow; a password on a
	// lobby room only hides it from the list, join by id still works.
	if r, ok := c.rooms.Get(p.RoomID); ok && r.QuickPlay {
		c.joinError(connID, room.ErrRoomNotFound.Error())
		return
	}

	r, err := c.rooms.Join(p.RoomID, connID, name)
	if err != nil {
		c.joinError(connID, err.Error())
		return
	}

	c.sendLobbySnapshots(r)
	c.broadcastRoomList()
}

func (c *Coordinator) handleToggleReady(connID string) {
	r, ok := c.rooms.ByConn(connID)
	if !ok || r.State != room.StateWaiting {
		return
	}
	p, ok := r.Player(connID)
	if !ok {
		return
	}
	p.Ready = !p.Ready

	if r.BothReady() {
		c.startLobbyMatch(r)
		return
	}
	c.sendLobbySnapshots(r)
}

func (c *Coordinator) startLobbyMatch(r *room.Room) {
	r.State = room.StatePlaying
	r.ResetRound()
	c.log.Info("match started",
		zap.String("room", r.ID),
		zap.String("mode", string(r.Mode)),
		zap.Int("timer", r.TimerSeconds))

	players := c.lobbyPlayers(r)
	settings := proto.GameSettings{Mode: string(r.Mode), TimerSeconds: r.TimerSeconds}
	c.sendToRoom(r, proto.OutMessage{
		Type:    proto.TypeNavigateToGame,
		Payload: proto.NavigateToGame{Players: players, Settings: settings},
	})
	c.broadcastRoomList()
}

func (c *Coordinator) handleUpdateSettings(connID string, p proto.UpdateSettingsPayload) {
	r, ok := c.rooms.ByConn(connID)
	if !ok || r.HostID != connID || r.State != room.StateWaiting {
		return
	}

	if name, ok := room.CleanName(p.Name); ok {
		r.Name = name
	}
	if mode, ok := room.ParseMode(p.Mode); ok {
		r.Mode = mode
	}
	if p.Timer != 0 {
		r.TimerSeconds = min(max(p.Timer, minTimerSeconds), maxTimerSeconds)
	}
	if p.HasPassword && !r.HasPassword {
		r.HasPassword = true
		r.Password = newPassword()
	} else if !p.HasPassword && r.HasPassword {
		r.HasPassword = false
		r.Password = ""
	}

	c.sendLobbySnapshots(r)
	c.broadcastRoomList()
}

func (c *Coordinator) handleGeneratePassword(connID string) {
	r, ok := c.rooms.ByConn(connID)
	if !ok || r.HostID != connID || r.State != room.StateWaiting {
		return
	}
	r.HasPassword = true
	r.Password = newPassword()

	c.sendLobbySnapshots(r)
	c.broadcastRoomList()
}

func (c *Coordinator) handleKickPlayer(connID string, p proto.KickPlayerPayload) {
	r, ok := c.rooms.ByConn(connID)
	if !ok || r.HostID != connID || r.State != room.StateWaiting {
		return
	}
	if p.PlayerID == connID {
		return
	}
	if _, ok := r.Player(p.PlayerID); !ok {
		return
	}

	c.rooms.Detach(p.PlayerID)
	c.sender.Send(p.PlayerID, proto.OutMessage{Type: proto.TypeKicked})
	c.sendLobbySnapshots(r)
	c.broadcastRoomList()
}

func (c *Coordinator) handleDeleteRoom(connID string) {
	r, ok := c.rooms.ByConn(connID)
	if !ok || r.HostID != connID {
		return
	}
	c.sendToRoom(r, proto.OutMessage{Type: proto.TypeRoomClosed})
	c.teardownRoom(r)
}

func (c *Coordinator) handleFindGame(connID string, p proto.FindGamePayload) {
	if _, ok := c.rooms.ByConn(connID); ok {
		c.clientError(connID, "already in a room")
		return
	}
	name, ok := room.CleanName(p.PlayerName)
	if !ok {
		c.clientError(connID, "player name is required")
		return
	}
	mode, ok := room.ParseMode(p.GameMode)
	if !ok {
		c.clientError(connID, "unknown game mode: "+p.GameMode)
		return
	}

	if r, found := c.rooms.FindJoinable(mode); found {
		if _, err := c.rooms.Join(r.ID, connID, name); err != nil {
			// FindJoinable guarantees a waiting one-player room.
			c.log.Error("quick-play join failed", zap.String("room", r.ID), zap.Error(err))
			c.clientError(connID, err.Error())
			return
		}
		r.State = room.StatePlaying
		r.ResetRound()
		c.log.Info("quick-play match started", zap.String("room", r.ID), zap.String("mode", string(mode)))

		names := make([]string, 0, 2)
		for _, p := range r.Players {
			names = append(names, p.Name)
		}
		c.sendToRoom(r, proto.OutMessage{
			Type:    proto.TypeGameStart,
			Payload: proto.GameStart{PlayerNames: names},
		})
		c.broadcastRoomList()
		return
	}

	r := c.rooms.Create(connID, name, mode)
	r.QuickPlay = true
	r.TimerSeconds = quickPlayTimerSeconds
	c.sender.Send(connID, proto.OutMessage{Type: proto.TypeWaitingForPlayer})
}

func (c *Coordinator) handlePlayerChoice(connID string, payload proto.PlayerChoicePayload) {
	r, ok := c.rooms.ByConn(connID)
	if !ok || r.State != room.StatePlaying {
		// Expected race: choice arrived after teardown or before start.
		return
	}
	p, ok := r.Player(connID)
	if !ok {
		return
	}
	if p.Choice != engine.MoveNone {
		// Duplicate submission within the round; first one wins.
		return
	}
	move, ok := engine.ParseMove(payload.Choice)
	if !ok {
		c.clientError(connID, "invalid choice: "+payload.Choice)
		return
	}
	p.Choice = move

	switch r.ChosenCount() {
	case 1:
		if opp, ok := r.Opponent(connID); ok {
			c.sender.Send(opp.ID, proto.OutMessage{Type: proto.TypeOpponentHasChosen})
		}
		c.armRoundTimer(r)
	case 2:
		c.timers.Cancel(r.ID)
		c.resolveRound(r, false)
	}
}

func (c *Coordinator) armRoundTimer(r *room.Room) {
	roomID := r.ID
	d := time.Duration(r.TimerSeconds) * time.Second
	armed := c.timers.Arm(roomID, d, func(gen uint64) {
		select {
		case c.inbox <- TimerExpired{RoomID: roomID, Gen: gen}:
		case <-c.ctx.Done():
		}
	})
	if !armed {
		c.log.Warn("round timer already armed", zap.String("room", roomID))
	}
}

func (c *Coordinator) handleTimerExpired(roomID string, gen uint64) {
	if !c.timers.Match(roomID, gen) {
		// Stale fire: the round was resolved or the room torn down
		// while this message sat in the inbox.
		return
	}
	c.timers.Cancel(roomID)

	r, ok := c.rooms.Get(roomID)
	if !ok {
		return
	}
	if r.State != room.StatePlaying || r.PlayerCount() != 2 {
		c.log.Warn("timeout for a room not in a resolvable state",
			zap.String("room", roomID), zap.String("state", string(r.State)))
		return
	}
	c.resolveRound(r, true)
}

func (c *Coordinator) handleForfeit(connID string) {
	r, ok := c.rooms.ByConn(connID)
	if !ok || r.State != room.StatePlaying {
		return
	}
	c.timers.Cancel(r.ID)

	if opp, ok := r.Opponent(connID); ok {
		c.sender.Send(opp.ID, proto.OutMessage{
			Type:    proto.TypeOpponentForfeited,
			Payload: proto.OpponentForfeited{WinnerName: opp.Name},
		})
	}
	c.log.Info("match forfeited", zap.String("room", r.ID), zap.String("player", connID))
	c.teardownRoom(r)
}

// resolveRound runs the five resolution steps as one unit: outcomes,
// score increments, threshold check, then either teardown or reset.
// The caller has already cancelled the room's timer.
func (c *Coordinator) resolveRound(r *room.Room, timedOut bool) {
	if r.PlayerCount() != 2 {
		c.log.Warn("refusing to resolve round without two players",
			zap.String("room", r.ID), zap.Int("players", r.PlayerCount()))
		return
	}

	pair := make([]*room.Player, 0, 2)
	for _, p := range r.Players {
		pair = append(pair, p)
	}
	a, b := pair[0], pair[1]

	oa, ob := engine.Resolve(a.Choice, b.Choice)
	applyOutcome(a, oa)
	applyOutcome(b, ob)

	c.sendRoundResult(a, b, oa, timedOut)
	c.sendRoundResult(b, a, ob, timedOut)

	if winner := matchWinner(r, a, b); winner != nil {
		c.log.Info("match over", zap.String("room", r.ID), zap.String("winner", winner.Name))
		c.sendToRoom(r, proto.OutMessage{
			Type:    proto.TypeMatchOver,
			Payload: proto.MatchOver{WinnerName: winner.Name},
		})
		c.teardownRoom(r)
		return
	}

	r.ResetRound()
}

func applyOutcome(p *room.Player, o engine.Outcome) {
	switch o {
	case engine.OutcomeWin:
		p.Score.Wins++
	case engine.OutcomeLose:
		p.Score.Losses++
	default:
		p.Score.Ties++
	}
}

func matchWinner(r *room.Room, a, b *room.Player) *room.Player {
	threshold := r.Mode.WinThreshold()
	if threshold == 0 {
		return nil
	}
	if a.Score.Wins >= threshold {
		return a
	}
	if b.Score.Wins >= threshold {
		return b
	}
	return nil
}

func (c *Coordinator) sendRoundResult(p, opp *room.Player, o engine.Outcome, timedOut bool) {
	message := engine.ResultMessage(o)
	if timedOut && p.Choice == engine.MoveNone {
		message = engine.TimeoutLossMessage
	}
	c.sender.Send(p.ID, proto.OutMessage{
		Type: proto.TypeGameResult,
		Payload: proto.GameResult{
			Message:        message,
			OpponentChoice: opp.Choice.String(),
			Score: proto.ScoreSnapshot{
				Wins:   p.Score.Wins,
				Losses: p.Score.Losses,
				Ties:   p.Score.Ties,
			},
		},
	})
}

// teardownRoom cancels any pending timer, forgets the room, and
// refreshes the public list. Terminal: no further events for this room
// id have any effect.
func (c *Coordinator) teardownRoom(r *room.Room) {
	c.timers.Cancel(r.ID)
	c.rooms.Remove(r.ID)
	c.broadcastRoomList()
}
