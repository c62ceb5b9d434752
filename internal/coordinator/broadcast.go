package coordinator

import (
	"crypto/rand"
	"math/big"
	"sort"

	"github.com/mateus-s-a/jokenpo/internal/proto"
	"github.com/mateus-s-a/jokenpo/internal/room"
)

// publicRoomList lists joinable lobby rooms in creation order.
// Password-protected and quick-play rooms exist but stay hidden.
func (c *Coordinator) publicRoomList() proto.RoomListUpdate {
	update := proto.RoomListUpdate{Rooms: []proto.RoomSummary{}}
	for _, r := range c.rooms.List() {
		if r.State != room.StateWaiting || r.HasPassword || r.QuickPlay || r.PlayerCount() >= 2 {
			continue
		}
		update.Rooms = append(update.Rooms, proto.RoomSummary{
			ID:          r.ID,
			Name:        r.Name,
			PlayerCount: r.PlayerCount(),
		})
	}
	return update
}

func roomListMessage(update proto.RoomListUpdate) proto.OutMessage {
	return proto.OutMessage{Type: proto.TypeRoomListUpdate, Payload: update}
}

// broadcastRoomList pushes the public list to every connection, not
// just the ones a change affected.
func (c *Coordinator) broadcastRoomList() {
	msg := roomListMessage(c.publicRoomList())
	for connID := range c.conns {
		c.sender.Send(connID, msg)
	}
}

func (c *Coordinator) sendToRoom(r *room.Room, msg proto.OutMessage) {
	for connID := range r.Players {
		c.sender.Send(connID, msg)
	}
}

func (c *Coordinator) lobbyPlayers(r *room.Room) []proto.LobbyPlayer {
	players := make([]proto.LobbyPlayer, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, proto.LobbyPlayer{
			ID:     p.ID,
			Name:   p.Name,
			Ready:  p.Ready,
			IsHost: p.ID == r.HostID,
		})
	}
	// Host first, then stable by id, so every snapshot lists players in
	// the same order.
	sort.Slice(players, func(i, j int) bool {
		if players[i].IsHost != players[j].IsHost {
			return players[i].IsHost
		}
		return players[i].ID < players[j].ID
	})
	return players
}

// sendLobbySnapshots sends each occupant their own view of the lobby.
func (c *Coordinator) sendLobbySnapshots(r *room.Room) {
	players := c.lobbyPlayers(r)
	lobbyRoom := proto.LobbyRoom{
		ID:           r.ID,
		Name:         r.Name,
		Mode:         string(r.Mode),
		TimerSeconds: r.TimerSeconds,
		HasPassword:  r.HasPassword,
		Password:     r.Password,
	}
	for connID := range r.Players {
		c.sender.Send(connID, proto.OutMessage{
			Type: proto.TypeLobbyUpdate,
			Payload: proto.LobbyUpdate{
				Room:    lobbyRoom,
				Players: players,
				IsHost:  connID == r.HostID,
				MyID:    connID,
			},
		})
	}
}

func (c *Coordinator) clientError(connID, message string) {
	c.sender.Send(connID, proto.OutMessage{
		Type:    proto.TypeErrorMessage,
		Payload: proto.ErrorMessage{Message: message},
	})
}

func (c *Coordinator) joinError(connID, message string) {
	c.sender.Send(connID, proto.OutMessage{
		Type:    proto.TypeJoinRoomError,
		Payload: proto.JoinRoomError{Message: message},
	})
}

const passwordCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newPassword returns a 6-character room password.
func newPassword() string {
	code := make([]byte, 6)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordCharset))))
		if err != nil {
			// crypto/rand only fails when the platform source is broken.
			panic(err)
		}
		code[i] = passwordCharset[num.Int64()]
	}
	return string(code)
}
