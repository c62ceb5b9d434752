// Package proto defines the closed set of messages exchanged with
// clients. Incoming payloads arrive as loose JSON maps and are decoded
// into the typed structs below; anything that fails to decode is a
// client error, surfaced to the offending connection only.
package proto

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Envelope is the wire frame for client -> server messages.
type Envelope struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// OutMessage is the wire frame for server -> client messages.
type OutMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Client -> server kinds.
const (
	TypeCreateRoom        = "createRoom"
	TypeJoinRoom          = "joinRoom"
	TypePlayerToggleReady = "playerToggleReady"
	TypeUpdateSettings    = "updateSettings"
	TypeGeneratePassword  = "generatePassword"
	TypeKickPlayer        = "kickPlayer"
	TypeDeleteRoom        = "deleteRoom"
	TypeFindGame          = "findGame"
	TypePlayerChoice      = "playerChoice"
	TypePlayerForfeit     = "playerForfeit"
)

// Server -> client kinds.
const (
	TypeRoomListUpdate       = "roomListUpdate"
	TypeJoinRoomError        = "joinRoomError"
	TypeErrorMessage         = "errorMessage"
	TypeLobbyUpdate          = "lobbyUpdate"
	TypeRoomClosed           = "roomClosed"
	TypeWaitingForPlayer     = "waitingForPlayer"
	TypeGameStart            = "gameStart"
	TypeNavigateToGame       = "navigateToGame"
	TypeOpponentHasChosen    = "opponentHasChosen"
	TypeGameResult           = "gameResult"
	TypeMatchOver            = "matchOver"
	TypeOpponentForfeited    = "opponentForfeited"
	TypeOpponentDisconnected = "opponentDisconnected"
	TypeKicked               = "kicked"
)

type CreateRoomPayload struct {
	PlayerName string `mapstructure:"playerName"`
}

type JoinRoomPayload struct {
	RoomID     string `mapstructure:"roomId"`
	PlayerName string `mapstructure:"playerName"`
}

type UpdateSettingsPayload struct {
	Name        string `mapstructure:"name"`
	Mode        string `mapstructure:"mode"`
	Timer       int    `mapstructure:"timer"`
	HasPassword bool   `mapstructure:"hasPassword"`
}

type KickPlayerPayload struct {
	PlayerID string `mapstructure:"playerId"`
}

type FindGamePayload struct {
	PlayerName string `mapstructure:"playerName"`
	GameMode   string `mapstructure:"gameMode"`
}

type PlayerChoicePayload struct {
	Choice string `mapstructure:"choice"`
}

// Decode fills out from an envelope payload map.
func Decode(payload map[string]any, out any) error {
	if err := mapstructure.Decode(payload, out); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

type RoomSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
}

type RoomListUpdate struct {
	Rooms []RoomSummary `json:"rooms"`
}

type JoinRoomError struct {
	Message string `json:"message"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

type LobbyRoom struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Mode         string `json:"mode"`
	TimerSeconds int    `json:"timer"`
	HasPassword  bool   `json:"hasPassword"`
	Password     string `json:"password,omitempty"`
}

type LobbyPlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Ready  bool   `json:"isReady"`
	IsHost bool   `json:"isHost"`
}

// LobbyUpdate is the per-recipient lobby snapshot: IsHost and MyID are
// computed for each occupant separately.
type LobbyUpdate struct {
	Room    LobbyRoom     `json:"room"`
	Players []LobbyPlayer `json:"players"`
	IsHost  bool          `json:"isHost"`
	MyID    string        `json:"myId"`
}

type GameSettings struct {
	Mode         string `json:"mode"`
	TimerSeconds int    `json:"timer"`
}

type GameStart struct {
	PlayerNames []string `json:"playerNames"`
}

type NavigateToGame struct {
	Players  []LobbyPlayer `json:"players"`
	Settings GameSettings  `json:"settings"`
}

type ScoreSnapshot struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

type GameResult struct {
	Message        string        `json:"message"`
	OpponentChoice string        `json:"opponentChoice"`
	Score          ScoreSnapshot `json:"score"`
}

type MatchOver struct {
	WinnerName string `json:"winnerName"`
}

type OpponentForfeited struct {
	WinnerName string `json:"winnerName"`
}
