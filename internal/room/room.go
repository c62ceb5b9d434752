package room

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mateus-s-a/jokenpo/internal/engine"
)

type Mode string

const (
	ModeInfinite Mode = "infinite"
	ModeBestOf3  Mode = "bestOf3"
	ModeBestOf5  Mode = "bestOf5"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeInfinite, ModeBestOf3, ModeBestOf5:
		return Mode(s), true
	default:
		return "", false
	}
}

// WinThreshold is the number of round wins that ends the match.
// Zero means the match never ends on score.
func (m Mode) WinThreshold() int {
	switch m {
	case ModeBestOf3:
		return 2
	case ModeBestOf5:
		return 3
	default:
		return 0
	}
}

type State string

const (
	StateWaiting State = "waiting"
	StatePlaying State = "playing"
)

type Score struct {
	Wins   int
	Losses int
	Ties   int
}

// Player is owned by exactly one Room; ID is the transport connection id.
type Player struct {
	ID     string
	Name   string
	Choice engine.Move
	Ready  bool
	Score  Score
}

// maxDerivedNameLen bounds room names built from a player name.
const maxDerivedNameLen = 24

// CleanName trims a user-supplied name; ok is false when nothing is left.
func CleanName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	return name, name != ""
}

// DerivedRoomName builds the default room name from its creator's name.
func DerivedRoomName(playerName string) string {
	if utf8.RuneCountInString(playerName) > maxDerivedNameLen {
		runes := []rune(playerName)
		playerName = string(runes[:maxDerivedNameLen])
	}
	return fmt.Sprintf("Sala de %s", playerName)
}

// Room groups one or two players with their match settings and state.
// QuickPlay rooms come from matchmaking and never show up on the public
// list nor in the lobby flow.
type Room struct {
	ID           string
	Name         string
	Mode         Mode
	TimerSeconds int
	HasPassword  bool
	Password     string
	HostID       string
	State        State
	QuickPlay    bool
	Players      map[string]*Player
}

func (r *Room) PlayerCount() int { return len(r.Players) }

func (r *Room) Player(connID string) (*Player, bool) {
	p, ok := r.Players[connID]
	return p, ok
}

// Opponent returns the other occupant of a two-player room.
func (r *Room) Opponent(connID string) (*Player, bool) {
	for id, p := range r.Players {
		if id != connID {
			return p, true
		}
	}
	return nil, false
}

// ResetRound clears both choices; done atomically with the timer cancel
// by the coordinator.
func (r *Room) ResetRound() {
	for _, p := range r.Players {
		p.Choice = engine.MoveNone
	}
}

// ChosenCount reports how many players have a real choice this round.
func (r *Room) ChosenCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Choice != engine.MoveNone {
			n++
		}
	}
	return n
}

func (r *Room) BothReady() bool {
	if len(r.Players) != 2 {
		return false
	}
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}
