package engine

// Move is a single player's throw for one round. MoveNone doubles as
// "not chosen yet" and as the forfeiting move a player is assigned when
// the round timer expires before they answer.
type Move string

const (
	MoveNone     Move = "None"
	MoveRock     Move = "Pedra"
	MovePaper    Move = "Papel"
	MoveScissors Move = "Tesoura"
)

func ParseMove(s string) (Move, bool) {
	switch s {
	case string(MoveRock):
		return MoveRock, true
	case string(MovePaper):
		return MovePaper, true
	case string(MoveScissors):
		return MoveScissors, true
	default:
		return MoveNone, false
	}
}

func (m Move) String() string { return string(m) }

type Outcome int

const (
	OutcomeTie Outcome = iota
	OutcomeWin
	OutcomeLose
)

// beats maps each real move to the move it defeats.
var beats = map[Move]Move{
	MoveRock:     MoveScissors,
	MoveScissors: MovePaper,
	MovePaper:    MoveRock,
}

// Resolve computes the outcome of one round for both sides. MoveNone
// never enters the normal table: it loses against any real move, and
// two MoveNone throws tie.
func Resolve(a, b Move) (Outcome, Outcome) {
	switch {
	case a == MoveNone && b == MoveNone:
		return OutcomeTie, OutcomeTie
	case a == MoveNone:
		return OutcomeLose, OutcomeWin
	case b == MoveNone:
		return OutcomeWin, OutcomeLose
	case a == b:
		return OutcomeTie, OutcomeTie
	case beats[a] == b:
		return OutcomeWin, OutcomeLose
	default:
		return OutcomeLose, OutcomeWin
	}
}

// ResultMessage is the per-player round summary shown by the client.
func ResultMessage(o Outcome) string {
	switch o {
	case OutcomeWin:
		return "Vitória!"
	case OutcomeLose:
		return "Derrota!"
	default:
		return "Empate!"
	}
}

// TimeoutLossMessage replaces ResultMessage for the player whose round
// timer expired.
const TimeoutLossMessage = "Tempo esgotado!"
