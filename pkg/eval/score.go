package eval

import (
	"fmt"

	"github.com/halberd-chess/halberd/pkg/board"
)

// Score is a signed position or search score in centipawns, from White's perspective;
// the search negates as needed for the side to move. Kept as int32 centipawns (not the
// float32 pawns the teacher's codebase historically used) so that mate-distance
// arithmetic stays exact and directly comparable against the Mate/Inf sentinels below.
type Score int32

const (
	Inf  Score = 1000000
	Mate Score = 999000

	MinScore Score = -Inf
	MaxScore Score = Inf
)

// MaxPly bounds the search tree depth; mate scores are distinguishable from ordinary
// evaluations as long as no ordinary evaluation can reach within MaxPly of Mate.
const MaxPly = 128

func (s Score) String() string {
	return fmt.Sprintf("%d", s)
}

// Unit returns the signed unit for the color: 1 for White and -1 for Black. Used to
// flip a White-relative score into the side-to-move-relative score negamax expects.
func Unit(c board.Color) Score {
	if c == board.White {
		return 1
	}
	return -1
}

// MateIn encodes a forced mate delivered ply plies from the current node, from the
// mating side's perspective.
func MateIn(ply int) Score {
	return Mate - Score(ply)
}

// MatedIn encodes being forced into mate ply plies from the current node, from the
// mated side's perspective.
func MatedIn(ply int) Score {
	return -(Mate - Score(ply))
}

// IsMateScore reports whether s denotes a forced mate (for either side), as opposed to
// an ordinary material/positional evaluation.
func IsMateScore(s Score) bool {
	return s > Mate-MaxPly || s < -(Mate-MaxPly)
}

// MatePly returns the number of plies to the forced mate encoded in s. Only meaningful
// when IsMateScore(s) is true.
func MatePly(s Score) int {
	if s < 0 {
		s = -s
	}
	return int(Mate - s)
}

// Crop clamps a score into [MinScore, MaxScore].
func Crop(s Score) Score {
	switch {
	case s > MaxScore:
		return MaxScore
	case s < MinScore:
		return MinScore
	default:
		return s
	}
}

// Max returns the larger of two scores.
func Max(a, b Score) Score {
	if a < b {
		return b
	}
	return a
}

// Min returns the smaller of two scores.
func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}
