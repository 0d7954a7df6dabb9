package board

import "fmt"

// MoveFlag enumerates the 14 move shapes a Move can take (fits in 4 bits). It carries enough
// information to replay the move against a Position without having to store the
// captured piece kind: make-move rescans the destination bitboards for that.
type MoveFlag uint8

const (
	Quiet MoveFlag = iota
	DoublePawnPush
	KingSideCastle
	QueenSideCastle
	Capture
	EnPassantCapture
	KnightPromotion
	BishopPromotion
	RookPromotion
	QueenPromotion
	KnightPromotionCapture
	BishopPromotionCapture
	RookPromotionCapture
	QueenPromotionCapture
)

// IsCapture reports whether applying the move removes an enemy piece.
func (f MoveFlag) IsCapture() bool {
	switch f {
	case Capture, EnPassantCapture, KnightPromotionCapture, BishopPromotionCapture, RookPromotionCapture, QueenPromotionCapture:
		return true
	default:
		return false
	}
}

// IsPromotion reports whether applying the move replaces a pawn reaching the back
// rank with the piece indicated by PromotionPiece.
func (f MoveFlag) IsPromotion() bool {
	switch f {
	case KnightPromotion, BishopPromotion, RookPromotion, QueenPromotion,
		KnightPromotionCapture, BishopPromotionCapture, RookPromotionCapture, QueenPromotionCapture:
		return true
	default:
		return false
	}
}

// IsCastle reports whether the move is a castling move.
func (f MoveFlag) IsCastle() bool {
	return f == KingSideCastle || f == QueenSideCastle
}

// PromotionPiece returns the piece kind a promotion flag promotes to. Panics if the
// flag does not denote a promotion.
func (f MoveFlag) PromotionPiece() Piece {
	switch f {
	case KnightPromotion, KnightPromotionCapture:
		return Knight
	case BishopPromotion, BishopPromotionCapture:
		return Bishop
	case RookPromotion, RookPromotionCapture:
		return Rook
	case QueenPromotion, QueenPromotionCapture:
		return Queen
	default:
		panic("flag does not denote a promotion")
	}
}

func (f MoveFlag) String() string {
	switch f {
	case Quiet:
		return "quiet"
	case DoublePawnPush:
		return "double-push"
	case KingSideCastle:
		return "O-O"
	case QueenSideCastle:
		return "O-O-O"
	case Capture:
		return "capture"
	case EnPassantCapture:
		return "en-passant"
	case KnightPromotion:
		return "=N"
	case BishopPromotion:
		return "=B"
	case RookPromotion:
		return "=R"
	case QueenPromotion:
		return "=Q"
	case KnightPromotionCapture:
		return "x=N"
	case BishopPromotionCapture:
		return "x=B"
	case RookPromotionCapture:
		return "x=R"
	case QueenPromotionCapture:
		return "x=Q"
	default:
		return "?"
	}
}

// Move is a not-necessarily-legal move, encoded as from-square, to-square and a flag
// describing the shape of the move. It deliberately does not carry the captured piece
// kind: make-move rescans the destination bitboards instead, keeping the record small
// and trivially copyable. Fits in 16 bits (6+6+4) if packed; kept as a plain struct
// here for readability.
type Move struct {
	From, To Square
	Flag     MoveFlag
}

// ParseMove parses a move in pure coordinate notation, such as "a2a4" or "a7a8q". The
// parsed move's Flag is a best-effort guess (Quiet, or a quiet-promotion variant) since
// coordinate notation alone cannot distinguish captures, double-pushes, castling or
// en-passant without board context; callers should prefer resolving against a legal
// move list (see pkg/notation) whenever one is available.
func ParseMove(str string) (Move, error) {
	runes := []rune(str)

	if len(runes) < 4 || len(runes) > 5 {
		return Move{}, fmt.Errorf("invalid move: %q", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid from square in %q: %w", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid to square in %q: %w", str, err)
	}

	m := Move{From: from, To: to, Flag: Quiet}
	if len(runes) == 5 {
		promo, ok := ParsePiece(runes[4])
		if !ok || promo == Pawn || promo == King {
			return Move{}, fmt.Errorf("invalid promotion in %q", str)
		}
		switch promo {
		case Knight:
			m.Flag = KnightPromotion
		case Bishop:
			m.Flag = BishopPromotion
		case Rook:
			m.Flag = RookPromotion
		case Queen:
			m.Flag = QueenPromotion
		}
	}
	return m, nil
}

// Equals reports whether two moves have the same from, to and flag.
func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Flag == o.Flag
}

// String renders the move in pure coordinate notation, e.g. "e2e4" or "a7a8q".
func (m Move) String() string {
	if m.Flag.IsPromotion() {
		return fmt.Sprintf("%v%v%v", m.From, m.To, m.Flag.PromotionPiece())
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}

// MaxMoves is the generous upper bound on legal moves in any reachable chess position.
const MaxMoves = 256

// MoveList is a bounded-capacity, stack-allocatable list of moves with a live count, used
// throughout move generation and search to avoid heap allocation per node.
type MoveList struct {
	moves [MaxMoves]Move
	n     int
}

// Add appends a move to the list, silently dropping it if the list is already at
// capacity: legal chess positions never exceed MaxMoves, but a generator bug must
// never corrupt memory, so this degrades rather than crashes.
func (l *MoveList) Add(m Move) {
	if l.n >= MaxMoves {
		return
	}
	l.moves[l.n] = m
	l.n++
}

// Len returns the number of moves currently in the list.
func (l *MoveList) Len() int {
	return l.n
}

// Get returns the move at index i.
func (l *MoveList) Get(i int) Move {
	return l.moves[i]
}

// Set overwrites the move at index i, used by move ordering to swap moves in place.
func (l *MoveList) Set(i int, m Move) {
	l.moves[i] = m
}

// Swap exchanges the moves at indices i and j.
func (l *MoveList) Swap(i, j int) {
	l.moves[i], l.moves[j] = l.moves[j], l.moves[i]
}

// Slice returns the live portion of the list as a slice. The slice aliases the list's
// backing array and is only valid until the list is reused.
func (l *MoveList) Slice() []Move {
	return l.moves[:l.n]
}
