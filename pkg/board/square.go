package board

import "fmt"

// Square is a bit-index into a Bitboard: sq = rank*8 + file, rank 0 is the
// first rank, file 0 is the a-file. 6 bits.
//
//	A8=56 B8=57 C8=58 D8=59 E8=60 F8=61 G8=62 H8=63
//	A7=48 B7=49 C7=50 D7=51 E7=52 F7=53 G7=54 H7=55
//	A6=40 B6=41 C6=42 D6=43 E6=44 F6=45 G6=46 H6=47
//	A5=32 B5=33 C5=34 D5=35 E5=36 F5=37 G5=38 H5=39
//	A4=24 B4=25 C4=26 D4=27 E4=28 F4=29 G4=30 H4=31
//	A3=16 B3=17 C3=18 D3=19 E3=20 F3=21 G3=22 H3=23
//	A2=8  B2=9  C2=10 D2=11 E2=12 F2=13 G2=14 H2=15
//	A1=0  B1=1  C1=2  D1=3  E1=4  F1=5  G1=6  H1=7
type Square int8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1

	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2

	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3

	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4

	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5

	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6

	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7

	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

// NoSquare is the sentinel for "no square", used for an absent en-passant target.
const NoSquare Square = -1

const (
	ZeroSquare Square = 0
	NumSquares Square = 64
)

// NewSquare composes a square from file and rank.
func NewSquare(f File, r Rank) Square {
	return Square(r)<<3 | Square(f)
}

func ParseSquare(f, r rune) (Square, error) {
	file, ok := ParseFile(f)
	if !ok {
		return NoSquare, fmt.Errorf("invalid file: %q", f)
	}
	rank, ok := ParseRank(r)
	if !ok {
		return NoSquare, fmt.Errorf("invalid rank: %q", r)
	}
	return NewSquare(file, rank), nil
}

func ParseSquareStr(str string) (Square, error) {
	runes := []rune(str)
	if len(runes) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", str)
	}
	return ParseSquare(runes[0], runes[1])
}

func (s Square) IsValid() bool {
	return ZeroSquare <= s && s < NumSquares
}

func (s Square) Rank() Rank {
	return Rank(s >> 3)
}

func (s Square) File() File {
	return File(s & 0x7)
}

func (s Square) String() string {
	if !s.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%v%v", s.File(), s.Rank())
}

// Rank is a chess board rank, Rank1=0 .. Rank8=7. 3 bits.
type Rank uint8

const (
	Rank1 Rank = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

const (
	ZeroRank Rank = 0
	NumRanks Rank = 8
)

func ParseRank(r rune) (Rank, bool) {
	if r < '1' || r > '8' {
		return 0, false
	}
	return Rank(r - '1'), true
}

func (r Rank) IsValid() bool {
	return r <= Rank8
}

func (r Rank) V() int {
	return int(r)
}

func (r Rank) String() string {
	if !r.IsValid() {
		return "?"
	}
	return string(rune('1' + r))
}

// File is a chess board file, FileA=0 .. FileH=7. 3 bits.
type File uint8

const (
	FileA File = iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

const (
	ZeroFile File = 0
	NumFiles File = 8
)

func ParseFile(r rune) (File, bool) {
	switch r {
	case 'a', 'A':
		return FileA, true
	case 'b', 'B':
		return FileB, true
	case 'c', 'C':
		return FileC, true
	case 'd', 'D':
		return FileD, true
	case 'e', 'E':
		return FileE, true
	case 'f', 'F':
		return FileF, true
	case 'g', 'G':
		return FileG, true
	case 'h', 'H':
		return FileH, true
	default:
		return 0, false
	}
}

func (f File) IsValid() bool {
	return f <= FileH
}

func (f File) V() int {
	return int(f)
}

func (f File) String() string {
	if !f.IsValid() {
		return "?"
	}
	return string(rune('a' + f))
}
