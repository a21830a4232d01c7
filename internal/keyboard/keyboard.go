// Package keyboard maps characters to the finger and row that type them.
package keyboard

import "unicode"

// Finger identifies the finger responsible for a key.
type Finger int

// Fingers in left-to-right order, thumb last.
const (
	LeftPinky Finger = iota
	LeftRing
	LeftMiddle
	LeftIndex
	RightIndex
	RightMiddle
	RightRing
	RightPinky
	Thumb
)

// Row identifies the keyboard row of a key.
type Row int

// Keyboard rows.
const (
	RowTop Row = iota
	RowHome
	RowBottom
	RowSpace
)

// KeyInfo describes how a key is reached.
type KeyInfo struct {
	Finger Finger
	Row    Row
}

// Layout lists the guided keys row by row, top to bottom.
var Layout = [][]rune{
	[]rune("qwertyuiop"),
	[]rune("asdfghjkl;"),
	[]rune("zxcvbnm,./"),
	{' '},
}

var rowFingers = []Finger{
	LeftPinky, LeftRing, LeftMiddle, LeftIndex, LeftIndex,
	RightIndex, RightIndex, RightMiddle, RightRing, RightPinky,
}

var mapping = buildMapping()

func buildMapping() map[rune]KeyInfo {
	m := make(map[rune]KeyInfo, 31)
	for rowIdx, row := range Layout {
		for col, r := range row {
			if r == ' ' {
				m[r] = KeyInfo{Finger: Thumb, Row: RowSpace}
				continue
			}
			m[r] = KeyInfo{Finger: rowFingers[col], Row: Row(rowIdx)}
		}
	}
	return m
}

// Lookup returns the finger and row for r. Letters are matched case
// insensitively. Unmapped keys report false and carry no guidance.
func Lookup(r rune) (KeyInfo, bool) {
	info, ok := mapping[unicode.ToLower(r)]
	return info, ok
}

// String returns the display name of the finger.
func (f Finger) String() string {
	switch f {
	case LeftPinky:
		return "Left Pinky"
	case LeftRing:
		return "Left Ring"
	case LeftMiddle:
		return "Left Middle"
	case LeftIndex:
		return "Left Index"
	case RightIndex:
		return "Right Index"
	case RightMiddle:
		return "Right Middle"
	case RightRing:
		return "Right Ring"
	case RightPinky:
		return "Right Pinky"
	case Thumb:
		return "Thumb"
	default:
		return "Unknown"
	}
}

// Color returns the hex highlight colour used for the finger.
func (f Finger) Color() string {
	switch f {
	case LeftPinky:
		return "#A855F7"
	case LeftRing:
		return "#3B82F6"
	case LeftMiddle:
		return "#22C55E"
	case LeftIndex:
		return "#EAB308"
	case RightIndex:
		return "#F97316"
	case RightMiddle:
		return "#EF4444"
	case RightRing:
		return "#EC4899"
	case RightPinky:
		return "#6366F1"
	case Thumb:
		return "#6B7280"
	default:
		return "#D1D5DB"
	}
}

// String returns the row name.
func (r Row) String() string {
	switch r {
	case RowTop:
		return "top"
	case RowHome:
		return "home"
	case RowBottom:
		return "bottom"
	case RowSpace:
		return "space"
	default:
		return "unknown"
	}
}
