package entry

import (
	"fmt"
	"strconv"
)

// Width is the number of digits held by a Buffer: HH MM SS.
const Width = 6

// maxGuardHours is the largest hours value that still accepts digit input.
const maxGuardHours = 9

// Buffer is the raw HHMMSS digit entry keyed in before a run starts.
// The zero value reads "000000".
//
// Minutes and seconds are not clamped to 59: the buffer is a digit
// shifter, not a validated clock.
type Buffer struct {
	digits [Width]byte
}

// Parse builds a Buffer from exactly six decimal digits.
func Parse(s string) (Buffer, error) {
	var b Buffer
	if len(s) != Width {
		return b, fmt.Errorf("entry must have %d digits, got %q", Width, s)
	}
	for i := 0; i < Width; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return b, fmt.Errorf("entry %q contains non-digit %q", s, c)
		}
		b.digits[i] = c - '0'
	}
	return b, nil
}

// Press appends d as the least-significant digit, dropping the most
// significant one. Input is ignored once the hours field reads more
// than 9, and digits outside 0-9 are ignored. It reports whether the
// buffer changed.
func (b *Buffer) Press(d int) bool {
	if d < 0 || d > 9 {
		return false
	}
	if b.Hours() > maxGuardHours {
		return false
	}
	before := b.digits
	copy(b.digits[:], b.digits[1:])
	b.digits[Width-1] = byte(d)
	return b.digits != before
}

// Backspace drops the least-significant digit and shifts a zero in on
// the left. It reports whether the buffer changed.
func (b *Buffer) Backspace() bool {
	before := b.digits
	copy(b.digits[1:], before[:Width-1])
	b.digits[0] = 0
	return b.digits != before
}

func (b Buffer) group(i int) int {
	return int(b.digits[i])*10 + int(b.digits[i+1])
}

// Hours returns the first two digits as an integer.
func (b Buffer) Hours() int { return b.group(0) }

// Minutes returns the middle two digits as an integer.
func (b Buffer) Minutes() int { return b.group(2) }

// Seconds returns the last two digits as an integer.
func (b Buffer) Seconds() int { return b.group(4) }

// TotalSeconds converts the entry to a duration in seconds.
func (b Buffer) TotalSeconds() int {
	return b.Hours()*3600 + b.Minutes()*60 + b.Seconds()
}

func (b Buffer) String() string {
	s := make([]byte, 0, Width)
	for _, d := range b.digits {
		s = strconv.AppendInt(s, int64(d), 10)
	}
	return string(s)
}
