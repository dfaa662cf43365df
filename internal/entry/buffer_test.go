package entry

import (
	"math/rand"
	"testing"
)

func pressAll(b *Buffer, digits ...int) {
	for _, d := range digits {
		b.Press(d)
	}
}

func TestBuffer_ZeroValue(t *testing.T) {
	var b Buffer
	if b.String() != "000000" {
		t.Errorf("expected 000000, got %s", b.String())
	}
	if b.TotalSeconds() != 0 {
		t.Errorf("expected 0 seconds, got %d", b.TotalSeconds())
	}
}

func TestBuffer_PressShiftsLeft(t *testing.T) {
	var b Buffer
	pressAll(&b, 1, 3, 0)

	if b.String() != "000130" {
		t.Fatalf("expected 000130, got %s", b.String())
	}
	if b.Hours() != 0 || b.Minutes() != 1 || b.Seconds() != 30 {
		t.Errorf("expected 0h 1m 30s, got %dh %dm %ds", b.Hours(), b.Minutes(), b.Seconds())
	}
	if b.TotalSeconds() != 90 {
		t.Errorf("expected 90 seconds, got %d", b.TotalSeconds())
	}
}

func TestBuffer_BackspaceShiftsRight(t *testing.T) {
	b, err := Parse("123456")
	if err != nil {
		t.Fatal(err)
	}
	if !b.Backspace() {
		t.Error("expected backspace to change the buffer")
	}
	if b.String() != "012345" {
		t.Errorf("expected 012345, got %s", b.String())
	}
}

func TestBuffer_BackspaceOnZero(t *testing.T) {
	var b Buffer
	if b.Backspace() {
		t.Error("expected no change on an all-zero buffer")
	}
	if b.String() != "000000" {
		t.Errorf("expected 000000, got %s", b.String())
	}
}

func TestBuffer_HoursGuard(t *testing.T) {
	b, err := Parse("100000")
	if err != nil {
		t.Fatal(err)
	}
	if b.Press(5) {
		t.Error("expected press to be ignored when hours >= 10")
	}
	if b.String() != "100000" {
		t.Errorf("expected 100000, got %s", b.String())
	}
}

func TestBuffer_GuardAllowsNineHours(t *testing.T) {
	b, err := Parse("095959")
	if err != nil {
		t.Fatal(err)
	}
	if !b.Press(1) {
		t.Fatal("expected press to be accepted at 9 hours")
	}
	if b.String() != "959591" {
		t.Errorf("expected 959591, got %s", b.String())
	}
	if b.Hours() != 95 {
		t.Errorf("expected 95 hours, got %d", b.Hours())
	}
}

func TestBuffer_NoClamping(t *testing.T) {
	var b Buffer
	pressAll(&b, 9, 9, 9, 9)
	if b.Minutes() != 99 || b.Seconds() != 99 {
		t.Errorf("expected 99m 99s, got %dm %ds", b.Minutes(), b.Seconds())
	}
	if b.TotalSeconds() != 99*60+99 {
		t.Errorf("expected %d seconds, got %d", 99*60+99, b.TotalSeconds())
	}
}

func TestBuffer_PressOutOfRange(t *testing.T) {
	var b Buffer
	if b.Press(10) || b.Press(-1) {
		t.Error("expected out-of-range digits to be ignored")
	}
	if b.String() != "000000" {
		t.Errorf("expected 000000, got %s", b.String())
	}
}

func TestBuffer_AlwaysSixDigits(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	var b Buffer
	for i := 0; i < 500; i++ {
		if r.Intn(4) == 0 {
			b.Backspace()
		} else {
			b.Press(r.Intn(10))
		}
		if len(b.String()) != Width {
			t.Fatalf("step %d: expected %d digits, got %q", i, Width, b.String())
		}
	}
}

func TestBuffer_PressBackspaceRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	var b Buffer
	for i := 0; i < 200; i++ {
		before := b
		d := r.Intn(10)
		accepted := before.Hours() <= 9
		b.Press(d)
		b.Backspace()

		if accepted && b != before {
			t.Fatalf("step %d: press %d then backspace: expected %s, got %s", i, d, before, b)
		}
		if !accepted {
			want := before
			want.Backspace()
			if b != want {
				t.Fatalf("step %d: guarded press then backspace: expected %s, got %s", i, want, b)
			}
		}
		// Keep the walk moving.
		b.Press(r.Intn(10))
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "12345", "1234567", "12a456", "-12345"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}
