package money

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Amount
		wantErr error
	}{
		{"100", 10000, nil},
		{"100.00", 10000, nil},
		{"10.01", 1001, nil},
		{"0.1", 10, nil},
		{"-30", -3000, nil},
		{"0.001", 0, ErrTooPrecise},
		{"abc", 0, ErrInvalidFormat},
		{"", 0, ErrInvalidFormat},
		{"99999999999999999999", 0, ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestAmountString(t *testing.T) {
	tests := []struct {
		in   Amount
		want string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1001, "10.01"},
		{-3000, "-30.00"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Amount(%d).String() = %q, want %q", int64(tt.in), got, tt.want)
		}
	}
}

func TestIsSettled(t *testing.T) {
	for _, a := range []Amount{0, 1, -1} {
		if !IsSettled(a) {
			t.Errorf("IsSettled(%d) = false, want true", a)
		}
	}
	for _, a := range []Amount{2, -2, 5000} {
		if IsSettled(a) {
			t.Errorf("IsSettled(%d) = true, want false", a)
		}
	}
}

func TestSum(t *testing.T) {
	got, err := Sum(3334, 3334, 3333)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if got != 10001 {
		t.Errorf("Sum = %d, want 10001", got)
	}

	if _, err := Sum(Amount(1<<62), Amount(1<<62)); !errors.Is(err, ErrOverflow) {
		t.Errorf("Sum overflow error = %v, want ErrOverflow", err)
	}
}

func TestMulDivRound(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c Amount
		want    Amount
	}{
		{"exact", 5000, 10000, 10000, 5000},
		{"half rounds away from zero", 1, 1, 2, 1},
		{"negative half rounds away from zero", -1, 1, 2, -1},
		{"below half", 1, 1, 3, 0},
		{"large operands", 1 << 40, 1 << 20, 1 << 30, 1 << 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MulDivRound(tt.a, tt.b, tt.c); got != tt.want {
				t.Errorf("MulDivRound(%d, %d, %d) = %d, want %d", tt.a, tt.b, tt.c, got, tt.want)
			}
		})
	}

	// Odd symmetry keeps pairwise balances antisymmetric.
	for a := Amount(-50); a <= 50; a++ {
		if MulDivRound(a, 7, 6) != -MulDivRound(-a, 7, 6) {
			t.Fatalf("MulDivRound not odd for a=%d", a)
		}
	}
}
