package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.5", true},
		{"-120", "-120", true},
		{"+5000", "5000", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "", false},
		{"-", "", false},
		{".", "", false},
		{"", "", false},
		{"1 000", "", false},
		{"+-5", "", false},
		{"-+5", "", false},
		{"--5", "", false},
		{"++5", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestSignedAmount(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	if got := SignedAmount(hundred, true); !got.Equal(hundred.Neg()) {
		t.Fatalf("expense: got %s", got)
	}
	if got := SignedAmount(hundred.Neg(), true); !got.Equal(hundred.Neg()) {
		t.Fatalf("already negative expense: got %s", got)
	}
	if got := SignedAmount(hundred.Neg(), false); !got.Equal(hundred) {
		t.Fatalf("income: got %s", got)
	}
}
