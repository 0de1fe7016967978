package core

import (
	"math"
	"testing"
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
		{"0", "0", true},
		{"0.001", "0.001", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"1e3", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestAmountFromFloat(t *testing.T) {
	d, err := AmountFromFloat(10.1)
	if err != nil || d.String() != "10.1" {
		t.Fatalf("expected 10.1, got %s (err=%v)", d, err)
	}
	for _, bad := range []float64{-0.5, math.NaN(), math.Inf(1)} {
		if _, err := AmountFromFloat(bad); err == nil {
			t.Fatalf("%v expected error", bad)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	d, _ := ParseAmount("1234.5")
	if got := FormatMoney(d, "eur"); got != "€1234.50" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatMoney(d.Neg(), "nope"); got != "-$1234.50" {
		t.Fatalf("unexpected %q", got)
	}
	if len(Currencies()) != 20 || Currencies()[0].Code != "AUD" {
		t.Fatalf("unexpected currency table")
	}
}
