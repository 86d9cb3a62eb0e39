package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		out  string
		fail error
	}{
		{in: "1.000", out: "1000"},
		{in: "1.000,50", out: "1000.50"},
		{in: "40.000.000", out: "40000000"},
		{in: "2500000", out: "2500000"},
		{in: "2.500.000", out: "2500000"},
		{in: " $ 1.000 ", out: "1000"},
		{in: "COP 150.750", out: "150750"},
		{in: "cop1.000", out: "1000"},
		{in: "€1.000,00", out: "1000"},
		{in: "1.000,", out: "1000"}, // fraction defaults to 00
		{in: "1.000,505", out: "1000.51"},
		{in: "999", fail: ErrAmountOutOfRange},
		{in: "40.000.001", fail: ErrAmountOutOfRange},
		{in: "999,99", fail: ErrAmountOutOfRange},
		{in: "abc", fail: ErrMalformedAmount},
		{in: "", fail: ErrMalformedAmount},
		{in: "   ", fail: ErrMalformedAmount},
		{in: "-1.000", fail: ErrMalformedAmount},
		{in: "0", fail: ErrMalformedAmount},
		{in: "1.000,50,7", fail: ErrMalformedAmount},
		{in: "1,000.50", fail: ErrMalformedAmount}, // US format rejected
	}

	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.fail != nil {
			if !errors.Is(err, tc.fail) {
				t.Errorf("ParseAmount(%q) expected %v, got value=%s err=%v", tc.in, tc.fail, got, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", tc.in, err)
			continue
		}
		want, _ := decimal.NewFromString(tc.out)
		if !got.Equal(want) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got, want)
		}
	}
}

// Every in-range integer formatted with Colombian thousands separators
// must parse back to itself.
func TestParseAmountColombianRoundTrip(t *testing.T) {
	values := []int64{1000, 1500, 10000, 150750, 999999, 2500000, 39999999, 40000000}
	for _, n := range values {
		formatted := formatColombian(n)
		got, err := ParseAmount(formatted)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", formatted, err)
		}
		if !got.Equal(decimal.NewFromInt(n)) {
			t.Errorf("ParseAmount(%q) = %s, want %d", formatted, got, n)
		}
	}
}

func formatColombian(n int64) string {
	digits := fmt.Sprintf("%d", n)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}
	return string(out)
}
