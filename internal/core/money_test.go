package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"60000", "60000", true},
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{"  500 ", "500", true},
		{"", "", false},
		{"0", "", false},
		{"-5", "", false},
		{"+5", "", false},
		{"12a", "", false},
		{"1.2.3", "", false},
	}
	for i, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("case %d expected error", i)
			}
			continue
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("case %d got %s, want %s", i, got, tc.want)
		}
	}
}

func TestSplitInstallments(t *testing.T) {
	cases := []struct {
		total string
		count int
		want  string
	}{
		{"60000", 3, "20000"},
		{"30000", 6, "5000"},
		{"100", 3, "33.33"},
		{"0.01", 3, "0"},
		{"100", 0, "100"},
		{"100", -4, "100"},
	}
	for i, tc := range cases {
		got := SplitInstallments(decimal.RequireFromString(tc.total), tc.count)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("case %d got %s, want %s", i, got, tc.want)
		}
	}
}

func TestMinDecimal(t *testing.T) {
	a := decimal.RequireFromString("1.50")
	b := decimal.RequireFromString("2")
	if !MinDecimal(a, b).Equal(a) {
		t.Fatalf("expected %s", a)
	}
	if !MinDecimal(b, a).Equal(a) {
		t.Fatalf("expected %s", a)
	}
	if !MinDecimal(a, a).Equal(a) {
		t.Fatalf("expected %s", a)
	}
}
