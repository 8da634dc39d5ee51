package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.5", 1.5, true},
		{"1,5", 1.5, true},
		{"0", 0, true},
		{" 2.50 ", 2.5, true},
		{"50 000", 50000, true},
		{"1,250.75", 1250.75, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestRoundAmount(t *testing.T) {
	if got := RoundAmount(20000.0/3, 2); got != 6666.67 {
		t.Fatalf("expected 6666.67, got %v", got)
	}
	if got := RoundAmount(2.5, 0); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}
