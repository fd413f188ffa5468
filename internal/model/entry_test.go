package model

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusWaiting, StatusServed, true},
		{StatusWaiting, StatusReturn, true},
		{StatusReturn, StatusServed, true},
		{StatusReturn, StatusReturn, false},
		{StatusServed, StatusWaiting, false},
		{StatusServed, StatusReturn, false},
		{StatusServed, StatusServed, false},
		{StatusWaiting, StatusWaiting, false},
		{StatusWaiting, "bogus", false},
		{"bogus", StatusServed, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTimestampColumn(t *testing.T) {
	if got := TimestampColumn(StatusServed); got != "served_at" {
		t.Errorf("served column = %q", got)
	}
	if got := TimestampColumn(StatusReturn); got != "return_at" {
		t.Errorf("return column = %q", got)
	}
	if got := TimestampColumn(StatusWaiting); got != "" {
		t.Errorf("waiting column = %q, want empty", got)
	}
}
