package game

import "testing"

func TestCamera_StartsSettledOnPlayer(t *testing.T) {
	c := NewCamera(DefaultTuning(), 5880)
	if !near(c.Y, 4980) || c.X != 0 {
		t.Fatalf("expected camera at (0,4980), got (%v,%v)", c.X, c.Y)
	}
}

func TestCamera_FollowEasesHalfway(t *testing.T) {
	c := NewCamera(DefaultTuning(), 5880)
	c.Follow(5780)
	if !near(c.Y, 4930) {
		t.Fatalf("expected 4930 after one eased step, got %v", c.Y)
	}
	c.Follow(5780)
	if !near(c.Y, 4905) {
		t.Fatalf("expected 4905 after two steps, got %v", c.Y)
	}
}

func TestCamera_OnScreenBounds(t *testing.T) {
	c := NewCamera(DefaultTuning(), 5880)
	cases := []struct {
		p    Vec
		want bool
	}{
		{Vec{0, 4980}, true},
		{Vec{1000, 5980}, true},
		{Vec{500, 4979}, false},
		{Vec{1001, 5500}, false},
		{Vec{-1, 5500}, false},
	}
	for _, tc := range cases {
		if got := c.OnScreen(tc.p); got != tc.want {
			t.Fatalf("OnScreen(%s) = %v, want %v", tc.p, got, tc.want)
		}
	}
	if !c.OnScreenPadded(Vec{500, 4940}, 50) || c.OnScreenPadded(Vec{500, 4920}, 50) {
		t.Fatal("padding should extend the view by exactly pad")
	}
}

func TestCamera_ScreenRoundTrip(t *testing.T) {
	c := NewCamera(DefaultTuning(), 5880)
	p := Vec{123, 5432}
	s := c.WorldToScreen(p)
	if !near(s.Y, 452) || c.ScreenToWorld(s) != p {
		t.Fatalf("round trip failed: %s -> %s", p, s)
	}
}
