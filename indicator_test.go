package guing

import "testing"

func TestIndicatorFastDrop(t *testing.T) {
	ind := NewIndicator("health", 100, 10, ColorWhite, DefaultConfig())
	ind.Set(0.4)
	if ind.Displayed() != 0.4 || ind.Animating() {
		t.Errorf("decrease should show at once, displayed %v", ind.Displayed())
	}

	ind.Set(0.8)
	if ind.Displayed() != 0.4 || !ind.Animating() {
		t.Fatal("increase should animate")
	}
	ind.Draw(nil, 100)
	if d := ind.Displayed(); d <= 0.4 || d >= 0.8 {
		t.Errorf("displayed %v mid-animation, want between 0.4 and 0.8", d)
	}
	ind.Draw(nil, 1000)
	if d := ind.Displayed(); d < 0.7999 || d > 0.8001 || ind.Animating() {
		t.Errorf("displayed %v after the animation, want 0.8", d)
	}
}

func TestIndicatorSlowDrop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FastDropBars = false
	ind := NewIndicator("balance", 100, 10, ColorWhite, cfg)
	ind.Set(0.5)
	if ind.Displayed() != 1 || !ind.Animating() {
		t.Error("without FastDrop a decrease animates too")
	}
}

func TestIndicatorHiddenSkipsAnimation(t *testing.T) {
	ind := NewIndicator("spirit", 100, 10, ColorWhite, DefaultConfig())
	ind.Set(0.2)
	ind.Set(0.9)
	ind.SetVisible(false)
	if ind.Displayed() != 0.9 {
		t.Errorf("hiding should jump to the target, displayed %v", ind.Displayed())
	}
	ind.Set(0.95)
	if ind.Displayed() != 0.95 || ind.Animating() {
		t.Error("a hidden bar should not animate")
	}
}

func TestIndicatorSetRatio(t *testing.T) {
	tests := []struct {
		cur, max int
		want     float64
	}{
		{50, 100, 0.5},
		{150, 100, 1},
		{-5, 100, 0},
		{5, 0, 0},
	}
	for _, tt := range tests {
		ind := NewIndicator("bar", 10, 2, ColorWhite, DefaultConfig())
		ind.SetRatio(tt.cur, tt.max)
		if ind.Value() != tt.want {
			t.Errorf("SetRatio(%d, %d) = %v, want %v", tt.cur, tt.max, ind.Value(), tt.want)
		}
	}
}
