package guing

import (
	"fmt"
	"sync"
	"testing"
)

func testFont(t *testing.T) Font {
	t.Helper()
	f := NewFont(nil, 14)
	if f.Face == nil {
		t.Fatal("default font unavailable")
	}
	return f
}

func addLines(j *Journal, from, to int) {
	for i := from; i <= to; i++ {
		j.Add(fmt.Sprintf("m%d", i))
	}
}

func sameLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestJournalCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JournalMaxEntries = 5
	// Without a face every line is visible, which makes the cap observable.
	j := NewJournal(cfg, Font{}, 200, 100, nil)
	addLines(j, 0, 7)
	if j.Len() != 5 {
		t.Errorf("Len = %d, want 5", j.Len())
	}
	want := []string{"m3", "m4", "m5", "m6", "m7"}
	if got := j.VisibleText(); !sameLines(got, want) {
		t.Errorf("VisibleText = %v, want %v", got, want)
	}
	j.Clear()
	if j.Len() != 0 || len(j.VisibleText()) != 0 {
		t.Error("Clear should empty the journal")
	}
}

func TestJournalScrolling(t *testing.T) {
	font := testFont(t)
	j := NewJournal(DefaultConfig(), font, 300, 2*journalPadding+3*font.LineHeight(), nil)
	addLines(j, 0, 9)

	if got, want := j.VisibleText(), []string{"m7", "m8", "m9"}; !sameLines(got, want) {
		t.Fatalf("VisibleText = %v, want %v", got, want)
	}
	if !j.AtBottom() {
		t.Error("a new journal should stick to the bottom")
	}

	j.ScrollBy(2)
	if j.AtBottom() || j.ScrollOffset() != 2 {
		t.Fatalf("offset = %d, want 2", j.ScrollOffset())
	}
	// New text while scrolled up keeps the view in place.
	j.Add("m10")
	if got, want := j.VisibleText(), []string{"m5", "m6", "m7"}; !sameLines(got, want) {
		t.Errorf("scrolled view = %v, want %v", got, want)
	}

	j.ScrollBy(100)
	if got := j.VisibleText(); got[0] != "m0" {
		t.Errorf("scrolling past the top should clamp, first line %q", got[0])
	}
	j.ScrollBy(-100)
	if !j.AtBottom() {
		t.Error("scrolling past the bottom should clamp to it")
	}

	j.ScrollBy(4)
	j.ScrollToBottom()
	if got, want := j.VisibleText(), []string{"m8", "m9", "m10"}; !sameLines(got, want) {
		t.Errorf("bottom view = %v, want %v", got, want)
	}
}

func TestJournalWheel(t *testing.T) {
	font := testFont(t)
	j := NewJournal(DefaultConfig(), font, 300, 2*journalPadding+2*font.LineHeight(), nil)
	addLines(j, 0, 9)
	j.VisibleText()

	if !j.HandleMouseEvent(MouseEvent{Phase: MouseWheel, WheelY: 1}) {
		t.Fatal("wheel should be consumed")
	}
	if j.ScrollOffset() != journalWheelStep {
		t.Errorf("offset = %d, want %d", j.ScrollOffset(), journalWheelStep)
	}
	j.HandleMouseEvent(MouseEvent{Phase: MouseWheel, WheelY: -1})
	if !j.AtBottom() {
		t.Error("wheel down should scroll back to the bottom")
	}
	if j.HandleMouseEvent(MouseEvent{Phase: MouseClick}) {
		t.Error("clicks are not consumed by the journal")
	}
}

func TestJournalWrapsLongEntries(t *testing.T) {
	font := testFont(t)
	j := NewJournal(DefaultConfig(), font, 80, 400, nil)
	j.Add("the quick brown fox jumps over the lazy dog")
	lines := j.VisibleText()
	if len(lines) < 2 {
		t.Fatalf("lines = %v, want the entry wrapped", lines)
	}
	for _, l := range lines {
		if w, _ := font.Measure(l); w > j.textWidth() {
			t.Errorf("line %q is %.1f wide, limit %.1f", l, w, j.textWidth())
		}
	}
	if j.Len() != 1 {
		t.Errorf("Len = %d, wrapping must not add entries", j.Len())
	}
}

func TestJournalRestoresShowAge(t *testing.T) {
	j := NewJournal(DefaultConfig(), Font{}, 100, 100, nil)
	j.ShowAge = true
	props := j.OnSave(j.Widget)
	other := NewJournal(DefaultConfig(), Font{}, 100, 100, nil)
	other.OnRestore(other.Widget, props)
	if !other.ShowAge {
		t.Error("ShowAge should survive save and restore")
	}
}

func TestJournalConcurrentAdd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JournalMaxEntries = 50
	j := NewJournal(cfg, Font{}, 200, 100, nil)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				j.Add(fmt.Sprintf("m%d", i))
				if j.Len() > 50 {
					t.Error("Len exceeded the cap")
					return
				}
			}
		}()
	}
	for range 100 {
		j.flush()
	}
	wg.Wait()
	j.flush()
	if j.Len() != 50 {
		t.Errorf("Len = %d, want 50", j.Len())
	}
}
