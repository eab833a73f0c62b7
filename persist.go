package guing

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// StateVersion is the layout blob version written by SaveState. Blobs of any
// other version are ignored on load.
const StateVersion uint16 = 1

const maxStateDepth = 64

var stateMagic = [4]byte{'G', 'U', 'N', 'G'}

// WidgetState is the saved layout of one widget and its named children.
type WidgetState struct {
	Name          string
	X, Y          float64
	Width, Height float64
	Visible       bool
	Props         map[string]string
	Children      []WidgetState
}

// Snapshot is a saved GUI layout.
type Snapshot struct {
	Version   uint16
	Character string
	Root      WidgetState
}

// CaptureState records w and its non-transient descendants.
func CaptureState(w *Widget) WidgetState {
	st := WidgetState{
		Name:    w.Name,
		X:       w.X,
		Y:       w.Y,
		Width:   w.Width,
		Height:  w.Height,
		Visible: w.visible,
	}
	if w.OnSave != nil {
		st.Props = w.OnSave(w)
	}
	for _, c := range w.children {
		if c.Transient || c.Name == "" {
			continue
		}
		st.Children = append(st.Children, CaptureState(c))
	}
	return st
}

// ApplyState restores a captured layout onto w. Children are matched by
// name in order; saved children with no live counterpart are skipped and
// live children with no saved state keep their defaults.
func ApplyState(w *Widget, st WidgetState) {
	if w.Name != st.Name {
		return
	}
	w.SetPosition(st.X, st.Y)
	if st.Width > 0 && st.Height > 0 {
		w.SetSize(st.Width, st.Height)
	}
	if st.Props != nil && w.OnRestore != nil {
		w.OnRestore(w, st.Props)
	}
	used := make(map[*Widget]bool, len(st.Children))
	for _, cs := range st.Children {
		for _, c := range w.children {
			if c.Name == cs.Name && !c.Transient && !used[c] {
				used[c] = true
				ApplyState(c, cs)
				break
			}
		}
	}
	w.SetVisible(st.Visible)
}

// EncodeSnapshot serializes s as magic, big-endian version, then gob.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(stateMagic[:])
	if err := binary.Write(&buf, binary.BigEndian, s.Version); err != nil {
		return nil, err
	}
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses and validates a blob written by EncodeSnapshot.
// It returns ErrStateVersion for blobs of another version and
// ErrStateCorrupt for anything else it cannot trust.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if len(data) < len(stateMagic)+2 || !bytes.Equal(data[:len(stateMagic)], stateMagic[:]) {
		return s, fmt.Errorf("%w: bad header", ErrStateCorrupt)
	}
	version := binary.BigEndian.Uint16(data[len(stateMagic):])
	if version != StateVersion {
		return s, fmt.Errorf("%w: got %d, want %d", ErrStateVersion, version, StateVersion)
	}
	if err := gob.NewDecoder(bytes.NewReader(data[len(stateMagic)+2:])).Decode(&s); err != nil {
		return s, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	if s.Version != version {
		return s, fmt.Errorf("%w: header version %d, body version %d", ErrStateCorrupt, version, s.Version)
	}
	if err := validateState(s.Root, 0); err != nil {
		return s, err
	}
	return s, nil
}

func validateState(st WidgetState, depth int) error {
	if depth > maxStateDepth {
		return fmt.Errorf("%w: nested deeper than %d", ErrStateCorrupt, maxStateDepth)
	}
	if st.Name == "" {
		return fmt.Errorf("%w: unnamed widget", ErrStateCorrupt)
	}
	for _, v := range [...]float64{st.X, st.Y, st.Width, st.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s has non-finite geometry", ErrStateCorrupt, st.Name)
		}
	}
	if st.Width < 0 || st.Height < 0 {
		return fmt.Errorf("%w: %s has negative size", ErrStateCorrupt, st.Name)
	}
	for _, c := range st.Children {
		if err := validateState(c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// statePath returns where the current character's layout is stored.
func (g *GUI) statePath() string {
	if g.character == "" {
		return g.cfg.StatePath
	}
	return g.cfg.StatePath + "." + sanitizeLabel(g.character)
}

// SaveState writes the session layout to disk.
func (g *GUI) SaveState() error {
	if g.session == nil {
		return nil
	}
	data, err := EncodeSnapshot(Snapshot{
		Version:   StateVersion,
		Character: g.character,
		Root:      CaptureState(g.session),
	})
	if err != nil {
		return err
	}
	path := g.statePath()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save layout: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	g.log.Debug("layout saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// LoadState restores the session layout from disk. On any error the tree is
// left untouched.
func (g *GUI) LoadState() error {
	if g.session == nil {
		return nil
	}
	data, err := os.ReadFile(g.statePath())
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}
	s, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	if s.Character != g.character {
		return fmt.Errorf("%w: layout belongs to %q", ErrStateCorrupt, s.Character)
	}
	if s.Root.Name != g.session.Name {
		return fmt.Errorf("%w: root %q does not match %q", ErrStateCorrupt, s.Root.Name, g.session.Name)
	}
	ApplyState(g.session, s.Root)
	// Full-screen layers follow the current screen, not the saved one.
	g.session.SetSize(g.width, g.height)
	g.chat.SetSize(g.width, g.height)
	return nil
}
