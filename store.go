package guing

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/remeh/sizedwaitgroup"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"
)

// AtlasHandle addresses an atlas slot in an AtlasStore. The generation makes
// a handle to an unloaded atlas stale instead of aliasing whatever reuses the
// slot. The zero handle is never valid.
type AtlasHandle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h was never assigned.
func (h AtlasHandle) IsZero() bool {
	return h.gen == 0
}

type atlasSlot struct {
	gen   uint32
	atlas *Atlas
}

// AtlasSpec names the resources of one atlas for LoadAll.
type AtlasSpec struct {
	Name      string
	JSONPath  string
	ImagePath string
	KeepData  bool
}

// AtlasStore owns every loaded atlas. Load counters and slots are guarded by
// one mutex so textures may be taken and removed from any goroutine; GPU work
// is always deferred to the render thread through the task queue.
type AtlasStore struct {
	mu    deadlock.Mutex
	slots []atlasSlot
	free  []uint32

	tasks   *TaskQueue
	workers int
	log     *zap.Logger
}

// NewAtlasStore creates a store that schedules uploads on tasks. workers
// bounds the parallel decodes of LoadAll.
func NewAtlasStore(tasks *TaskQueue, workers int, log *zap.Logger) *AtlasStore {
	if workers <= 0 {
		workers = 1
	}
	return &AtlasStore{tasks: tasks, workers: workers, log: orNop(log)}
}

// Load registers an atlas from TexturePacker JSON and decoded pixels. The GPU
// upload runs as a one-shot render task; afterwards the host pixels are
// discarded unless keepData is set.
func (s *AtlasStore) Load(name string, jsonData []byte, img image.Image, keepData bool) (AtlasHandle, error) {
	if img == nil {
		return AtlasHandle{}, fmt.Errorf("load atlas %q: nil image", name)
	}
	regions, err := ParseAtlas(jsonData)
	if err != nil {
		return AtlasHandle{}, fmt.Errorf("load atlas %q: %w", name, err)
	}
	b := img.Bounds()
	a := &Atlas{
		Name:     name,
		regions:  regions,
		width:    b.Dx(),
		height:   b.Dy(),
		host:     img,
		keepData: keepData,
	}
	h := s.insert(a)
	s.tasks.Submit(OneShot(func() { s.upload(h) }))
	s.log.Debug("atlas queued for upload",
		zap.String("atlas", name), zap.Int("regions", len(regions)))
	return h, nil
}

// LoadAll decodes several atlases in parallel, bounded by the store's worker
// count. Atlases that fail to load are logged and skipped. The returned map
// holds the handles of the ones that loaded, keyed by AtlasSpec.Name.
func (s *AtlasStore) LoadAll(ctx context.Context, res Resources, specs []AtlasSpec) (map[string]AtlasHandle, error) {
	var (
		mu      sync.Mutex
		handles = make(map[string]AtlasHandle, len(specs))
	)
	swg := sizedwaitgroup.New(s.workers)
	for _, spec := range specs {
		if ctx.Err() != nil {
			break
		}
		if err := swg.AddWithContext(ctx); err != nil {
			break
		}
		go func(spec AtlasSpec) {
			defer swg.Done()
			h, err := s.loadSpec(res, spec)
			if err != nil {
				s.log.Warn("atlas skipped", zap.String("atlas", spec.Name), zap.Error(err))
				return
			}
			mu.Lock()
			handles[spec.Name] = h
			mu.Unlock()
		}(spec)
	}
	swg.Wait()
	return handles, ctx.Err()
}

func (s *AtlasStore) loadSpec(res Resources, spec AtlasSpec) (AtlasHandle, error) {
	data, err := res.LoadData(spec.JSONPath)
	if err != nil {
		return AtlasHandle{}, err
	}
	img, err := res.LoadImage(spec.ImagePath)
	if err != nil {
		return AtlasHandle{}, err
	}
	return s.Load(spec.Name, data, img, spec.KeepData)
}

func (s *AtlasStore) insert(a *Atlas) AtlasHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, atlasSlot{})
	}
	slot := &s.slots[idx]
	slot.gen++
	slot.atlas = a
	return AtlasHandle{index: idx, gen: slot.gen}
}

// lookup resolves h. The caller holds s.mu.
func (s *AtlasStore) lookup(h AtlasHandle) (*Atlas, error) {
	if h.gen == 0 || int(h.index) >= len(s.slots) {
		return nil, ErrStaleAtlas
	}
	slot := &s.slots[h.index]
	if slot.gen != h.gen || slot.atlas == nil {
		return nil, ErrStaleAtlas
	}
	return slot.atlas, nil
}

// upload creates the GPU image. Runs on the render thread.
func (s *AtlasStore) upload(h AtlasHandle) {
	s.mu.Lock()
	a, err := s.lookup(h)
	if err != nil || a.gpu != nil {
		s.mu.Unlock()
		return
	}
	host := a.host
	s.mu.Unlock()

	gpu := ebiten.NewImageFromImage(host)

	s.mu.Lock()
	a, err = s.lookup(h)
	if err != nil {
		// Unloaded while uploading.
		s.mu.Unlock()
		gpu.Deallocate()
		return
	}
	a.gpu = gpu
	if !a.keepData {
		a.host = nil
	}
	s.mu.Unlock()
	s.log.Debug("atlas uploaded", zap.String("atlas", a.Name))
}

// Get returns the atlas behind h for inspection.
func (s *AtlasStore) Get(h AtlasHandle) (*Atlas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(h)
}

// SetUnloadListener installs the listener fired when h's counter drops to
// zero.
func (s *AtlasStore) SetUnloadListener(h AtlasHandle, fn func(name string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.lookup(h)
	if err != nil {
		return err
	}
	a.OnUnload = fn
	return nil
}

// Texture returns a view of one region and increments the atlas counter.
// Every texture must be paired with exactly one Remove.
func (s *AtlasStore) Texture(h AtlasHandle, name string) (*Texture, error) {
	s.mu.Lock()
	a, err := s.lookup(h)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("texture %q: %w", name, err)
	}
	r, ok := a.regions[name]
	if !ok {
		s.mu.Unlock()
		s.log.Warn("atlas region not found", zap.String("atlas", a.Name), zap.String("region", name))
		return nil, fmt.Errorf("texture %q in %q: %w", name, a.Name, ErrRegionNotFound)
	}
	a.refs++
	s.mu.Unlock()
	return &Texture{store: s, handle: h, name: name, region: r, atlasW: a.width, atlasH: a.height}, nil
}

// Retain adds an owner-level reference to the atlas.
func (s *AtlasStore) Retain(h AtlasHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.lookup(h)
	if err != nil {
		return err
	}
	a.refs++
	return nil
}

// Release drops a reference taken with Retain or Texture. When the counter
// reaches zero the atlas unloads: the listener fires once, the slot
// generation advances and the GPU image is freed on the render thread.
// Releasing an atlas nobody references returns ErrUnbalancedRelease and
// leaves it loaded.
func (s *AtlasStore) Release(h AtlasHandle) error {
	s.mu.Lock()
	a, err := s.lookup(h)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if a.refs == 0 {
		s.mu.Unlock()
		return fmt.Errorf("release %q: %w", a.Name, ErrUnbalancedRelease)
	}
	a.refs--
	if a.refs > 0 {
		s.mu.Unlock()
		return nil
	}
	slot := &s.slots[h.index]
	slot.gen++
	slot.atlas = nil
	s.free = append(s.free, h.index)
	gpu, listener := a.gpu, a.OnUnload
	a.gpu, a.host, a.OnUnload = nil, nil, nil
	s.mu.Unlock()

	if listener != nil {
		listener(a.Name)
	}
	if gpu != nil {
		s.tasks.Submit(OneShot(gpu.Deallocate))
	}
	s.log.Debug("atlas unloaded", zap.String("atlas", a.Name))
	return nil
}

// Refs reports the current load counter of h, or zero for a stale handle.
func (s *AtlasStore) Refs(h AtlasHandle) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.lookup(h)
	if err != nil {
		return 0
	}
	return a.refs
}

// Loaded reports the number of live atlases.
func (s *AtlasStore) Loaded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots) - len(s.free)
}
