package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/catalogs"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/world"
)

func testCatalogs() *catalogs.Catalogs {
	return &catalogs.Catalogs{
		Blocks: catalogs.BlockCatalog{
			Defs: map[uint16]catalogs.BlockDef{
				0: {ID: 0, Name: "air", Faces: []int{0}},
				1: {ID: 1, Name: "cobblestone", Solid: true, Faces: []int{0}},
				5: {ID: 5, Name: "sand", Solid: true, Faces: []int{5}},
			},
			IDs: []uint16{0, 1, 5},
		},
	}
}

func testConfig() Config {
	return Config{Seed: 42, Catalogs: testCatalogs()}
}

func TestInteractBreak(t *testing.T) {
	s := New(testConfig())
	s.SetBlock(world.Vec3i{X: 3, Y: 0, Z: 0}, 1)

	hit := s.Interact(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{1, 0, 0}, ActionBreak)
	if !hit {
		t.Fatalf("expected a hit")
	}
	if got := s.Store().GetBlock(world.Vec3i{X: 3, Y: 0, Z: 0}); got != 0 {
		t.Fatalf("block not broken: %d", got)
	}
}

func TestInteractPlace(t *testing.T) {
	s := New(testConfig())
	s.SetBlock(world.Vec3i{X: 3, Y: 0, Z: 0}, 1)

	hit := s.Interact(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{1, 0, 0}, ActionPlace)
	if !hit {
		t.Fatalf("expected a hit")
	}
	// The held block lands in the last air cell crossed before the hit.
	if got := s.Store().GetBlock(world.Vec3i{X: 2, Y: 0, Z: 0}); got != s.Holding() {
		t.Fatalf("placed %d at (2,0,0), want held block %d", got, s.Holding())
	}
	if got := s.Store().GetBlock(world.Vec3i{X: 3, Y: 0, Z: 0}); got != 1 {
		t.Fatalf("hit block overwritten: %d", got)
	}
}

func TestInteractPick(t *testing.T) {
	s := New(testConfig())
	s.SetBlock(world.Vec3i{X: 3, Y: 0, Z: 0}, 1)
	s.SetHolding(5)

	if !s.Interact(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{1, 0, 0}, ActionPick) {
		t.Fatalf("expected a hit")
	}
	if s.Holding() != 1 {
		t.Fatalf("holding = %d after pick, want 1", s.Holding())
	}
	if got := s.Store().GetBlock(world.Vec3i{X: 3, Y: 0, Z: 0}); got != 1 {
		t.Fatalf("pick must not modify the world, block = %d", got)
	}
}

func TestInteractOutOfRangeMisses(t *testing.T) {
	s := New(testConfig())
	s.SetBlock(world.Vec3i{X: 10, Y: 0, Z: 0}, 1)

	if s.Interact(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{1, 0, 0}, ActionBreak) {
		t.Fatalf("hit a block beyond the default reach")
	}
	if got := s.Store().GetBlock(world.Vec3i{X: 10, Y: 0, Z: 0}); got != 1 {
		t.Fatalf("out-of-range block modified: %d", got)
	}
}

func TestRebuildDirtyMeshes(t *testing.T) {
	s := New(testConfig())
	s.SetBlock(world.Vec3i{X: 1, Y: 1, Z: 1}, 1)
	s.SetBlock(world.Vec3i{X: 20, Y: 1, Z: 1}, 1)

	updates := s.RebuildDirtyMeshes(0)
	if len(updates) != 2 {
		t.Fatalf("rebuilt %d meshes, want 2", len(updates))
	}
	for _, u := range updates {
		if u.Mesh == nil || u.Mesh.FaceCount() == 0 {
			t.Fatalf("chunk %+v produced an empty mesh", u.Key)
		}
		if s.Mesh(u.Key) != u.Mesh {
			t.Fatalf("update mesh not cached for %+v", u.Key)
		}
	}
	if len(s.RebuildDirtyMeshes(0)) != 0 {
		t.Fatalf("dirty flags not cleared by rebuild")
	}

	// An edit re-dirties exactly its chunk.
	s.SetBlock(world.Vec3i{X: 1, Y: 1, Z: 2}, 5)
	updates = s.RebuildDirtyMeshes(0)
	if len(updates) != 1 || updates[0].Key != (world.ChunkKey{}) {
		t.Fatalf("expected only chunk (0,0,0) to rebuild, got %d updates", len(updates))
	}
}

func TestRebuildBudget(t *testing.T) {
	s := New(testConfig())
	for i := 0; i < 4; i++ {
		s.SetBlock(world.Vec3i{X: i * 16, Y: 0, Z: 0}, 1)
	}

	if got := len(s.RebuildDirtyMeshes(3)); got != 3 {
		t.Fatalf("budgeted rebuild did %d chunks, want 3", got)
	}
	if got := len(s.RebuildDirtyMeshes(3)); got != 1 {
		t.Fatalf("second pass did %d chunks, want the 1 left over", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.vxw")

	s := New(testConfig())
	edits := []struct {
		pos world.Vec3i
		b   uint16
	}{
		{world.Vec3i{X: 0, Y: 0, Z: 0}, 1},
		{world.Vec3i{X: 15, Y: 15, Z: 15}, 5},
		{world.Vec3i{X: -7, Y: 3, Z: 40}, 1},
	}
	for _, e := range edits {
		s.SetBlock(e.pos, e.b)
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	r, err := Load(path, testConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, e := range edits {
		if got := r.Store().GetBlock(e.pos); got != e.b {
			t.Fatalf("restored GetBlock(%v) = %d, want %d", e.pos, got, e.b)
		}
	}
	if r.Seed() != 42 {
		t.Fatalf("seed = %d after load, want 42", r.Seed())
	}
	if r.WorldDigest() != s.WorldDigest() {
		t.Fatalf("world digest changed across save/load")
	}

	// Restored chunks are dirty and re-mesh identically.
	if len(r.RebuildDirtyMeshes(0)) != r.Store().LoadedCount() {
		t.Fatalf("restored chunks must all re-mesh")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.vxw"), testConfig())
	if !os.IsNotExist(err) {
		t.Fatalf("got %v, want not-exist", err)
	}
}

type memSink struct {
	lines []any
}

func (m *memSink) Write(v any) error {
	// Round-trip through JSON the way the real sink does.
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	m.lines = append(m.lines, out)
	return nil
}

func TestEventsRecorded(t *testing.T) {
	sink := &memSink{}
	cfg := testConfig()
	cfg.Events = sink

	s := New(cfg)
	s.SetBlock(world.Vec3i{X: 1, Y: 2, Z: 3}, 1)
	if err := s.Save(filepath.Join(t.TempDir(), "save.vxw")); err != nil {
		t.Fatalf("save: %v", err)
	}

	if len(sink.lines) != 2 {
		t.Fatalf("got %d events, want set_block + save", len(sink.lines))
	}
	first := sink.lines[0].(map[string]any)
	if first["type"] != "set_block" {
		t.Fatalf("first event type = %v", first["type"])
	}
	second := sink.lines[1].(map[string]any)
	if second["type"] != "save" {
		t.Fatalf("second event type = %v", second["type"])
	}
}

func TestStats(t *testing.T) {
	s := New(testConfig())
	s.SetBlock(world.Vec3i{X: 0, Y: 0, Z: 0}, 1)
	s.SetBlock(world.Vec3i{X: 30, Y: 0, Z: 0}, 1)

	st := s.Stats()
	if st.LoadedChunks != 2 || st.DirtyChunks != 2 || st.Edits != 2 {
		t.Fatalf("stats = %+v", st)
	}
	if st.WorldDigest == "" {
		t.Fatalf("empty world digest")
	}

	s.RebuildDirtyMeshes(0)
	if got := s.Stats().DirtyChunks; got != 0 {
		t.Fatalf("dirty count = %d after rebuild", got)
	}
}
