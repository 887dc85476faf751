// Package session ties the world store, mesher, ray caster and
// persistence together behind the surface the driver (window, input and
// render glue) calls into. All state is held here explicitly and owned
// by the single simulation goroutine; there are no package-level
// globals.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/CrispyFlowe/python-minecraft-clone/internal/persistence/snapshot"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/catalogs"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/mesh"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/raycast"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/world"
)

// Action is a crosshair interaction, mapped from mouse buttons by the
// input glue.
type Action int

const (
	ActionBreak Action = iota // clear the hit block
	ActionPlace               // put the held block into the cell before the hit
	ActionPick                // copy the hit block id into the hand
)

// EventSink receives structured session events (edits, saves); the
// JSONL logger satisfies it. Nil disables event logging.
type EventSink interface {
	Write(v any) error
}

type Config struct {
	Seed      int64
	HitRange  float64
	Generator world.Generator // nil: new chunks are all air
	Catalogs  *catalogs.Catalogs
	Events    EventSink
}

type Session struct {
	store  *world.ChunkStore
	cat    *catalogs.BlockCatalog
	events EventSink

	meshes map[world.ChunkKey]*mesh.Data

	seed     int64
	hitRange float64
	holding  uint16
	edits    uint64
}

func New(cfg Config) *Session {
	hr := cfg.HitRange
	if hr <= 0 {
		hr = raycast.DefaultHitRange
	}
	return &Session{
		store:    world.NewChunkStore(cfg.Generator),
		cat:      &cfg.Catalogs.Blocks,
		events:   cfg.Events,
		meshes:   map[world.ChunkKey]*mesh.Data{},
		seed:     cfg.Seed,
		hitRange: hr,
		holding:  5, // sand, the original driver's starting block
	}
}

// Load restores a session from a snapshot file. Any load failure —
// missing file, corruption, unsupported version — is returned without a
// partially populated session; the caller decides whether to fall back
// to a fresh world.
func Load(path string, cfg Config) (*Session, error) {
	snap, err := snapshot.Read(path)
	if err != nil {
		return nil, err
	}
	store, err := world.ImportChunks(cfg.Generator, snap.Header.ChunkSize, snap.Chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", snapshot.ErrCorrupt, err)
	}
	s := New(cfg)
	s.store = store
	if snap.Header.Seed != 0 {
		s.seed = snap.Header.Seed
	}
	return s, nil
}

func (s *Session) Store() *world.ChunkStore { return s.store }
func (s *Session) Holding() uint16          { return s.holding }
func (s *Session) SetHolding(b uint16)      { s.holding = b }
func (s *Session) Seed() int64              { return s.seed }

// SetBlock is the break/place entry point for direct edits; it records
// the edit event on top of the store mutation.
func (s *Session) SetBlock(pos world.Vec3i, b uint16) {
	s.store.SetBlock(pos, b)
	s.edits++
	if s.events != nil {
		_ = s.events.Write(editEvent{
			Type:  "set_block",
			Pos:   pos.ToArray(),
			Block: b,
			Unix:  time.Now().Unix(),
		})
	}
}

type editEvent struct {
	Type  string `json:"type"`
	Pos   [3]int `json:"pos"`
	Block uint16 `json:"block"`
	Unix  int64  `json:"unix"`
}

// Interact resolves a crosshair action: cast a ray from origin along
// dir, stop at the first solid block within range, then apply the
// action the way the original input handler did — break clears the hit
// cell, place writes the held block into the last air cell crossed,
// pick copies the hit block id into the hand. Reports whether anything
// was hit.
func (s *Session) Interact(origin, dir mgl64.Vec3, action Action) bool {
	ray := raycast.New(origin, dir)
	return ray.Cast(s.hitRange, func(current, next world.Vec3i) bool {
		if !s.cat.Solid(s.store.GetBlock(next)) {
			return false
		}
		switch action {
		case ActionBreak:
			s.SetBlock(next, 0)
		case ActionPlace:
			s.SetBlock(current, s.holding)
		case ActionPick:
			s.holding = s.store.GetBlockNumber(next)
		}
		return true
	})
}

// MeshUpdate is the handoff of one rebuilt chunk mesh to the renderer.
// The Data value is freshly built and never mutated afterwards.
type MeshUpdate struct {
	Key  world.ChunkKey
	Mesh *mesh.Data
}

// RebuildDirtyMeshes rebuilds the mesh of every dirty chunk (or at most
// budget of them, oldest key order, when budget > 0) and clears their
// dirty flags. Called once per frame before the draw pass so the
// renderer never sees a half-updated world. The cached mesh is swapped
// whole; a partially built mesh is never observable.
func (s *Session) RebuildDirtyMeshes(budget int) []MeshUpdate {
	keys := s.store.DirtyChunkKeys()
	if budget > 0 && len(keys) > budget {
		keys = keys[:budget]
	}
	var updates []MeshUpdate
	for _, k := range keys {
		ch := s.store.Chunk(k)
		m := mesh.Build(ch, s.store.GetBlock, s.cat)
		s.meshes[k] = m
		ch.ClearDirty()
		updates = append(updates, MeshUpdate{Key: k, Mesh: m})
	}
	return updates
}

// Mesh returns the cached mesh for a chunk, or nil if never built.
func (s *Session) Mesh(k world.ChunkKey) *mesh.Data { return s.meshes[k] }

// Save writes the whole chunk set to path, fully overwriting any
// previous snapshot. On failure the in-memory world and the previous
// file are both left untouched.
func (s *Session) Save(path string) error {
	snap := snapshot.Snapshot{
		Header: snapshot.Header{
			ChunkSize: world.ChunkSize,
			Seed:      s.seed,
			SavedUnix: time.Now().Unix(),
		},
		Chunks: s.store.ExportLoadedChunks(),
	}
	if err := snapshot.Write(path, snap); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	if s.events != nil {
		_ = s.events.Write(saveEvent{
			Type:   "save",
			Path:   path,
			Chunks: len(snap.Chunks),
			Unix:   time.Now().Unix(),
		})
	}
	return nil
}

type saveEvent struct {
	Type   string `json:"type"`
	Path   string `json:"path"`
	Chunks int    `json:"chunks"`
	Unix   int64  `json:"unix"`
}

// Stats is a cheap read-only view for the debug stream and save index.
type Stats struct {
	LoadedChunks int    `json:"loaded_chunks"`
	DirtyChunks  int    `json:"dirty_chunks"`
	Edits        uint64 `json:"edits"`
	WorldDigest  string `json:"world_digest"`
}

func (s *Session) Stats() Stats {
	return Stats{
		LoadedChunks: s.store.LoadedCount(),
		DirtyChunks:  len(s.store.DirtyChunkKeys()),
		Edits:        s.edits,
		WorldDigest:  s.WorldDigest(),
	}
}

// WorldDigest folds every loaded chunk's digest, in deterministic key
// order, into a single hex digest of the world's block contents.
func (s *Session) WorldDigest() string {
	h := sha256.New()
	for _, k := range s.store.LoadedChunkKeys() {
		d := s.store.Chunk(k).Digest()
		h.Write(d[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
