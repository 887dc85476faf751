// Command sandbox is a headless driver for the world core: it resumes
// (or generates) a world, runs the frame loop — edits, mesh rebuilds,
// autosaves — without any window or graphics context, and saves on
// shutdown. The real renderer wires the same session surface to GL.
package main

import (
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/CrispyFlowe/python-minecraft-clone/internal/persistence/indexdb"
	persistlog "github.com/CrispyFlowe/python-minecraft-clone/internal/persistence/log"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/catalogs"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/session"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/terrain"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/tuning"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/transport/ws"
)

// SaveFileName is the fixed snapshot location inside a world directory.
const SaveFileName = "save.vxw"

func main() {
	var (
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 0, "world seed (overrides tuning when non-zero)")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		ticks      = flag.Int("ticks", 0, "run this many ticks then save and exit (0: run until signal)")
		demoEdits  = flag.Bool("demo_edits", true, "apply random break/place interactions each tick")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite save index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[sandbox] ", log.LstdFlags|log.Lmicroseconds)

	tp := *tuningPath
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)
	savePath := filepath.Join(worldDir, SaveFileName)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open save index: %v", err)
		}
		defer idx.Close()
	}

	events := persistlog.NewEventLogger(worldDir)
	defer events.Close()

	gen := terrain.New(tune.Seed, tune.Terrain, paletteFrom(&cats.Blocks, logger))
	cfg := session.Config{
		Seed:      tune.Seed,
		HitRange:  tune.HitRange,
		Generator: gen,
		Catalogs:  cats,
		Events:    events,
	}

	sess, err := session.Load(savePath, cfg)
	switch {
	case err == nil:
		logger.Printf("resumed world from %s (%d chunks)", savePath, sess.Store().LoadedCount())
	case os.IsNotExist(err):
		logger.Printf("no save at %s; starting fresh world (seed %d)", savePath, tune.Seed)
		sess = session.New(cfg)
	default:
		// Corrupt or version-mismatched save: fall back to a generated
		// world rather than refusing to start.
		logger.Printf("load save: %v; starting fresh world", err)
		sess = session.New(cfg)
	}

	// Debug stream reads published stats, never the live session.
	var published atomic.Value
	published.Store(sess.Stats())
	if tune.DebugListen != "" {
		srv := ws.NewServer(func() any { return published.Load() }, time.Second, logger)
		mux := http.NewServeMux()
		mux.Handle("/v1/debug", srv.Handler())
		go func() {
			logger.Printf("debug ws listening on %s", tune.DebugListen)
			if err := http.ListenAndServe(tune.DebugListen, mux); err != nil {
				logger.Printf("debug ws: %v", err)
			}
		}()
	}

	save := func() {
		if err := sess.Save(savePath); err != nil {
			logger.Printf("save failed: %v", err)
			return
		}
		st := sess.Stats()
		logger.Printf("saved %d chunks to %s", st.LoadedChunks, savePath)
		if idx != nil {
			if err := idx.RecordSave(indexdb.SaveRow{
				Path:        savePath,
				SavedUnix:   time.Now().Unix(),
				Chunks:      st.LoadedChunks,
				Edits:       st.Edits,
				WorldDigest: st.WorldDigest,
			}); err != nil {
				logger.Printf("record save: %v", err)
			}
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	tickRate := tune.TickRateHz
	if tickRate <= 0 {
		tickRate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(tune.Seed))
	var lastSave time.Time
	tick := 0
	for {
		select {
		case <-sig:
			logger.Printf("shutting down")
			save()
			return
		case <-ticker.C:
		}

		if *demoEdits {
			demoTick(sess, rng)
		}
		updates := sess.RebuildDirtyMeshes(tune.MeshBudgetPerTick)
		if len(updates) > 0 && tick%tickRate == 0 {
			logger.Printf("tick %d: rebuilt %d chunk meshes", tick, len(updates))
		}
		published.Store(sess.Stats())

		if tune.SaveEverySeconds > 0 && time.Since(lastSave) >= time.Duration(tune.SaveEverySeconds)*time.Second {
			save()
			lastSave = time.Now()
		}

		tick++
		if *ticks > 0 && tick >= *ticks {
			save()
			return
		}
	}
}

// demoTick plays a stand-in for mouse input: aim a short ray somewhere
// near the origin and break, place or pick whatever it hits.
func demoTick(sess *session.Session, rng *rand.Rand) {
	origin := mgl64.Vec3{
		rng.Float64()*32 - 16,
		rng.Float64() * 24,
		rng.Float64()*32 - 16,
	}
	dir := mgl64.Vec3{
		rng.Float64()*2 - 1,
		-rng.Float64(),
		rng.Float64()*2 - 1,
	}
	sess.Interact(origin, dir, session.Action(rng.Intn(3)))
}

func paletteFrom(blocks *catalogs.BlockCatalog, logger *log.Logger) terrain.Palette {
	id := func(name string) uint16 {
		v, ok := blocks.IDByName(name)
		if !ok {
			logger.Fatalf("block catalog: missing %q", name)
		}
		return v
	}
	return terrain.Palette{
		Grass: id("grass"),
		Dirt:  id("dirt"),
		Stone: id("stone"),
		Sand:  id("sand"),
	}
}
