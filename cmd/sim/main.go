package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jewelbots.ai/internal/persistence/indexdb"
	persistlog "jewelbots.ai/internal/persistence/log"
	"jewelbots.ai/internal/persistence/snapshot"
	"jewelbots.ai/internal/render"
	"jewelbots.ai/internal/sim/tuning"
	"jewelbots.ai/internal/sim/world"
	"jewelbots.ai/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8080", "http listen address (empty to disable)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml (defaults are used if missing)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite run index")

		seed      = flag.Int64("seed", -1, "world seed (negative picks a time-based seed)")
		width     = flag.Int("width", 0, "grid width override")
		height    = flag.Int("height", 0, "grid height override")
		knowledge = flag.String("knowledge", "", "knowledge mode override: shared or private")
		tickMS    = flag.Int("tick_ms", -1, "tick interval override in ms (0 runs unpaced)")
		maxTicks  = flag.Uint64("max_ticks", 0, "tick budget override")
		duration  = flag.Duration("duration", 0, "wall-clock budget (0 for none)")

		printGrid   = flag.Bool("print", false, "print the grid at start, on every frame and at the end")
		allowRemote = flag.Bool("allow_remote_observers", false, "serve observer endpoints to non-loopback clients")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[sim] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}
	applyFlagOverrides(&tune, flagSet, overrides{
		Seed:      *seed,
		Width:     *width,
		Height:    *height,
		Knowledge: *knowledge,
		TickMS:    *tickMS,
		MaxTicks:  *maxTicks,
	})
	if err := tune.Validate(); err != nil {
		logger.Fatalf("tuning: %v", err)
	}

	cfg, err := tune.WorldConfig()
	if err != nil {
		logger.Fatalf("tuning: %v", err)
	}
	cfg.RunID = uuid.NewString()

	w, err := world.New(cfg)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	cfg = w.Config()
	logger.Printf("run=%s grid=%dx%d seed=%d knowledge=%s jewels=R%d/G%d/B%d",
		cfg.RunID, cfg.Width, cfg.Height, cfg.Seed, cfg.Knowledge,
		cfg.JewelCount(world.Red), cfg.JewelCount(world.Green), cfg.JewelCount(world.Blue))

	runDir := filepath.Join(*dataDir, "runs", cfg.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	// Optional: read-model index (does not affect sim determinism).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "runs.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		idx.BeginRun(cfg.RunID, cfg)
	}

	logOpts := persistlog.LoggerOptions{
		OnClose: func(path string) { logger.Printf("log segment closed: %s", path) },
	}
	tickLog := persistlog.NewTickLoggerWithOptions(runDir, logOpts)
	auditLog := persistlog.NewAuditLoggerWithOptions(runDir, logOpts)
	defer tickLog.Close()
	defer auditLog.Close()
	w.SetTickLogger(multiTickLogger{a: tickLog, b: idx})
	w.SetAuditLogger(multiAuditLogger{a: auditLog, b: idx})

	frameCh := make(chan snapshot.FrameV1, 4)
	w.SetFrameSink(frameCh)

	if *printGrid {
		if err := render.World(os.Stdout, w); err != nil {
			logger.Printf("print: %v", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	if *duration > 0 {
		var cancelBudget context.CancelFunc
		ctx, cancelBudget = context.WithTimeout(ctx, *duration)
		defer cancelBudget()
	}
	runCtx, stopRun := context.WithCancel(ctx)
	defer stopRun()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// The run is over once the world returns; everything else winds down with it.
		defer stopRun()
		err := w.Run(gctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	})

	fw := frameWriter{dir: filepath.Join(runDir, "frames"), idx: idx, print: *printGrid, log: logger}
	g.Go(func() error {
		for {
			select {
			case fr := <-frameCh:
				fw.write(fr)
			case <-gctx.Done():
				fw.drain(frameCh)
				return nil
			}
		}
	})

	if strings.TrimSpace(*addr) != "" {
		obsSrv := observer.NewServer(w, logger)
		obsSrv.AllowRemote = *allowRemote

		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
			rw.WriteHeader(200)
			_, _ = rw.Write([]byte("ok"))
		})
		mux.HandleFunc("/metrics", metricsHandler(w, idx, cfg.RunID))
		mux.HandleFunc("/v1/observer/bootstrap", obsSrv.BootstrapHandler())
		mux.HandleFunc("/v1/observer/ws", obsSrv.WSHandler())

		srv := &http.Server{
			Addr:              *addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Printf("listening on %s", *addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel2()
			_ = srv.Shutdown(ctx2)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Printf("run stopped: %v", err)
	}

	m := w.Metrics()
	idx.FinishRun(m.Tick, m.TotalMoves, m.Complete)
	if *printGrid {
		if err := render.World(os.Stdout, w); err != nil {
			logger.Printf("print: %v", err)
		}
	}
	logger.Printf("run=%s ticks=%d complete=%v jewels_correct=%d/%d", cfg.RunID, m.Tick, m.Complete, m.JewelsCorrect, m.Jewels)
	logger.Printf("total moves: %d", m.TotalMoves)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func flagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

type overrides struct {
	Seed      int64
	Width     int
	Height    int
	Knowledge string
	TickMS    int
	MaxTicks  uint64
}

// applyFlagOverrides copies explicitly set flags over the tuning file values.
func applyFlagOverrides(t *tuning.Tuning, set func(name string) bool, o overrides) {
	if set("seed") {
		t.Seed = o.Seed
	}
	if set("width") {
		t.Width = o.Width
	}
	if set("height") {
		t.Height = o.Height
	}
	if set("knowledge") {
		t.Knowledge = o.Knowledge
	}
	if set("tick_ms") {
		t.TickIntervalMS = o.TickMS
	}
	if set("max_ticks") {
		t.MaxTicks = o.MaxTicks
	}
}
