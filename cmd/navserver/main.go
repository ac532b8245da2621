package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"voxelnav/internal/navhttp"
	"voxelnav/internal/runindex"
	"voxelnav/internal/scenario"
	"voxelnav/internal/tuning"
	"voxelnav/internal/worldfile"
	"voxelnav/nav"
	"voxelnav/voxel"
)

func main() {
	var (
		addr         = flag.String("addr", "", "http listen address (default from tuning)")
		scenarioPath = flag.String("scenario", "", "path to scenario json (default from tuning)")
		worldPath    = flag.String("world", "", "serve a saved .world.zst instead of building the scenario world")
		tuningPath   = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		dbPath       = flag.String("db", "", "sqlite run index path (default from tuning)")
		disableDB    = flag.Bool("disable_db", false, "disable the sqlite run index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[navserver] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	listen := strings.TrimSpace(*addr)
	if listen == "" {
		listen = tune.ListenAddr
	}
	scPath := strings.TrimSpace(*scenarioPath)
	if scPath == "" {
		scPath = tune.ScenarioPath
	}
	if scPath == "" {
		fmt.Fprintln(os.Stderr, "missing -scenario")
		os.Exit(2)
	}

	sc, err := scenario.Load(scPath)
	if err != nil {
		logger.Fatalf("load scenario: %v", err)
	}
	for i := range sc.Queries {
		sc.Queries[i] = applyFinderDefaults(sc.Queries[i], tune.Finder)
	}

	var w *voxel.World
	if strings.TrimSpace(*worldPath) != "" {
		w, err = worldfile.Read(*worldPath)
		if err != nil {
			logger.Fatalf("read world: %v", err)
		}
		if w.Width() != sc.World.Width || w.Height() != sc.World.Height || w.Depth() != sc.World.Depth {
			logger.Fatalf("world file extents %dx%dx%d do not match scenario %dx%dx%d",
				w.Width(), w.Height(), w.Depth(), sc.World.Width, sc.World.Height, sc.World.Depth)
		}
		logger.Printf("world loaded from %s", *worldPath)
	} else {
		w, err = scenario.BuildWorld(sc)
		if err != nil {
			logger.Fatalf("build world: %v", err)
		}
	}

	g, err := nav.NewGrid(w.Width(), w.Height(), w.Depth(), w)
	if err != nil {
		logger.Fatalf("grid: %v", err)
	}

	var idx *runindex.Index
	dbp := strings.TrimSpace(*dbPath)
	if dbp == "" {
		dbp = tune.DBPath
	}
	if !*disableDB && dbp != "" {
		idx, err = runindex.Open(dbp)
		if err != nil {
			logger.Fatalf("open run index: %v", err)
		}
		defer idx.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	root := http.NewServeMux()
	root.Handle("/", navhttp.NewServer(sc, w, g, idx, logger).Routes())
	if envBool("NAV_ENABLE_PPROF_HTTP", false) {
		root.HandleFunc("/debug/pprof/", pprof.Index)
		root.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		root.HandleFunc("/debug/pprof/profile", pprof.Profile)
		root.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		root.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (NAV_ENABLE_PPROF_HTTP=false)")
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	wd := w.Digest()
	logger.Printf("scenario %s: %dx%dx%d, %d queries, digest=%s", sc.Name, w.Width(), w.Height(), w.Depth(), len(sc.Queries), hex.EncodeToString(wd[:8]))
	logger.Printf("listening on %s", listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func applyFinderDefaults(q scenario.Query, d tuning.Finder) scenario.Query {
	if q.Heuristic == "" {
		q.Heuristic = d.Heuristic
	}
	if q.AllowDiagonal == nil {
		v := d.AllowDiagonal
		q.AllowDiagonal = &v
	}
	if !q.DontCrossCorners {
		q.DontCrossCorners = d.DontCrossCorners
	}
	if q.IterationLimit == 0 {
		q.IterationLimit = d.IterationLimit
	}
	return q
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

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
