package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"voxelnav/internal/runindex"
	"voxelnav/internal/scenario"
	"voxelnav/internal/tuning"
	"voxelnav/internal/worldfile"
	"voxelnav/nav"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "path to scenario json (default from tuning)")
		tuningPath   = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		repeat       = flag.Int("repeat", 0, "timed solves per query (default from tuning)")
		queryID      = flag.String("query", "", "bench a single query id (default: all)")
		finderFlag   = flag.String("finder", "", "override the finder for every query (jps|astar|biastar)")
		dbPath       = flag.String("db", "", "record runs into this sqlite index (optional)")
		saveWorld    = flag.String("save_world", "", "write the built world to this path and continue")
	)
	flag.Parse()

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			tune = tuning.Defaults()
		} else {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
	}

	scPath := strings.TrimSpace(*scenarioPath)
	if scPath == "" {
		scPath = tune.ScenarioPath
	}
	if scPath == "" {
		fmt.Fprintln(os.Stderr, "missing -scenario")
		os.Exit(2)
	}
	rep := *repeat
	if rep <= 0 {
		rep = tune.Bench.Repeat
	}
	if rep <= 0 {
		rep = 1
	}

	sc, err := scenario.Load(scPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load scenario:", err)
		os.Exit(1)
	}
	for i := range sc.Queries {
		sc.Queries[i] = applyFinderDefaults(sc.Queries[i], tune.Finder)
	}
	if *finderFlag != "" {
		if _, err := scenario.NewFinder(*finderFlag); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		for i := range sc.Queries {
			sc.Queries[i].Finder = *finderFlag
		}
	}

	queries := sc.Queries
	if *queryID != "" {
		q, ok := sc.QueryByID(*queryID)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown query %q\n", *queryID)
			os.Exit(2)
		}
		queries = []scenario.Query{q}
	}

	began := time.Now()
	w, err := scenario.BuildWorld(sc)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build world:", err)
		os.Exit(1)
	}
	fmt.Printf("scenario %s: world %dx%dx%d built in %s\n",
		sc.Name, w.Width(), w.Height(), w.Depth(), time.Since(began).Round(time.Millisecond))

	if *saveWorld != "" {
		if err := worldfile.Write(*saveWorld, w); err != nil {
			fmt.Fprintln(os.Stderr, "write world:", err)
			os.Exit(1)
		}
		fmt.Printf("world saved to %s\n", *saveWorld)
	}

	g, err := nav.NewGrid(w.Width(), w.Height(), w.Depth(), w)
	if err != nil {
		fmt.Fprintln(os.Stderr, "grid:", err)
		os.Exit(1)
	}

	var idx *runindex.Index
	if strings.TrimSpace(*dbPath) != "" {
		idx, err = runindex.Open(*dbPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open run index:", err)
			os.Exit(1)
		}
	}

	exitCode := 0
	for _, q := range queries {
		opts, err := q.Options()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", q.ID, err)
			exitCode = 1
			continue
		}
		f, err := scenario.NewFinder(q.Finder, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", q.ID, err)
			exitCode = 1
			continue
		}

		// One traced solve for node counts, kept out of the timed loop.
		path, trace, err := f.FindPathWithTrace(g, q.StartVec(), q.EndVec())
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", q.ID, err)
			exitCode = 1
			continue
		}

		var total, best, worst time.Duration
		for i := 0; i < rep; i++ {
			t0 := time.Now()
			_, _ = f.FindPath(g, q.StartVec(), q.EndVec())
			d := time.Since(t0)
			total += d
			if i == 0 || d < best {
				best = d
			}
			if d > worst {
				worst = d
			}
		}
		mean := total / time.Duration(rep)

		found := len(path) > 0
		cost := nav.PathLength(path)
		fmt.Printf("%s: finder=%s found=%v waypoints=%d cost=%.3f expanded=%d mean=%s min=%s max=%s\n",
			q.ID, finderName(q.Finder), found, len(path), cost, len(trace.Expanded), mean, best, worst)

		idx.Record(runindex.Run{
			Scenario:   sc.Name,
			Query:      q.ID,
			Finder:     finderName(q.Finder),
			Found:      found,
			Waypoints:  len(path),
			Cost:       cost,
			Expanded:   len(trace.Expanded),
			DurationUS: mean.Microseconds(),
		})
	}

	if idx != nil {
		if err := idx.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "close run index:", err)
			exitCode = 1
		}
	}
	if exitCode != 0 {
		os.Exit(exitCode)
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

func finderName(kind string) string {
	if kind == "" {
		return "jps"
	}
	return kind
}
