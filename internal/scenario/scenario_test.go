package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voxelnav/nav"
	"voxelnav/voxel"
)

const sampleJSON = `{
  "name": "walls",
  "world": {
    "width": 32, "height": 32, "depth": 2,
    "boxes": [
      {"min": [10, 0, 0], "max": [10, 27, 0]},
      {"min": [20, 4, 0], "max": [20, 31, 0], "block": 2}
    ]
  },
  "queries": [
    {"id": "ground", "start": [0, 0, 0], "end": [31, 0, 0], "finder": "jps", "heuristic": "euclidean"},
    {"id": "strict", "start": [0, 0, 0], "end": [31, 31, 0], "finder": "astar", "allow_diagonal": false}
  ]
}`

func TestLoadValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walls.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sc.Name != "walls" || len(sc.Queries) != 2 || len(sc.World.Boxes) != 2 {
		t.Fatalf("decoded %+v", sc)
	}
	q, ok := sc.QueryByID("strict")
	if !ok || q.Finder != "astar" || q.AllowDiagonal == nil || *q.AllowDiagonal {
		t.Fatalf("strict query: %+v ok=%v", q, ok)
	}
	if _, ok := sc.QueryByID("absent"); ok {
		t.Fatalf("phantom query found")
	}
}

func TestSchemaRejects(t *testing.T) {
	cases := map[string]string{
		"no queries":    `{"name": "x", "world": {"width": 4, "height": 4, "depth": 1}, "queries": []}`,
		"bad finder":    `{"name": "x", "world": {"width": 4, "height": 4, "depth": 1}, "queries": [{"id": "q", "start": [0,0,0], "end": [1,0,0], "finder": "dijkstra"}]}`,
		"short vector":  `{"name": "x", "world": {"width": 4, "height": 4, "depth": 1}, "queries": [{"id": "q", "start": [0,0], "end": [1,0,0]}]}`,
		"zero width":    `{"name": "x", "world": {"width": 0, "height": 4, "depth": 1}, "queries": [{"id": "q", "start": [0,0,0], "end": [1,0,0]}]}`,
		"stray key":     `{"name": "x", "world": {"width": 4, "height": 4, "depth": 1}, "queries": [{"id": "q", "start": [0,0,0], "end": [1,0,0]}], "extra": 1}`,
		"float coords":  `{"name": "x", "world": {"width": 4, "height": 4, "depth": 1}, "queries": [{"id": "q", "start": [0.5,0,0], "end": [1,0,0]}]}`,
		"not even json": `{{`,
	}
	for name, raw := range cases {
		if _, err := Decode([]byte(raw)); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestSemanticRejects(t *testing.T) {
	inverted := `{"name": "x", "world": {"width": 8, "height": 8, "depth": 1,
		"boxes": [{"min": [5,0,0], "max": [2,0,0]}]},
		"queries": [{"id": "q", "start": [0,0,0], "end": [1,0,0]}]}`
	if _, err := Decode([]byte(inverted)); err == nil || !strings.Contains(err.Error(), "box") {
		t.Fatalf("inverted box: %v", err)
	}

	dup := `{"name": "x", "world": {"width": 8, "height": 8, "depth": 1},
		"queries": [
			{"id": "q", "start": [0,0,0], "end": [1,0,0]},
			{"id": "q", "start": [0,0,0], "end": [2,0,0]}
		]}`
	if _, err := Decode([]byte(dup)); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("duplicate id: %v", err)
	}
}

func TestBuildWorldBoxes(t *testing.T) {
	sc, err := Decode([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	w, err := BuildWorld(sc)
	if err != nil {
		t.Fatalf("BuildWorld: %v", err)
	}
	if got := w.VoxelAt(10, 5, 0); got != voxel.Rock {
		t.Fatalf("default box block = %d, want rock", got)
	}
	if got := w.VoxelAt(20, 5, 0); got != 2 {
		t.Fatalf("explicit box block = %d, want 2", got)
	}
	if got := w.VoxelAt(5, 5, 0); got != voxel.Air {
		t.Fatalf("open cell = %d, want air", got)
	}
	if got := w.VoxelAt(10, 28, 0); got != voxel.Air {
		t.Fatalf("gap cell = %d, want air", got)
	}
}

func TestBuildWorldCarve(t *testing.T) {
	raw := `{"name": "carved", "world": {"width": 48, "height": 48, "depth": 3,
		"seed": 11, "generate": true,
		"boxes": [{"min": [8, 8, 0], "max": [23, 23, 2], "carve": true}]},
		"queries": [{"id": "q", "start": [9, 9, 0], "end": [22, 22, 0]}]}`
	sc, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	w, err := BuildWorld(sc)
	if err != nil {
		t.Fatalf("BuildWorld: %v", err)
	}
	for z := 0; z < 3; z++ {
		for y := 8; y <= 23; y++ {
			for x := 8; x <= 23; x++ {
				if got := w.VoxelAt(x, y, z); got != voxel.Air {
					t.Fatalf("carved cell (%d,%d,%d) holds %d", x, y, z, got)
				}
			}
		}
	}
}

func TestBuildWorldBoxOrder(t *testing.T) {
	raw := `{"name": "tunnel", "world": {"width": 16, "height": 16, "depth": 2,
		"boxes": [
			{"min": [4, 0, 0], "max": [4, 15, 1]},
			{"min": [4, 7, 0], "max": [4, 8, 0], "carve": true}
		]},
		"queries": [{"id": "q", "start": [0,0,0], "end": [15,0,0]}]}`
	sc, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	w, err := BuildWorld(sc)
	if err != nil {
		t.Fatalf("BuildWorld: %v", err)
	}
	if got := w.VoxelAt(4, 7, 0); got != voxel.Air {
		t.Fatalf("tunnel cell holds %d", got)
	}
	if got := w.VoxelAt(4, 7, 1); got != voxel.Rock {
		t.Fatalf("tunnel roof holds %d", got)
	}
	if got := w.VoxelAt(4, 6, 0); got != voxel.Rock {
		t.Fatalf("wall cell holds %d", got)
	}
}

func TestBuildWorldDeterminism(t *testing.T) {
	sc, err := Decode([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	a, err := BuildWorld(sc)
	if err != nil {
		t.Fatalf("BuildWorld: %v", err)
	}
	b, err := BuildWorld(sc)
	if err != nil {
		t.Fatalf("BuildWorld: %v", err)
	}
	if a.Digest() != b.Digest() {
		t.Fatalf("same scenario, different worlds")
	}
}

func TestFinderConstruction(t *testing.T) {
	for _, kind := range []string{"", "jps", "astar", "biastar"} {
		if _, err := NewFinder(kind); err != nil {
			t.Fatalf("NewFinder(%q): %v", kind, err)
		}
	}
	if _, err := NewFinder("dijkstra"); err == nil {
		t.Fatalf("unknown finder accepted")
	}
	if _, err := HeuristicByName("octile"); err == nil {
		t.Fatalf("unknown heuristic accepted")
	}
	if _, err := (Query{Heuristic: "octile"}).Options(); err == nil {
		t.Fatalf("options with unknown heuristic accepted")
	}
}

func TestEndToEndQuery(t *testing.T) {
	sc, err := Decode([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	w, err := BuildWorld(sc)
	if err != nil {
		t.Fatalf("BuildWorld: %v", err)
	}
	g, err := nav.NewGrid(w.Width(), w.Height(), w.Depth(), w)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	for _, q := range sc.Queries {
		opts, err := q.Options()
		if err != nil {
			t.Fatalf("%s options: %v", q.ID, err)
		}
		f, err := NewFinder(q.Finder, opts...)
		if err != nil {
			t.Fatalf("%s finder: %v", q.ID, err)
		}
		path, err := f.FindPath(g, q.StartVec(), q.EndVec())
		if err != nil {
			t.Fatalf("%s solve: %v", q.ID, err)
		}
		if len(path) == 0 {
			t.Fatalf("%s found no route", q.ID)
		}
		if path[0] != q.StartVec() || path[len(path)-1] != q.EndVec() {
			t.Fatalf("%s endpoints %v..%v", q.ID, path[0], path[len(path)-1])
		}
	}
}
