// Package scenario loads JSON scenario files: a world description
// (extents, optional noise terrain, solid or carved boxes) plus the
// routing queries to run against it. Files are schema-validated before
// decoding.
package scenario

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed scenario.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("scenario.schema.json", schemaJSON)

type Scenario struct {
	Name    string    `json:"name"`
	World   WorldSpec `json:"world"`
	Queries []Query   `json:"queries"`
}

type WorldSpec struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Depth  int   `json:"depth"`
	Seed   int64 `json:"seed"`

	// Generate rolls noise terrain under the boxes; off by default so
	// box-only scenarios start from an empty lattice.
	Generate bool   `json:"generate"`
	Spawn    [2]int `json:"spawn"`
	Boxes    []Box  `json:"boxes"`
}

// Box is an inclusive axis-aligned voxel range. Solid unless Carve is
// set, which punches air through generated terrain.
type Box struct {
	Min   [3]int `json:"min"`
	Max   [3]int `json:"max"`
	Block uint16 `json:"block"`
	Carve bool   `json:"carve"`
}

type Query struct {
	ID               string `json:"id"`
	Start            [3]int `json:"start"`
	End              [3]int `json:"end"`
	Finder           string `json:"finder"`
	Heuristic        string `json:"heuristic"`
	AllowDiagonal    *bool  `json:"allow_diagonal"`
	DontCrossCorners bool   `json:"dont_cross_corners"`
	IterationLimit   int    `json:"iteration_limit"`
}

func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", filepath.Base(path), err)
	}
	return sc, nil
}

// Decode validates raw against the scenario schema, then unmarshals and
// semantically checks it.
func Decode(raw []byte) (*Scenario, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var sc Scenario
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}

	for i, b := range sc.World.Boxes {
		for ax := 0; ax < 3; ax++ {
			if b.Min[ax] > b.Max[ax] {
				return nil, fmt.Errorf("box %d: min %v exceeds max %v", i, b.Min, b.Max)
			}
		}
	}
	seen := map[string]bool{}
	for _, q := range sc.Queries {
		if seen[q.ID] {
			return nil, fmt.Errorf("duplicate query id %q", q.ID)
		}
		seen[q.ID] = true
	}
	return &sc, nil
}

// QueryByID returns the named query.
func (sc *Scenario) QueryByID(id string) (Query, bool) {
	for _, q := range sc.Queries {
		if q.ID == id {
			return q, true
		}
	}
	return Query{}, false
}
