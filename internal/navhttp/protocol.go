package navhttp

import "encoding/json"

// Version is the wire version spoken on /v1/watch.
const Version = "1.0"

// Message types on /v1/watch.
const (
	TypeWatch  = "WATCH"
	TypeHeader = "HEADER"
	TypeTested = "TESTED"
	TypeExpand = "EXPAND"
	TypeResult = "RESULT"
)

// BaseMessage lets clients route watch frames by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// Error codes carried in JSON error bodies.
const (
	CodeBadRequest     = "E_BAD_REQUEST"
	CodeUnknownQuery   = "E_UNKNOWN_QUERY"
	CodeOutOfBounds    = "E_OUT_OF_BOUNDS"
	CodeUnwalkable     = "E_UNWALKABLE"
	CodeIterationLimit = "E_ITERATION_LIMIT"
	CodeNoIndex        = "E_NO_INDEX"
	CodeInternal       = "E_INTERNAL"
)

// PathRequest names a scenario query by id, or carries an ad-hoc query
// inline. query_id wins when both are present.
type PathRequest struct {
	QueryID string `json:"query_id,omitempty"`

	Start *[3]int `json:"start,omitempty"`
	End   *[3]int `json:"end,omitempty"`

	Finder           string `json:"finder,omitempty"`
	Heuristic        string `json:"heuristic,omitempty"`
	AllowDiagonal    *bool  `json:"allow_diagonal,omitempty"`
	DontCrossCorners bool   `json:"dont_cross_corners,omitempty"`
	IterationLimit   int    `json:"iteration_limit,omitempty"`

	Smooth   bool `json:"smooth,omitempty"`
	Compress bool `json:"compress,omitempty"`
	Trace    bool `json:"trace,omitempty"`
}

type PathResponse struct {
	Found      bool     `json:"found"`
	Path       [][3]int `json:"path,omitempty"`
	Smoothed   [][3]int `json:"smoothed,omitempty"`
	Compressed [][3]int `json:"compressed,omitempty"`
	Cost       float64  `json:"cost"`
	Waypoints  int      `json:"waypoints"`
	Expanded   int      `json:"expanded,omitempty"`
	DurationUS int64    `json:"duration_us"`
}

type WorldResponse struct {
	Scenario string `json:"scenario"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Depth    int    `json:"depth"`
	Seed     int64  `json:"seed"`
	Spawn    [2]int `json:"spawn"`
	Digest   string `json:"digest"`
	Chunks   int    `json:"chunks"`
}

type ChunkResponse struct {
	CX     int    `json:"cx"`
	CY     int    `json:"cy"`
	Depth  int    `json:"depth"`
	Blocks string `json:"blocks"` // rle, see voxel.EncodeBlocks
	Digest string `json:"digest"`
}

type QueryInfo struct {
	ID     string `json:"id"`
	Start  [3]int `json:"start"`
	End    [3]int `json:"end"`
	Finder string `json:"finder"`
}

type RunInfo struct {
	RecordedAt string  `json:"recorded_at"`
	Scenario   string  `json:"scenario"`
	Query      string  `json:"query"`
	Finder     string  `json:"finder"`
	Found      bool    `json:"found"`
	Waypoints  int     `json:"waypoints"`
	Cost       float64 `json:"cost"`
	Expanded   int     `json:"expanded"`
	DurationUS int64   `json:"duration_us"`
}

type RunsResponse struct {
	Runs []RunInfo `json:"runs"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// WATCH (client -> server)
type WatchMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PathRequest
	PaceMS int `json:"pace_ms,omitempty"`
}

// HEADER (server -> client)
type WatchHeader struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Query           string `json:"query,omitempty"`
	Start           [3]int `json:"start"`
	End             [3]int `json:"end"`
	Finder          string `json:"finder"`
	Iterations      int    `json:"iterations"`
	Frames          int    `json:"frames"`
}

// TESTED (server -> client): cells probed while jumping, sent once.
type WatchTested struct {
	Type  string   `json:"type"`
	Cells [][3]int `json:"cells"`
}

// EXPAND (server -> client): one frame per node popped from the open list.
type WatchExpand struct {
	Type string `json:"type"`
	Seq  int    `json:"seq"`
	Pos  [3]int `json:"pos"`
}

// RESULT (server -> client): final frame before the close handshake.
type WatchResult struct {
	Type  string   `json:"type"`
	Found bool     `json:"found"`
	Path  [][3]int `json:"path,omitempty"`
	Cost  float64  `json:"cost"`
}
