// Package navhttp serves solver queries over HTTP, plus a websocket
// replay of the search for visualization.
package navhttp

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"voxelnav/internal/runindex"
	"voxelnav/internal/scenario"
	"voxelnav/nav"
	"voxelnav/voxel"
)

type Server struct {
	scenario *scenario.Scenario
	world    *voxel.World
	grid     *nav.Grid
	runs     *runindex.Index // optional
	log      *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(sc *scenario.Scenario, w *voxel.World, g *nav.Grid, runs *runindex.Index, logger *log.Logger) *Server {
	return &Server{
		scenario: sc,
		world:    w,
		grid:     g,
		runs:     runs,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/path", s.handlePath).Methods("POST")
	api.HandleFunc("/world", s.handleWorld).Methods("GET")
	api.HandleFunc("/chunk", s.handleChunk).Methods("GET")
	api.HandleFunc("/queries", s.handleQueries).Methods("GET")
	api.HandleFunc("/runs", s.handleRuns).Methods("GET")
	api.HandleFunc("/watch", s.handleWatch)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

func (s *Server) handlePath(rw http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, CodeBadRequest, "invalid json")
		return
	}

	q, code, err := s.resolveQuery(req)
	if err != nil {
		status := http.StatusBadRequest
		if code == CodeUnknownQuery {
			status = http.StatusNotFound
		}
		writeError(rw, status, code, err.Error())
		return
	}
	f, err := buildFinder(q)
	if err != nil {
		writeError(rw, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	var (
		path  []nav.Vec3i
		trace *nav.Trace
	)
	began := time.Now()
	if req.Trace {
		path, trace, err = f.FindPathWithTrace(s.grid, q.StartVec(), q.EndVec())
	} else {
		path, err = f.FindPath(s.grid, q.StartVec(), q.EndVec())
	}
	elapsed := time.Since(began)
	if err != nil {
		writeSolveError(rw, err)
		return
	}

	resp := PathResponse{
		Found:      len(path) > 0,
		Path:       vecsToArrays(path),
		Cost:       nav.PathLength(path),
		Waypoints:  len(path),
		DurationUS: elapsed.Microseconds(),
	}
	if trace != nil {
		resp.Expanded = len(trace.Expanded)
	}
	if req.Smooth && len(path) > 1 {
		resp.Smoothed = vecsToArrays(nav.SmoothenPath(s.grid, path))
	}
	if req.Compress && len(path) > 1 {
		resp.Compressed = vecsToArrays(nav.CompressPath(path))
	}

	s.runs.Record(runindex.Run{
		Scenario:   s.scenario.Name,
		Query:      q.ID,
		Finder:     finderName(q.Finder),
		Found:      resp.Found,
		Waypoints:  resp.Waypoints,
		Cost:       resp.Cost,
		Expanded:   resp.Expanded,
		DurationUS: resp.DurationUS,
	})

	writeJSONResponse(rw, http.StatusOK, resp)
}

func (s *Server) handleWorld(rw http.ResponseWriter, _ *http.Request) {
	sx, sy := s.world.Spawn()
	d := s.world.Digest()
	writeJSONResponse(rw, http.StatusOK, WorldResponse{
		Scenario: s.scenario.Name,
		Width:    s.world.Width(),
		Height:   s.world.Height(),
		Depth:    s.world.Depth(),
		Seed:     s.world.Seed(),
		Spawn:    [2]int{sx, sy},
		Digest:   hex.EncodeToString(d[:]),
		Chunks:   len(s.world.LoadedChunkKeys()),
	})
}

func (s *Server) handleChunk(rw http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cx, errX := strconv.Atoi(q.Get("cx"))
	cy, errY := strconv.Atoi(q.Get("cy"))
	if errX != nil || errY != nil {
		writeError(rw, http.StatusBadRequest, CodeBadRequest, "bad chunk coords")
		return
	}
	c, err := s.world.ChunkAt(cx, cy)
	if err != nil {
		writeError(rw, http.StatusNotFound, CodeOutOfBounds, err.Error())
		return
	}
	d := c.Digest()
	writeJSONResponse(rw, http.StatusOK, ChunkResponse{
		CX:     cx,
		CY:     cy,
		Depth:  c.Depth,
		Blocks: voxel.EncodeBlocks(c.Blocks),
		Digest: hex.EncodeToString(d[:]),
	})
}

func (s *Server) handleQueries(rw http.ResponseWriter, _ *http.Request) {
	out := make([]QueryInfo, 0, len(s.scenario.Queries))
	for _, q := range s.scenario.Queries {
		out = append(out, QueryInfo{ID: q.ID, Start: q.Start, End: q.End, Finder: finderName(q.Finder)})
	}
	writeJSONResponse(rw, http.StatusOK, out)
}

func (s *Server) handleRuns(rw http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(rw, http.StatusNotFound, CodeNoIndex, "run index disabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(rw, http.StatusBadRequest, CodeBadRequest, "bad limit")
			return
		}
		limit = n
	}
	rows, err := s.runs.RecentRuns(limit)
	if err != nil {
		writeError(rw, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	resp := RunsResponse{Runs: make([]RunInfo, 0, len(rows))}
	for _, row := range rows {
		resp.Runs = append(resp.Runs, RunInfo{
			RecordedAt: row.RecordedAt,
			Scenario:   row.Scenario,
			Query:      row.Query,
			Finder:     row.Finder,
			Found:      row.Found,
			Waypoints:  row.Waypoints,
			Cost:       row.Cost,
			Expanded:   row.Expanded,
			DurationUS: row.DurationUS,
		})
	}
	writeJSONResponse(rw, http.StatusOK, resp)
}

func (s *Server) handleWatch(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Handshake: must send WATCH first.
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return
	}
	var watch WatchMsg
	if err := json.Unmarshal(msg, &watch); err != nil {
		closePolicy(conn, "bad watch")
		return
	}
	if watch.Type != TypeWatch || watch.ProtocolVersion != Version {
		closePolicy(conn, "expected WATCH")
		return
	}
	normalizeWatch(&watch)

	q, _, err := s.resolveQuery(watch.PathRequest)
	if err != nil {
		closePolicy(conn, err.Error())
		return
	}
	f, err := buildFinder(q)
	if err != nil {
		closePolicy(conn, err.Error())
		return
	}
	path, trace, err := f.FindPathWithTrace(s.grid, q.StartVec(), q.EndVec())
	if err != nil {
		s.log.Printf("watch: %v", err)
		closePolicy(conn, err.Error())
		return
	}

	header := WatchHeader{
		Type:            TypeHeader,
		ProtocolVersion: Version,
		Query:           q.ID,
		Start:           q.Start,
		End:             q.End,
		Finder:          finderName(q.Finder),
		Iterations:      trace.Iterations,
		Frames:          len(trace.Expanded),
	}
	if err := writeJSON(conn, header); err != nil {
		return
	}
	if len(trace.Tested) > 0 {
		if err := writeJSON(conn, WatchTested{Type: TypeTested, Cells: vecsToArrays(trace.Tested)}); err != nil {
			return
		}
	}
	for i, p := range trace.Expanded {
		if watch.PaceMS > 0 {
			time.Sleep(time.Duration(watch.PaceMS) * time.Millisecond)
		}
		if err := writeJSON(conn, WatchExpand{Type: TypeExpand, Seq: i, Pos: [3]int{p.X, p.Y, p.Z}}); err != nil {
			return
		}
	}
	_ = writeJSON(conn, WatchResult{
		Type:  TypeResult,
		Found: len(path) > 0,
		Path:  vecsToArrays(path),
		Cost:  nav.PathLength(path),
	})
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
}

func (s *Server) resolveQuery(req PathRequest) (scenario.Query, string, error) {
	if req.QueryID != "" {
		q, ok := s.scenario.QueryByID(req.QueryID)
		if !ok {
			return scenario.Query{}, CodeUnknownQuery, fmt.Errorf("unknown query %q", req.QueryID)
		}
		return q, "", nil
	}
	if req.Start == nil || req.End == nil {
		return scenario.Query{}, CodeBadRequest, fmt.Errorf("need query_id or start and end")
	}
	return scenario.Query{
		ID:               "adhoc",
		Start:            *req.Start,
		End:              *req.End,
		Finder:           req.Finder,
		Heuristic:        req.Heuristic,
		AllowDiagonal:    req.AllowDiagonal,
		DontCrossCorners: req.DontCrossCorners,
		IterationLimit:   req.IterationLimit,
	}, "", nil
}

func buildFinder(q scenario.Query) (scenario.Finder, error) {
	opts, err := q.Options()
	if err != nil {
		return nil, err
	}
	return scenario.NewFinder(q.Finder, opts...)
}

func finderName(kind string) string {
	if kind == "" {
		return "jps"
	}
	return kind
}

func normalizeWatch(w *WatchMsg) {
	if w.PaceMS < 0 {
		w.PaceMS = 0
	}
	if w.PaceMS > 1000 {
		w.PaceMS = 1000
	}
}

func writeSolveError(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, nav.ErrOutOfBounds):
		writeError(rw, http.StatusUnprocessableEntity, CodeOutOfBounds, err.Error())
	case errors.Is(err, nav.ErrUnwalkable):
		writeError(rw, http.StatusUnprocessableEntity, CodeUnwalkable, err.Error())
	case errors.Is(err, nav.ErrIterationLimit):
		writeError(rw, http.StatusUnprocessableEntity, CodeIterationLimit, err.Error())
	default:
		writeError(rw, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}

func writeJSONResponse(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, code, msg string) {
	writeJSONResponse(rw, status, ErrorResponse{Error: ErrorBody{Code: code, Message: msg}})
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func closePolicy(conn *websocket.Conn, reason string) {
	if len(reason) > 120 {
		reason = reason[:120]
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func vecsToArrays(vs []nav.Vec3i) [][3]int {
	if len(vs) == 0 {
		return nil
	}
	out := make([][3]int, len(vs))
	for i, v := range vs {
		out[i] = [3]int{v.X, v.Y, v.Z}
	}
	return out
}
