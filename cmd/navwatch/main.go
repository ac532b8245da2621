package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"voxelnav/internal/navhttp"
)

func main() {
	var (
		url    = flag.String("url", "ws://localhost:8090/v1/watch", "watch ws url")
		query  = flag.String("query", "", "scenario query id")
		start  = flag.String("start", "", "ad-hoc start, x,y,z")
		end    = flag.String("end", "", "ad-hoc end, x,y,z")
		finder = flag.String("finder", "", "finder for ad-hoc queries (jps, astar, biastar)")
		pace   = flag.Int("pace", 0, "ms between expand frames, server side")
		quiet  = flag.Bool("quiet", false, "suppress per-frame EXPAND lines")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[navwatch] ", log.LstdFlags|log.Lmicroseconds)

	msg := navhttp.WatchMsg{
		Type:            navhttp.TypeWatch,
		ProtocolVersion: navhttp.Version,
		PaceMS:          *pace,
	}
	msg.QueryID = *query
	msg.Finder = *finder
	if *query == "" {
		if *start == "" || *end == "" {
			fmt.Fprintln(os.Stderr, "need -query, or both -start and -end")
			os.Exit(2)
		}
		s, err := parseVec(*start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad -start: %v\n", err)
			os.Exit(2)
		}
		e, err := parseVec(*end)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad -end: %v\n", err)
			os.Exit(2)
		}
		msg.Start, msg.End = &s, &e
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(msg); err != nil {
		logger.Fatalf("send WATCH: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return
			}
			logger.Fatalf("read: %v", err)
		}
		base, err := navhttp.DecodeBase(raw)
		if err != nil {
			continue
		}
		switch base.Type {
		case navhttp.TypeHeader:
			var h navhttp.WatchHeader
			if err := json.Unmarshal(raw, &h); err != nil {
				continue
			}
			logger.Printf("HEADER query=%s finder=%s start=%v end=%v iterations=%d frames=%d",
				h.Query, h.Finder, h.Start, h.End, h.Iterations, h.Frames)

		case navhttp.TypeTested:
			var tm navhttp.WatchTested
			if err := json.Unmarshal(raw, &tm); err != nil {
				continue
			}
			logger.Printf("TESTED cells=%d", len(tm.Cells))

		case navhttp.TypeExpand:
			if *quiet {
				continue
			}
			var ex navhttp.WatchExpand
			if err := json.Unmarshal(raw, &ex); err != nil {
				continue
			}
			logger.Printf("EXPAND seq=%d pos=%v", ex.Seq, ex.Pos)

		case navhttp.TypeResult:
			var res navhttp.WatchResult
			if err := json.Unmarshal(raw, &res); err != nil {
				continue
			}
			logger.Printf("RESULT found=%v waypoints=%d cost=%.3f", res.Found, len(res.Path), res.Cost)
		}
	}
}

func parseVec(s string) ([3]int, error) {
	var v [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("want x,y,z, got %q", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return v, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = n
	}
	return v, nil
}
