package api

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abgandar/trackstats/internal/track"
)

// Live ingestion protocol. The client opens the WebSocket and streams samples
// as they are recorded; the server runs them through the same aggregation
// pass used for uploaded files and echoes the enriched point plus a running
// snapshot of the aggregate after every sample. A "finish" message seals the
// session and returns the final statistics.
const (
	liveMsgPoint  = "point"
	liveMsgFinish = "finish"

	liveWriteWait = 10 * time.Second
	// If nothing arrives for this long the session is considered abandoned.
	liveReadWait = 5 * time.Minute
)

// liveRequest is one inbound client message.
type liveRequest struct {
	Type  string            `json:"type"`
	Point *track.TrackPoint `json:"point,omitempty"`
}

// liveResponse is one outbound server message.
type liveResponse struct {
	Type  string                `json:"type"`
	Point *track.Point          `json:"point,omitempty"`
	Stats *track.AggregateStats `json:"stats,omitempty"`
	Error string                `json:"error,omitempty"`
}

// handleLiveSession upgrades the connection and runs one aggregator for the
// lifetime of the socket. Sessions are ephemeral; nothing is persisted.
func (s *Server) handleLiveSession(w http.ResponseWriter, r *http.Request) {
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Browsers enforce nothing for WebSocket requests, so the origin
		// check is our CORS equivalent: only the configured frontend (and
		// non-browser clients, which send no Origin header) may connect.
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			parsed, err := url.Parse(origin)
			if err != nil {
				return false
			}
			return parsed.Host == s.config.ParsedFrontendURL.Host
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		log.Printf("WARN: websocket upgrade failed for user %d: %v", userID, err)
		return
	}
	defer conn.Close()

	log.Printf("INFO: live session started for user %d", userID)

	agg := track.NewAggregator(s.config.TrackConfig())

	for {
		conn.SetReadDeadline(time.Now().Add(liveReadWait))

		var req liveRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WARN: live session read error for user %d: %v", userID, err)
			}
			return
		}

		switch req.Type {
		case liveMsgPoint:
			if req.Point == nil {
				if err := writeLive(conn, liveResponse{Type: liveMsgPoint, Error: "point message without a point"}); err != nil {
					return
				}
				continue
			}
			// A single-sample segment; carried state links it to the ones
			// before it, exactly as for consecutive file segments.
			enriched := agg.ProcessSegment([]track.TrackPoint{*req.Point})
			stats := agg.Stats()
			resp := liveResponse{Type: liveMsgPoint, Stats: &stats}
			if len(enriched) > 0 {
				resp.Point = &enriched[0]
			}
			if err := writeLive(conn, resp); err != nil {
				return
			}

		case liveMsgFinish:
			doc := agg.Result()
			if err := writeLive(conn, liveResponse{Type: liveMsgFinish, Stats: &doc.Stats}); err != nil {
				return
			}
			log.Printf("INFO: live session finished for user %d (%d points)", userID, doc.Stats.PointCount)
			deadline := time.Now().Add(liveWriteWait)
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return

		default:
			if err := writeLive(conn, liveResponse{Type: req.Type, Error: "unknown message type"}); err != nil {
				return
			}
		}
	}
}

// writeLive sends one response with a bounded write deadline.
func writeLive(conn *websocket.Conn, resp liveResponse) error {
	conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	if err := conn.WriteJSON(resp); err != nil {
		return errors.New("live session write failed")
	}
	return nil
}
