package api

import (
	"fmt"
	"net/http"
)

// handleSSE streams track lifecycle notifications (processed, deleted) for
// the authenticated user as Server-Sent Events.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	// 1. Get the authenticated user's ID from the context (via the auth middleware).
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusUnauthorized)
		return
	}

	// 2. Set the required headers for an SSE connection.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Allow cross-origin access for the event stream
	w.Header().Set("Access-Control-Allow-Origin", s.config.ParsedFrontendURL.String())

	// Flusher is needed to send data to the client as it becomes available.
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.errorJSON(w, fmt.Errorf("streaming unsupported"), http.StatusInternalServerError)
		return
	}

	// 3. Register this connection with the broker; it replaces any previous
	// stream the same user had open.
	clientChan := s.broker.AddClient(userID)
	defer s.broker.RemoveClient(userID)

	// An initial comment line confirms the stream is open before any
	// notification arrives.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	// 4. Listen for broker messages until the client disconnects.
	for {
		select {
		case message, open := <-clientChan:
			if !open {
				// The channel was closed by the broker.
				return
			}
			// Format the message according to the SSE spec: "data: {...}\n\n"
			fmt.Fprintf(w, "data: %s\n\n", message)
			flusher.Flush()
		case <-r.Context().Done():
			// The client has disconnected. The defer handles cleanup.
			return
		}
	}
}
