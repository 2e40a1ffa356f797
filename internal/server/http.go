package server

import (
	"encoding/json"
	"net/http"
)

type healthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Dropped uint64 `json:"dropped"`
}

func (s *DiagnosticsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ws":
		s.handleWebSocket(w, r)
	case "/healthz":
		s.handleHealth(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *DiagnosticsServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if s.isClosed() {
		status = "closed"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:  status,
		Clients: s.ClientCount(),
		Dropped: s.Dropped(),
	})
}
