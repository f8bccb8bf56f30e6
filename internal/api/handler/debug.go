package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rivalscope/rivalscope/internal/api/response"
)

// debug echoes the posted payload with a timestamp. Diagnostic stub only, it
// proves nothing beyond the request having reached an authenticated handler.
func (h *CompetitorAnalysis) debug(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		payload = json.RawMessage(`null`)
	}

	response.JSON(w, map[string]any{
		"status":    "operational",
		"echo":      payload,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
