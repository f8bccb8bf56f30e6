package handler

import (
	"net/http"

	mw "github.com/rivalscope/rivalscope/internal/api/middleware"
	"github.com/rivalscope/rivalscope/internal/api/response"
)

// permissions returns a static capability object. There is no policy engine
// behind this; clients use it to toggle UI affordances.
func (h *CompetitorAnalysis) permissions(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, map[string]any{
		"canAnalyze":     true,
		"canExport":      true,
		"canViewHistory": true,
		"maxCompetitors": 10,
		"scopes":         mw.GetScopes(r),
	})
}
