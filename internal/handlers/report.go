package handlers

import (
	"net/http"

	"github.com/rs/zerolog/hlog"
)

// Report returns the caller's expense totals per category, optionally
// limited to the startdate and enddate query range.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r, false)
	if !ok {
		return
	}

	totals, err := h.db.CategoryTotals(r.Context(), f)
	if err != nil {
		h.serverError(w, r, "category totals", err)
		return
	}
	hlog.FromRequest(r).Debug().Int64("user_id", f.UserID).Int("categories", len(totals)).Msg("report")

	if len(totals) == 0 {
		writeJSON(w, http.StatusOK, dataResponse{Message: msgFetchedNothing, Data: totals})
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Message: msgFetched, Data: totals})
}
