package httpapi

import "net/http"

func (h *Handler) GetLeagueTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "GetLeagueTable")
	defer span.End()

	rows, err := h.rankingService.LeagueTable(ctx)
	if err != nil {
		h.handleFailure(ctx, w, "league table", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toLeagueRowDTOs(rows))
}

func (h *Handler) GetQuarterbackTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "GetQuarterbackTable")
	defer span.End()

	rows, err := h.rankingService.QuarterbackTable(ctx)
	if err != nil {
		h.handleFailure(ctx, w, "quarterback table", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toQuarterbackRowDTOs(rows))
}
