package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantaqb/internal/usecase"
)

func (h *Handler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "GetCurrentWeek")
	defer span.End()

	week, open, err := h.formationService.CurrentWeek(ctx)
	if err != nil {
		h.handleFailure(ctx, w, "current week", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, currentWeekDTO{Week: week, Open: open})
}

func (h *Handler) GetMyFormation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "GetMyFormation")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rankingService.FormationView(ctx, principal, principal.UserID, week)
	if err != nil {
		h.handleFailure(ctx, w, "get formation", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toFormationViewDTO(view))
}

func (h *Handler) SubmitMyFormation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "SubmitMyFormation")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitFormationRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.formationService.Submit(ctx, principal, usecase.SubmitFormationInput{
		Week:           week,
		QuarterbackIDs: req.QuarterbackIDs,
	})
	if err != nil {
		h.handleFailure(ctx, w, "submit formation", err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, toFormationDTO(item))
}

func (h *Handler) GetUserFormation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "GetUserFormation")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	userID, err := pathValue(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rankingService.FormationView(ctx, principal, userID, week)
	if err != nil {
		h.handleFailure(ctx, w, "get user formation", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toFormationViewDTO(view))
}

func (h *Handler) ListWeekFormations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "ListWeekFormations")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.formationService.ListByWeek(ctx, principal, week)
	if err != nil {
		h.handleFailure(ctx, w, "list week formations", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toFormationListingDTOs(items))
}

func (h *Handler) OverrideFormation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "OverrideFormation")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	userID, err := pathValue(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitFormationRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.formationService.Override(ctx, principal, usecase.OverrideFormationInput{
		UserID:         userID,
		Week:           week,
		QuarterbackIDs: req.QuarterbackIDs,
	})
	if err != nil {
		h.handleFailure(ctx, w, "override formation", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toFormationDTO(item))
}
