package httpapi

import (
	"errors"
	"net/http"

	"github.com/riskibarqy/fantaqb/internal/usecase"
)

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "GetCalendar")
	defer span.End()

	weeks, err := h.weekService.Calendar(ctx)
	if err != nil {
		h.handleFailure(ctx, w, "calendar", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toCalendarDTOs(weeks))
}

// ValidateWeek reports whether the week can be calculated. A non-empty
// problem list is still a successful response.
func (h *Handler) ValidateWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "ValidateWeek")
	defer span.End()

	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	problems := h.weekService.ValidateWeek(ctx, week)
	if problems == nil {
		problems = []string{}
	}
	writeSuccess(ctx, w, http.StatusOK, weekValidationDTO{
		Week:       week,
		Calculable: len(problems) == 0,
		Problems:   problems,
	})
}

func (h *Handler) CalculateWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "CalculateWeek")
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

	report, err := h.weekService.CalculateWeek(ctx, principal, week)
	if errors.Is(err, usecase.ErrWeekNotCalculable) {
		writeError(ctx, w, err, report.Problems...)
		return
	}
	if err != nil {
		h.handleFailure(ctx, w, "calculate week", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, calculationReportDTO{
		Week:              report.Week,
		Flagged:           report.Flagged,
		AlreadyCalculated: report.AlreadyCalculated,
	})
}

func (h *Handler) RecordGameResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "RecordGameResult")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	gameID, err := pathValue(r, "gameID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req recordResultRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.weekService.RecordResult(ctx, principal, gameID, req.Result)
	if err != nil {
		h.handleFailure(ctx, w, "record game result", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toGameDTO(updated))
}

func (h *Handler) RecordQuarterbackScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "RecordQuarterbackScore")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	gameID, err := pathValue(r, "gameID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req recordScoreRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	stat, err := h.weekService.RecordScore(ctx, principal, usecase.RecordScoreInput{
		QuarterbackID: req.QuarterbackID,
		GameID:        gameID,
		Score:         *req.Score,
	})
	if err != nil {
		h.handleFailure(ctx, w, "record quarterback score", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toWeekStatDTO(stat))
}
