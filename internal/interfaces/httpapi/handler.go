package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
	"github.com/riskibarqy/fantaqb/internal/usecase"
)

// maxRequestBody caps JSON request bodies; every payload here is tiny.
const maxRequestBody = 64 << 10

type Handler struct {
	formationService *usecase.FormationService
	weekService      *usecase.WeekService
	rankingService   *usecase.RankingService
	liveViews        *usecase.LiveViewService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	formationService *usecase.FormationService,
	weekService *usecase.WeekService,
	rankingService *usecase.RankingService,
	liveViews *usecase.LiveViewService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		formationService: formationService,
		weekService:      weekService,
		rankingService:   rankingService,
		liveViews:        liveViews,
		logger:           logger.With("component", "httpapi"),
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, payload any) error {
	dec := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

// handleFailure writes err and logs it when it maps to a server fault.
func (h *Handler) handleFailure(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if mapError(ctx, err).HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, op+" failed", "error", err)
	}
	writeError(ctx, w, err)
}

func pathWeek(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("week"))
	week, err := strconv.Atoi(raw)
	if err != nil || week <= 0 {
		return 0, fmt.Errorf("%w: week must be a positive integer, got %q", usecase.ErrInvalidInput, raw)
	}
	return week, nil
}

func pathValue(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(r.PathValue(name))
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
