package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, opts RouterOptions) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}
	if !opts.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/weeks/current", handler.GetCurrentWeek)
	mux.HandleFunc("GET /v1/calendar", handler.GetCalendar)
	mux.HandleFunc("GET /v1/rankings/league", handler.GetLeagueTable)
	mux.HandleFunc("GET /v1/rankings/quarterbacks", handler.GetQuarterbackTable)
	mux.HandleFunc("GET /v1/stream/rankings/league", handler.StreamLeagueTable)
	mux.HandleFunc("GET /v1/stream/rankings/quarterbacks", handler.StreamQuarterbackTable)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/formations/me/{week}", RequireAuth(verifier, http.HandlerFunc(handler.GetMyFormation)))
	mux.Handle("PUT /v1/formations/me/{week}", RequireAuth(verifier, http.HandlerFunc(handler.SubmitMyFormation)))
	mux.Handle("GET /v1/users/{userID}/formations/{week}", RequireAuth(verifier, http.HandlerFunc(handler.GetUserFormation)))
	mux.Handle("GET /v1/weeks/{week}/formations", RequireAuth(verifier, http.HandlerFunc(handler.ListWeekFormations)))
	mux.Handle("GET /v1/stream/users/{userID}/formations/{week}", RequireAuth(verifier, http.HandlerFunc(handler.StreamUserFormation)))
}

// registerAdminRoutes only authenticates; mutating operations check the admin
// flag against the stored profile.
func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/admin/weeks/{week}/validation", RequireAuth(verifier, http.HandlerFunc(handler.ValidateWeek)))
	mux.Handle("POST /v1/admin/weeks/{week}/calculate", RequireAuth(verifier, http.HandlerFunc(handler.CalculateWeek)))
	mux.Handle("PUT /v1/admin/games/{gameID}/result", RequireAuth(verifier, http.HandlerFunc(handler.RecordGameResult)))
	mux.Handle("PUT /v1/admin/games/{gameID}/scores", RequireAuth(verifier, http.HandlerFunc(handler.RecordQuarterbackScore)))
	mux.Handle("PUT /v1/admin/users/{userID}/formations/{week}", RequireAuth(verifier, http.HandlerFunc(handler.OverrideFormation)))
}
