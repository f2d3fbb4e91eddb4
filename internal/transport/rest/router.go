package rest

import "net/http"

// NewRouter mounts all REST endpoints on a fresh mux.
func NewRouter(lookup *LookupHandler, words *WordsHandler, review *ReviewHandler, health *HealthHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	mux.HandleFunc("POST /api/lookup", lookup.Resolve)

	mux.HandleFunc("GET /api/words", words.List)
	mux.HandleFunc("POST /api/words", words.Save)
	mux.HandleFunc("GET /api/words/{key}", words.Get)
	mux.HandleFunc("PATCH /api/words/{key}", words.Update)
	mux.HandleFunc("DELETE /api/words/{key}", words.Delete)
	mux.HandleFunc("GET /api/words/{key}/extras/{kind}", words.Extras)
	mux.HandleFunc("GET /api/words/{key}/pronunciation", words.Pronunciation)

	mux.HandleFunc("POST /api/words/{key}/review", review.Review)
	mux.HandleFunc("GET /api/review/due", review.Due)
	mux.HandleFunc("GET /api/review/next", review.Next)
	mux.HandleFunc("GET /api/review/stats", review.Stats)

	mux.HandleFunc("GET /api/export", words.Export)
	mux.HandleFunc("POST /api/import", words.Import)

	return mux
}
