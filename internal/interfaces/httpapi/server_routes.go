package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/leagues", RequireAuth(verifier, http.HandlerFunc(handler.ListLeagueLinks)))
	mux.Handle("POST /v1/leagues", RequireAuth(verifier, http.HandlerFunc(handler.CreateLeagueLink)))
	mux.Handle("DELETE /v1/leagues/{linkID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteLeagueLink)))
	mux.Handle("PUT /v1/leagues/{linkID}/team", RequireAuth(verifier, http.HandlerFunc(handler.SelectLeagueTeam)))

	mux.Handle("GET /v1/leagues/{linkID}/teams", RequireAuth(verifier, http.HandlerFunc(handler.ListTeams)))
	mux.Handle("GET /v1/leagues/{linkID}/matchups", RequireAuth(verifier, http.HandlerFunc(handler.ListMatchups)))
	mux.Handle("GET /v1/leagues/{linkID}/standings", RequireAuth(verifier, http.HandlerFunc(handler.ListStandings)))
	mux.Handle("GET /v1/leagues/{linkID}/waivers", RequireAuth(verifier, http.HandlerFunc(handler.ListWaiverTargets)))
	mux.Handle("GET /v1/leagues/{linkID}/trades", RequireAuth(verifier, http.HandlerFunc(handler.ListTradeSuggestions)))
}
