package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/leaguelink"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/user"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/logging"
	"github.com/gridironhq/fantasy-dashboard/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

type Handler struct {
	linkService      *usecase.LeagueLinkService
	dashboardService *usecase.DashboardService
	waiverService    *usecase.WaiverService
	tradeService     *usecase.TradeService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	linkService *usecase.LeagueLinkService,
	dashboardService *usecase.DashboardService,
	waiverService *usecase.WaiverService,
	tradeService *usecase.TradeService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		linkService:      linkService,
		dashboardService: dashboardService,
		waiverService:    waiverService,
		tradeService:     tradeService,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListLeagueLinks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueLinks")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	links, err := h.linkService.ListLinks(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list league links failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueLinkDTO, 0, len(links))
	for _, link := range links {
		items = append(items, leagueLinkToDTO(link))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateLeagueLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeagueLink")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	var req createLeagueLinkRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	link, err := h.linkService.CreateLink(ctx, principal.UserID, req.LeagueID, req.SeasonYear)
	if err != nil {
		h.logger.WarnContext(ctx, "create league link failed",
			"user_id", principal.UserID, "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leagueLinkToDTO(link))
}

func (h *Handler) DeleteLeagueLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteLeagueLink")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	linkID := strings.TrimSpace(r.PathValue("linkID"))
	if err := h.linkService.DeleteLink(ctx, principal.UserID, linkID); err != nil {
		h.logger.WarnContext(ctx, "delete league link failed", "link_id", linkID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) SelectLeagueTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectLeagueTeam")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	linkID := strings.TrimSpace(r.PathValue("linkID"))
	var req selectTeamRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	link, err := h.linkService.SelectTeam(ctx, principal.UserID, linkID, req.TeamID)
	if err != nil {
		h.logger.WarnContext(ctx, "select league team failed",
			"link_id", linkID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueLinkToDTO(link))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	linkID := strings.TrimSpace(r.PathValue("linkID"))
	week, err := weekQueryParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	teams, err := h.dashboardService.TeamsAtWeek(ctx, principal.UserID, linkID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "link_id", linkID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teams)
}

func (h *Handler) ListMatchups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchups")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	linkID := strings.TrimSpace(r.PathValue("linkID"))
	week, err := weekQueryParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchups, err := h.dashboardService.MatchupsAtWeek(ctx, principal.UserID, linkID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list matchups failed", "link_id", linkID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchups)
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	linkID := strings.TrimSpace(r.PathValue("linkID"))
	rows, err := h.dashboardService.Standings(ctx, principal.UserID, linkID)
	if err != nil {
		h.logger.WarnContext(ctx, "list standings failed", "link_id", linkID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) ListWaiverTargets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWaiverTargets")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	linkID := strings.TrimSpace(r.PathValue("linkID"))
	candidates, err := h.waiverService.Targets(ctx, principal.UserID, linkID)
	if err != nil {
		h.logger.WarnContext(ctx, "list waiver targets failed", "link_id", linkID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, candidates)
}

func (h *Handler) ListTradeSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTradeSuggestions")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	linkID := strings.TrimSpace(r.PathValue("linkID"))
	week, err := weekQueryParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	suggestions, err := h.tradeService.Suggestions(ctx, principal.UserID, linkID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list trade suggestions failed", "link_id", linkID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, suggestions)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func requirePrincipal(ctx context.Context, w http.ResponseWriter) (user.Principal, bool) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return user.Principal{}, false
	}
	return principal, true
}

// weekQueryParam reads the optional ?week= parameter. Zero means
// "current week"; out-of-range values are clamped downstream.
func weekQueryParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("week"))
	if raw == "" {
		return 0, nil
	}

	week, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: week must be an integer", usecase.ErrInvalidInput)
	}
	return week, nil
}

type createLeagueLinkRequest struct {
	LeagueID   int64 `json:"leagueId" validate:"required,gt=0"`
	SeasonYear int   `json:"seasonYear" validate:"omitempty,gte=2000,lte=2100"`
}

type selectTeamRequest struct {
	TeamID int64 `json:"teamId" validate:"required,gt=0"`
}

type leagueLinkDTO struct {
	ID         string `json:"id"`
	LeagueID   int64  `json:"leagueId"`
	SeasonYear int    `json:"seasonYear"`
	TeamID     int64  `json:"teamId,omitempty"`
	LeagueName string `json:"leagueName"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func leagueLinkToDTO(link leaguelink.LeagueLink) leagueLinkDTO {
	return leagueLinkDTO{
		ID:         link.ID,
		LeagueID:   link.ESPNLeagueID,
		SeasonYear: link.SeasonYear,
		TeamID:     link.TeamID,
		LeagueName: link.LeagueName,
		CreatedAt:  link.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  link.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
