package rest

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/dugout/internal/cache"
	"github.com/fortuna/dugout/internal/kbo"
	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	db       *store.Database
	cache    *cache.RedisCache
	stats    *repository.StatsRepository
	rankings *repository.RankingRepository
	games    *repository.GameRepository
}

// NewHandler creates a new handler. cache may be nil.
func NewHandler(db *store.Database, rc *cache.RedisCache) *Handler {
	return &Handler{
		db:       db,
		cache:    rc,
		stats:    repository.NewStatsRepository(db),
		rankings: repository.NewRankingRepository(db),
		games:    repository.NewGameRepository(db),
	}
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "dugout",
	})
}

// GetStandings returns the most recent day's league standings.
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		var cached []*store.TeamRanking
		if hit, err := h.cache.GetJSON(r.Context(), cache.KeyStandings, &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	standings, err := h.rankings.Latest(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch standings", err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(r.Context(), cache.KeyStandings, standings, cache.DefaultReadTTL); err != nil {
			log.Printf("⚠️ failed to cache standings: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, standings)
}

// GetRankingHistory returns every team's rank over the trailing days
// (default 30), for trend charts.
func (h *Handler) GetRankingHistory(w http.ResponseWriter, r *http.Request) {
	days := queryDays(r, 30)

	history, err := h.rankings.History(r.Context(), days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch ranking history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days":     days,
		"rankings": history,
	})
}

// GetTeams returns the ten clubs with their codes and display names.
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	type team struct {
		ID   kbo.TeamID `json:"id"`
		Name string     `json:"name"`
	}

	teams := make([]team, 0, kbo.TeamCount)
	for _, id := range kbo.Teams {
		teams = append(teams, team{ID: id, Name: kbo.TeamName(id)})
	}

	respondJSON(w, http.StatusOK, teams)
}

// TeamStatsResponse bundles one club's stats across all four categories.
// Categories that have not been scraped yet are null.
type TeamStatsResponse struct {
	TeamID      kbo.TeamID              `json:"team_id"`
	TeamName    string                  `json:"team_name"`
	Batting     *store.BattingStats     `json:"batting"`
	Pitching    *store.PitchingStats    `json:"pitching"`
	Fielding    *store.FieldingStats    `json:"fielding"`
	Baserunning *store.BaserunningStats `json:"baserunning"`
}

// GetTeamStats returns one club's season totals across all categories.
func (h *Handler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathTeam(w, r)
	if !ok {
		return
	}

	if h.cache != nil {
		var cached TeamStatsResponse
		if hit, err := h.cache.GetJSON(r.Context(), cache.KeyTeamStats+string(teamID), &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	resp := &TeamStatsResponse{TeamID: teamID, TeamName: kbo.TeamName(teamID)}

	var err error
	if resp.Batting, err = h.stats.GetBatting(r.Context(), teamID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch team stats", err)
		return
	}
	if resp.Pitching, err = h.stats.GetPitching(r.Context(), teamID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch team stats", err)
		return
	}
	if resp.Fielding, err = h.stats.GetFielding(r.Context(), teamID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch team stats", err)
		return
	}
	if resp.Baserunning, err = h.stats.GetBaserunning(r.Context(), teamID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch team stats", err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(r.Context(), cache.KeyTeamStats+string(teamID), resp, cache.DefaultReadTTL); err != nil {
			log.Printf("⚠️ failed to cache team stats: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetTeamRankingHistory returns one club's rank over the trailing days
// (default 30).
func (h *Handler) GetTeamRankingHistory(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathTeam(w, r)
	if !ok {
		return
	}
	days := queryDays(r, 30)

	history, err := h.rankings.TeamHistory(r.Context(), teamID, days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch team ranking history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"team_id":  teamID,
		"days":     days,
		"rankings": history,
	})
}

// GetMonthSchedule returns all fixtures in one calendar month.
func (h *Handler) GetMonthSchedule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	year, err := strconv.Atoi(vars["year"])
	if err != nil || year < 1982 {
		respondError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		respondError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	games, err := h.games.GetByMonth(r.Context(), year, time.Month(month))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch schedule", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"year":  year,
		"month": month,
		"games": games,
		"count": len(games),
	})
}

// GetTeamSchedule returns one club's fixtures.
func (h *Handler) GetTeamSchedule(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathTeam(w, r)
	if !ok {
		return
	}

	limit := 200
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	games, err := h.games.GetByTeam(r.Context(), teamID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch team schedule", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"team_id": teamID,
		"games":   games,
		"count":   len(games),
	})
}

// GetNextGame returns one club's next scheduled fixture.
func (h *Handler) GetNextGame(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathTeam(w, r)
	if !ok {
		return
	}

	game, err := h.games.NextGame(r.Context(), teamID, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch next game", err)
		return
	}
	if game == nil {
		respondError(w, http.StatusNotFound, "No upcoming games", nil)
		return
	}

	respondJSON(w, http.StatusOK, game)
}

// pathTeam extracts and validates the {teamID} path variable. Writes a 404
// and returns false for unknown codes.
func pathTeam(w http.ResponseWriter, r *http.Request) (kbo.TeamID, bool) {
	teamID := kbo.TeamID(strings.ToUpper(mux.Vars(r)["teamID"]))
	if !kbo.ValidTeam(teamID) {
		respondError(w, http.StatusNotFound, "Unknown team", nil)
		return "", false
	}
	return teamID, true
}

func queryDays(r *http.Request, fallback int) int {
	if s := r.URL.Query().Get("days"); s != "" {
		if d, err := strconv.Atoi(s); err == nil && d > 0 && d <= 365 {
			return d
		}
	}
	return fallback
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
