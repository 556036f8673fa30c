package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shuttlenet/racquet-rankings/models"
	"github.com/shuttlenet/racquet-rankings/services"
)

type RankingHandler struct {
	rankingService services.RankingService
	queryService   services.RankingQueryService
}

func NewRankingHandler(rankingService services.RankingService, queryService services.RankingQueryService) *RankingHandler {
	return &RankingHandler{
		rankingService: rankingService,
		queryService:   queryService,
	}
}

// Calculate runs the ranking engine for one tournament and returns the
// computed breakdown.
func (h *RankingHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := readIDParam(chi.URLParam(r, "tournamentID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	breakdown, err := h.rankingService.CalculateTournamentPoints(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"tournament_id":  tournamentID,
		"players_scored": len(breakdown),
		"breakdown":      breakdown,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecalculateAll reruns the engine for every tournament and reports a
// summary; individual failures are part of the payload, never a 5xx.
func (h *RankingHandler) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.rankingService.RecalculateAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RankingHandler) GlobalRankings(w http.ResponseWriter, r *http.Request) {
	var category *models.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		cat, err := models.ParseCategory(raw)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		category = &cat
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			badRequestResponse(w, r, errors.New("limit must be between 1 and 200"))
			return
		}
		limit = parsed
	}

	grouped, err := h.queryService.GlobalRankings(r.Context(), category, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	total := 0
	for _, rankings := range grouped {
		total += len(rankings)
	}
	response := jsonResponse{
		"rankings": grouped,
		"total":    total,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RankingHandler) CategoryRankings(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rankings, err := h.queryService.CategoryRankings(r.Context(), category)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"category": category,
		"rankings": rankings,
		"total":    len(rankings),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RankingHandler) PlayerRankings(w http.ResponseWriter, r *http.Request) {
	playerID, err := readIDParam(chi.URLParam(r, "playerID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rankings, err := h.queryService.PlayerRankings(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RankingHandler) PlayerHistory(w http.ResponseWriter, r *http.Request) {
	playerID, err := readIDParam(chi.URLParam(r, "playerID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var category *models.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		cat, parseErr := models.ParseCategory(raw)
		if parseErr != nil {
			badRequestResponse(w, r, parseErr)
			return
		}
		category = &cat
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil || parsed < 1 {
			badRequestResponse(w, r, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	history, err := h.queryService.PlayerHistory(r.Context(), playerID, category, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"history": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RankingHandler) TournamentResults(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := readIDParam(chi.URLParam(r, "tournamentID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.queryService.TournamentResults(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"tournament_id": tournamentID,
		"results":       results,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RankingHandler) PointTable(w http.ResponseWriter, r *http.Request) {
	configs, err := h.queryService.PointTable(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"point_config": configs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
