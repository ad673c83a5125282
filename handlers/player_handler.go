package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-portal/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
	statsService  services.PlayerStatsService
}

func NewPlayerHandler(ps services.PlayerService, ss services.PlayerStatsService) *PlayerHandler {
	return &PlayerHandler{
		playerService: ps,
		statsService:  ss,
	}
}

// CreatePlayer обрабатывает POST /admin/players
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.CreatePlayer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPlayers обрабатывает GET /players?team=
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	teamID, err := getOptionalUUIDQuery(r, "team")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.playerService.ListPlayers(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPlayerByID обрабатывает GET /players/{playerID}
func (h *PlayerHandler) GetPlayerByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetPlayerByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdatePlayer обрабатывает PATCH /admin/players/{playerID}
func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.UpdatePlayer(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeletePlayer обрабатывает DELETE /admin/players/{playerID}
func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.DeletePlayer(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatsHandler godoc
// @Summary Статистика игроков (бомбардиры, ассистенты)
// @Tags players
// @Produce json
// @Produce text/csv
// @Param team query string false "ID команды"
// @Param search query string false "Поиск по имени"
// @Param sort query string false "goals или assists"
// @Param format query string false "csv для выгрузки"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /players/stats [get]
func (h *PlayerHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	teamID, err := getOptionalUUIDQuery(r, "team")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	query := r.URL.Query()
	filter := services.PlayerStatsFilter{
		TeamID: teamID,
		Search: query.Get("search"),
		SortBy: query.Get("sort"),
	}

	totals, err := h.statsService.Leaderboard(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if strings.EqualFold(query.Get("format"), "csv") {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="player_stats.csv"`)
		if err := services.WriteStatsCSV(w, totals); err != nil {
			slog.ErrorContext(r.Context(), "failed to write stats csv", slog.Any("error", err))
		}
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": totals}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
