package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-portal/services"
	"github.com/Dosada05/tournament-portal/standings"
)

type StandingsHandler struct {
	standingsService services.StandingsService
	archiveService   services.ArchiveService
}

func NewStandingsHandler(ss services.StandingsService, as services.ArchiveService) *StandingsHandler {
	return &StandingsHandler{
		standingsService: ss,
		archiveService:   as,
	}
}

// TournamentStandingsHandler godoc
// @Summary Турнирная таблица по всем группам турнира
// @Description stage_id выбирает просматриваемый этап: групповой этап даёт живую таблицу, плей-офф даёт итоговую.
// @Tags standings
// @Produce json
// @Produce plain
// @Param tournamentID path string true "ID турнира"
// @Param stage_id query string false "ID этапа"
// @Param format query string false "text для текстовой таблицы"
// @Success 200 {object} standings.Table
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /tournaments/{tournamentID}/standings [get]
func (h *StandingsHandler) TournamentStandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stageID, err := getOptionalUUIDQuery(r, "stage_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	table, err := h.standingsService.TournamentStandings(r.Context(), tournamentID, stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeTable(w, r, table)
}

// StageStandingsHandler godoc
// @Summary Таблица по группам одного этапа
// @Tags standings
// @Produce json
// @Param stageID path string true "ID этапа"
// @Success 200 {object} standings.Table
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /stages/{stageID}/standings [get]
func (h *StandingsHandler) StageStandingsHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	table, err := h.standingsService.StageStandings(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeTable(w, r, table)
}

// GroupStandingsHandler godoc
// @Summary Таблица группы
// @Tags standings
// @Produce json
// @Param groupID path string true "ID группы"
// @Success 200 {object} standings.Table
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /groups/{groupID}/standings [get]
func (h *StandingsHandler) GroupStandingsHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	table, err := h.standingsService.GroupStandings(r.Context(), groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeTable(w, r, table)
}

// RebuildGroupHandler обрабатывает POST /admin/groups/{groupID}/standings/rebuild
func (h *StandingsHandler) RebuildGroupHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rows, err := h.standingsService.RebuildGroup(r.Context(), groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	logAdminAction(r, "rebuild_group_standings",
		slog.String("group_id", groupID.String()), slog.Int("teams", len(rows)))

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rows": rows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ArchiveStageHandler godoc
// @Summary Опубликовать итоговую таблицу этапа в хранилище
// @Tags standings
// @Produce json
// @Param stageID path string true "ID этапа"
// @Success 201 {object} services.StandingsSnapshot
// @Failure 501 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /admin/stages/{stageID}/standings/archive [post]
func (h *StandingsHandler) ArchiveStageHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.archiveService.ArchiveStage(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	logAdminAction(r, "archive_stage_standings", slog.String("stage_id", stageID.String()))

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"archive": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetArchiveHandler обрабатывает GET /stages/{stageID}/standings/archive
func (h *StandingsHandler) GetArchiveHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.archiveService.GetArchive(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"archive": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteArchiveHandler обрабатывает DELETE /admin/stages/{stageID}/standings/archive
func (h *StandingsHandler) DeleteArchiveHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.archiveService.DeleteArchive(r.Context(), stageID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	logAdminAction(r, "delete_stage_archive", slog.String("stage_id", stageID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// writeTable отдаёт таблицу в JSON или, при ?format=text, выровненным текстом.
func writeTable(w http.ResponseWriter, r *http.Request, table standings.Table) {
	if strings.EqualFold(r.URL.Query().Get("format"), "text") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := standings.WriteText(w, table); err != nil {
			slog.ErrorContext(r.Context(), "failed to write standings text", slog.Any("error", err))
		}
		return
	}

	resp := jsonResponse{"standings": table}
	if !table.Available {
		resp["message"] = table.Message()
	}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
