package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-portal/services"
)

type StageHandler struct {
	stageService services.StageService
	groupService services.GroupService
}

func NewStageHandler(ss services.StageService, gs services.GroupService) *StageHandler {
	return &StageHandler{
		stageService: ss,
		groupService: gs,
	}
}

// GetByIDHandler godoc
// @Summary Этап: группы, матчи по группам, матчи сегодня и ближайшие
// @Tags stages
// @Produce json
// @Param stageID path string true "ID этапа"
// @Success 200 {object} services.StageOverview
// @Failure 404 {object} map[string]string
// @Router /stages/{stageID} [get]
func (h *StageHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	overview, err := h.stageService.GetStageOverview(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": overview}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler godoc
// @Summary Обновить этап
// @Tags stages
// @Accept json
// @Produce json
// @Param stageID path string true "ID этапа"
// @Param body body services.UpdateStageInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/stages/{stageID} [patch]
func (h *StageHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateStageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stage, err := h.stageService.UpdateStage(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler godoc
// @Summary Удалить этап
// @Tags stages
// @Param stageID path string true "ID этапа"
// @Success 204
// @Security BearerAuth
// @Router /admin/stages/{stageID} [delete]
func (h *StageHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.stageService.DeleteStage(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateGroupHandler godoc
// @Summary Добавить группу в этап
// @Tags groups
// @Accept json
// @Produce json
// @Param stageID path string true "ID этапа"
// @Param body body services.CreateGroupInput true "Группа"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/stages/{stageID}/groups [post]
func (h *StageHandler) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateGroupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group, err := h.groupService.CreateGroup(r.Context(), stageID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
