package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/tournament-portal/live"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler разрешает подключения только с origins; пустой список разрешает все.
func NewWebSocketHandler(hub *live.Hub, origins []string, logger *slog.Logger) *WebSocketHandler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// GroupStandingsWs обрабатывает /ws/standings/groups/{groupID}
func (h *WebSocketHandler) GroupStandingsWs(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.serve(w, r, live.GroupScope(groupID))
}

// TournamentStandingsWs обрабатывает /ws/standings/tournaments/{tournamentID}?stage_id=
func (h *WebSocketHandler) TournamentStandingsWs(w http.ResponseWriter, r *http.Request) {
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
	h.serve(w, r, live.TournamentScope(tournamentID, stageID))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, scope live.Scope) {
	room := scope.Room()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту HTTP-ошибкой.
		h.logger.Warn("websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, room)
	if !h.hub.Join(client) {
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("standings viewer connected", slog.String("room", room))
}
