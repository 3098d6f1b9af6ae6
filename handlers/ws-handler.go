package handlers

import (
	"net/http"

	"nexus-project/collaboration-service/logging"
	"nexus-project/collaboration-service/services"
	"nexus-project/collaboration-service/ws"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades a member's connection and joins it to the team's
// broadcast channel. Channel membership is session-scoped: closing the
// connection is the only unsubscribe.
type WSHandler struct {
	hub   *ws.Hub
	roles services.RoleResolver
}

func NewWSHandler(hub *ws.Hub, roles services.RoleResolver) *WSHandler {
	return &WSHandler{hub: hub, roles: roles}
}

func (h *WSHandler) JoinTeamChannel(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	ctx, cancel := requestContext(r)
	if _, err := h.roles.GetUserRole(ctx, teamID, actingUser(r)); err != nil {
		cancel()
		http.Error(w, "Access forbidden: not a team member", http.StatusForbidden)
		return
	}
	cancel()

	// The client supplies its ID so REST mutations can name it in
	// X-Client-ID and skip their own echo. Re-joins with the same ID
	// replace the old subscriber instead of duplicating it.
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		clientID = uuid.New().String()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Warnf("Event ID: WEBSOCKET_UPGRADE_FAILED, Description: Upgrade failed for team %s: %v", teamID, err)
		return
	}

	client := ws.NewClient(conn)
	h.hub.Join(teamID, clientID, client)
	logging.Logger.Infof("Event ID: CHANNEL_JOINED, Description: Client %s joined channel for team %s", clientID, teamID)

	// The read loop exists only to detect disconnect; inbound frames are
	// ignored because mutations arrive over the REST surface.
	go func() {
		defer func() {
			h.hub.Leave(teamID, clientID, client)
			client.Close()
			logging.Logger.Infof("Event ID: CHANNEL_LEFT, Description: Client %s left channel for team %s", clientID, teamID)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
