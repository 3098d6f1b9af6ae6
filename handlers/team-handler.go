package handlers

import (
	"encoding/json"
	"net/http"

	"nexus-project/collaboration-service/logging"
	"nexus-project/collaboration-service/models"
	"nexus-project/collaboration-service/services"

	"github.com/gorilla/mux"
)

type TeamHandler struct {
	service *services.TeamService
}

func NewTeamHandler(service *services.TeamService) *TeamHandler {
	return &TeamHandler{service: service}
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	team, err := h.service.CreateTeam(ctx, request.Name, request.Description, actingUser(r))
	if err != nil {
		writeError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: TEAM_CREATED, Description: Team %s created by user %s", team.ID.Hex(), actingUser(r))
	writeJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	teams, err := h.service.ListTeamsForUser(ctx, actingUser(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, teams)
}

func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	var request struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	team, err := h.service.UpdateTeam(ctx, teamID, request.Name, request.Description, actingUser(r), originClient(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	ctx, cancel := requestContext(r)
	defer cancel()

	members, err := h.service.GetMembers(ctx, teamID, actingUser(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	var request struct {
		Name string      `json:"name"`
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	member, err := h.service.AddMember(ctx, teamID, request.Name, request.Role, actingUser(r), originClient(r))
	if err != nil {
		writeError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: MEMBER_ADDED, Description: Member %s added to team %s with role %s", member.UserID, teamID, member.Role)
	writeJSON(w, http.StatusCreated, member)
}

func (h *TeamHandler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	teamID := vars["teamId"]
	memberID := vars["memberId"]

	var request struct {
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.service.ChangeMemberRole(ctx, teamID, memberID, request.Role, actingUser(r), originClient(r)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Member role updated successfully"})
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	teamID := vars["teamId"]
	memberID := vars["memberId"]

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.service.RemoveMember(ctx, teamID, memberID, actingUser(r), originClient(r)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Member removed from team successfully"})
}
