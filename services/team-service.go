package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"nexus-project/collaboration-service/clients"
	"nexus-project/collaboration-service/logging"
	"nexus-project/collaboration-service/models"
	"nexus-project/collaboration-service/repositories"
	"nexus-project/collaboration-service/ws"
)

// RoleResolver answers role questions for a (team, user) pair.
type RoleResolver interface {
	GetUserRole(ctx context.Context, teamID, userID string) (models.Role, error)
}

// TeamService owns team creation, the membership roster and role assignment.
// Role lookups are cached per (team, user); every membership mutation
// invalidates the affected team's entries.
type TeamService struct {
	teamRepo repositories.TeamRepository
	identity clients.IdentityProvider
	hub      ws.Publisher

	cacheMu   sync.RWMutex
	roleCache map[string]models.Role
}

func NewTeamService(teamRepo repositories.TeamRepository, identity clients.IdentityProvider, hub ws.Publisher) *TeamService {
	return &TeamService{
		teamRepo:  teamRepo,
		identity:  identity,
		hub:       hub,
		roleCache: make(map[string]models.Role),
	}
}

func roleCacheKey(teamID, userID string) string {
	return teamID + "/" + userID
}

// GetUserRole resolves the acting user's role in a team, from cache when
// possible. A missing membership is reported as NotFoundError.
func (s *TeamService) GetUserRole(ctx context.Context, teamID, userID string) (models.Role, error) {
	s.cacheMu.RLock()
	role, ok := s.roleCache[roleCacheKey(teamID, userID)]
	s.cacheMu.RUnlock()
	if ok {
		return role, nil
	}

	member, err := s.teamRepo.GetMembership(ctx, teamID, userID)
	if err != nil {
		return "", err
	}

	s.cacheMu.Lock()
	s.roleCache[roleCacheKey(teamID, userID)] = member.Role
	s.cacheMu.Unlock()
	return member.Role, nil
}

// invalidateTeamRoles drops every cached role for the team. Called after any
// membership mutation so userRole/canWrite/isOwner never go stale.
func (s *TeamService) invalidateTeamRoles(teamID string) {
	prefix := teamID + "/"
	s.cacheMu.Lock()
	for key := range s.roleCache {
		if strings.HasPrefix(key, prefix) {
			delete(s.roleCache, key)
		}
	}
	s.cacheMu.Unlock()
}

// requireRole loads the acting user's role and rejects with
// AuthorizationError when the membership is missing entirely.
func (s *TeamService) requireRole(ctx context.Context, teamID, userID string) (models.Role, error) {
	role, err := s.GetUserRole(ctx, teamID, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return "", models.NewAuthorizationError("user %s is not a member of team %s", userID, teamID)
		}
		return "", err
	}
	return role, nil
}

// CreateTeam creates a team and seeds the creator as its Owner. The two
// writes are sequential; if the membership insert fails the team insert is
// compensated so no team is left without an Owner.
func (s *TeamService) CreateTeam(ctx context.Context, name, description, creatorID string) (*models.Team, error) {
	if name == "" {
		return nil, models.NewValidationError("team name is required")
	}

	team := &models.Team{
		Name:        name,
		Description: description,
		OwnerID:     creatorID,
	}
	if err := s.teamRepo.InsertTeam(ctx, team); err != nil {
		return nil, err
	}

	creatorName := ""
	creatorAvatar := ""
	if profile, err := s.identity.GetProfile(ctx, creatorID); err == nil {
		creatorName = profile.Name
		creatorAvatar = profile.Avatar
	} else {
		logging.Logger.Warnf("Event ID: PROFILE_LOOKUP_FAILED, Description: Could not resolve profile for creator %s: %v", creatorID, err)
	}

	member := &models.Member{
		TeamID: team.ID.Hex(),
		UserID: creatorID,
		Name:   creatorName,
		Avatar: creatorAvatar,
		Role:   models.RoleOwner,
	}
	if err := s.teamRepo.InsertMember(ctx, member); err != nil {
		if cleanupErr := s.teamRepo.DeleteTeam(ctx, team.ID.Hex()); cleanupErr != nil {
			logging.Logger.Errorf("Event ID: TEAM_CLEANUP_FAILED, Description: Failed to remove team %s after owner membership insert failed: %v", team.ID.Hex(), cleanupErr)
		}
		return nil, fmt.Errorf("failed to seed owner membership: %w", err)
	}

	s.invalidateTeamRoles(team.ID.Hex())
	return team, nil
}

// ListTeamsForUser returns every team the user holds a membership in.
// No ordering guarantee.
func (s *TeamService) ListTeamsForUser(ctx context.Context, userID string) ([]models.Team, error) {
	return s.teamRepo.GetTeamsForUser(ctx, userID)
}

// UpdateTeam renames or re-describes a team. Owner only.
func (s *TeamService) UpdateTeam(ctx context.Context, teamID, name, description, actingUserID, originClientID string) (*models.Team, error) {
	role, err := s.requireRole(ctx, teamID, actingUserID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleOwner {
		return nil, models.NewAuthorizationError("only the team owner may update the team")
	}
	if name == "" {
		return nil, models.NewValidationError("team name is required")
	}

	if err := s.teamRepo.UpdateTeamFields(ctx, teamID, name, description); err != nil {
		return nil, err
	}

	s.publish(models.EventTeamUpdated, teamID, teamID, actingUserID, map[string]string{"name": name}, originClientID)
	return s.teamRepo.GetTeamByID(ctx, teamID)
}

// GetMembers lists the team roster. Any member may read it.
func (s *TeamService) GetMembers(ctx context.Context, teamID, actingUserID string) ([]models.Member, error) {
	if _, err := s.requireRole(ctx, teamID, actingUserID); err != nil {
		return nil, err
	}
	return s.teamRepo.GetMembersForTeam(ctx, teamID)
}

// AddMember provisions a fresh identity for the named person and joins them
// to the team with the given role. Requires write capability.
func (s *TeamService) AddMember(ctx context.Context, teamID, name string, role models.Role, actingUserID, originClientID string) (*models.Member, error) {
	actingRole, err := s.requireRole(ctx, teamID, actingUserID)
	if err != nil {
		return nil, err
	}
	if !actingRole.CanWrite() {
		return nil, models.NewAuthorizationError("viewers may not add members")
	}
	if name == "" {
		return nil, models.NewValidationError("member name is required")
	}
	if role == "" {
		role = models.RoleViewer
	}
	if !role.IsValid() {
		return nil, models.NewValidationError("unknown role %q", role)
	}
	if _, err := s.teamRepo.GetTeamByID(ctx, teamID); err != nil {
		return nil, err
	}

	profile, err := s.identity.MintMember(ctx, name)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		TeamID: teamID,
		UserID: profile.ID,
		Name:   profile.Name,
		Avatar: profile.Avatar,
		Role:   role,
	}
	if err := s.teamRepo.InsertMember(ctx, member); err != nil {
		return nil, err
	}

	s.invalidateTeamRoles(teamID)
	s.publish(models.EventMemberAdded, teamID, member.UserID, actingUserID, map[string]string{"role": string(role)}, originClientID)
	return member, nil
}

// ChangeMemberRole reassigns a member's role. Owner only; the acting user
// cannot edit their own row, and the last Owner cannot be demoted.
func (s *TeamService) ChangeMemberRole(ctx context.Context, teamID, memberID string, newRole models.Role, actingUserID, originClientID string) error {
	actingRole, err := s.requireRole(ctx, teamID, actingUserID)
	if err != nil {
		return err
	}
	if actingRole != models.RoleOwner {
		return models.NewAuthorizationError("only the team owner may change member roles")
	}
	if memberID == actingUserID {
		return models.NewValidationError("own membership cannot be edited")
	}
	if !newRole.IsValid() {
		return models.NewValidationError("unknown role %q", newRole)
	}

	target, err := s.teamRepo.GetMembership(ctx, teamID, memberID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner && newRole != models.RoleOwner {
		owners, err := s.teamRepo.CountOwners(ctx, teamID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return models.NewInvariantViolationError("team %s would be left without an owner", teamID)
		}
	}

	if err := s.teamRepo.UpdateMemberRole(ctx, teamID, memberID, newRole); err != nil {
		return err
	}

	s.invalidateTeamRoles(teamID)
	s.publish(models.EventMemberRoleChanged, teamID, memberID, actingUserID, map[string]string{"role": string(newRole)}, originClientID)
	return nil
}

// RemoveMember drops a member from the roster. Owner only; self-removal is
// blocked at this boundary and the last Owner can never be removed.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, memberID, actingUserID, originClientID string) error {
	actingRole, err := s.requireRole(ctx, teamID, actingUserID)
	if err != nil {
		return err
	}
	if actingRole != models.RoleOwner {
		return models.NewAuthorizationError("only the team owner may remove members")
	}
	if memberID == actingUserID {
		return models.NewValidationError("own membership cannot be removed")
	}

	target, err := s.teamRepo.GetMembership(ctx, teamID, memberID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner {
		owners, err := s.teamRepo.CountOwners(ctx, teamID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return models.NewInvariantViolationError("team %s would be left without an owner", teamID)
		}
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, memberID); err != nil {
		return err
	}

	s.invalidateTeamRoles(teamID)
	s.publish(models.EventMemberRemoved, teamID, memberID, actingUserID, nil, originClientID)
	return nil
}

func (s *TeamService) publish(kind models.EventKind, teamID, recordID, actorID string, diff map[string]string, originClientID string) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(teamID, models.Event{
		Kind:      kind,
		TeamID:    teamID,
		RecordID:  recordID,
		ActorID:   actorID,
		Diff:      diff,
		Timestamp: time.Now(),
	}, originClientID)
}
