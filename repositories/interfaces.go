package repositories

import (
	"context"

	"nexus-project/collaboration-service/models"
)

// TeamRepository is the record-store contract for teams and memberships.
type TeamRepository interface {
	InsertTeam(ctx context.Context, team *models.Team) error
	DeleteTeam(ctx context.Context, teamID string) error
	GetTeamByID(ctx context.Context, teamID string) (*models.Team, error)
	UpdateTeamFields(ctx context.Context, teamID, name, description string) error
	GetTeamsForUser(ctx context.Context, userID string) ([]models.Team, error)

	InsertMember(ctx context.Context, member *models.Member) error
	GetMembership(ctx context.Context, teamID, userID string) (*models.Member, error)
	GetMembersForTeam(ctx context.Context, teamID string) ([]models.Member, error)
	UpdateMemberRole(ctx context.Context, teamID, userID string, role models.Role) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	CountOwners(ctx context.Context, teamID string) (int64, error)
}

// TaskRepository is the record-store contract for shared tasks.
type TaskRepository interface {
	InsertTask(ctx context.Context, task *models.SharedTask) error
	GetTaskByID(ctx context.Context, taskID string) (*models.SharedTask, error)
	GetTasksByTeam(ctx context.Context, teamID string) ([]models.SharedTask, error)
	UpdateTask(ctx context.Context, task *models.SharedTask) error
	SetAssignee(ctx context.Context, taskID, userID string) error
	AppendComment(ctx context.Context, taskID string, comment models.Comment) error
	DeleteTask(ctx context.Context, taskID string) error
}
