package services

import (
	"context"
	"time"

	"nexus-project/collaboration-service/models"
	"nexus-project/collaboration-service/repositories"
	"nexus-project/collaboration-service/ws"
)

// TaskInput carries the user-supplied fields for creating or editing a
// shared task. Zero values mean "not provided" on create; on update the
// full set is applied last-write-wins. DueDate is a pointer so an update
// can distinguish "keep the current date" (nil) from "clear it" (zero).
type TaskInput struct {
	TeamID      string              `json:"teamId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	Workplace   string              `json:"workplace"`
}

// TaskService owns the lifecycle of tasks scoped to a team: creation,
// edits, assignment, deletion and comments.
type TaskService struct {
	taskRepo repositories.TaskRepository
	teamRepo repositories.TeamRepository
	roles    RoleResolver
	hub      ws.Publisher
}

func NewTaskService(taskRepo repositories.TaskRepository, teamRepo repositories.TeamRepository, roles RoleResolver, hub ws.Publisher) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		teamRepo: teamRepo,
		roles:    roles,
		hub:      hub,
	}
}

func (s *TaskService) requireRole(ctx context.Context, teamID, userID string) (models.Role, error) {
	role, err := s.roles.GetUserRole(ctx, teamID, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return "", models.NewAuthorizationError("user %s is not a member of team %s", userID, teamID)
		}
		return "", err
	}
	return role, nil
}

// CreateSharedTask creates a task in the team. Requires write capability.
// Omitted fields default to status "Not Started", priority Medium and a due
// date one week out; the task starts unassigned.
func (s *TaskService) CreateSharedTask(ctx context.Context, teamID string, input TaskInput, actingUserID, originClientID string) (*models.SharedTask, error) {
	role, err := s.requireRole(ctx, teamID, actingUserID)
	if err != nil {
		return nil, err
	}
	if !role.CanWrite() {
		return nil, models.NewAuthorizationError("viewers may not create tasks")
	}
	if input.Title == "" {
		return nil, models.NewValidationError("task title is required")
	}

	status := input.Status
	if status == "" {
		status = models.StatusNotStarted
	}
	if !status.IsValid() {
		return nil, models.NewValidationError("unknown status %q", status)
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, models.NewValidationError("unknown priority %q", priority)
	}
	dueDate := time.Now().AddDate(0, 0, 7)
	if input.DueDate != nil {
		dueDate = *input.DueDate
	}

	task := &models.SharedTask{
		TeamID:      teamID,
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		Workplace:   input.Workplace,
		AssignedTo:  "",
		Comments:    []models.Comment{},
	}
	if err := s.taskRepo.InsertTask(ctx, task); err != nil {
		return nil, err
	}

	s.publish(models.EventTaskCreated, teamID, task.ID.Hex(), actingUserID, map[string]string{"title": task.Title}, originClientID)
	return task, nil
}

// ListTasksForTeam returns every shared task of the team. Any member.
func (s *TaskService) ListTasksForTeam(ctx context.Context, teamID, actingUserID string) ([]models.SharedTask, error) {
	if _, err := s.requireRole(ctx, teamID, actingUserID); err != nil {
		return nil, err
	}
	return s.taskRepo.GetTasksByTeam(ctx, teamID)
}

// GetTask returns one shared task. Any member of its team.
func (s *TaskService) GetTask(ctx context.Context, taskID, actingUserID string) (*models.SharedTask, error) {
	task, err := s.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, task.TeamID, actingUserID); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateSharedTask applies an edit last-write-wins. Requires write
// capability. A payload naming a different team is rejected: the team of a
// task never changes after creation.
func (s *TaskService) UpdateSharedTask(ctx context.Context, taskID string, input TaskInput, actingUserID, originClientID string) (*models.SharedTask, error) {
	task, err := s.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	role, err := s.requireRole(ctx, task.TeamID, actingUserID)
	if err != nil {
		return nil, err
	}
	if !role.CanWrite() {
		return nil, models.NewAuthorizationError("viewers may not edit tasks")
	}
	if input.TeamID != "" && input.TeamID != task.TeamID {
		return nil, models.NewValidationError("task team cannot be changed")
	}
	if input.Title == "" {
		return nil, models.NewValidationError("task title is required")
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, models.NewValidationError("unknown status %q", input.Status)
	}
	if input.Priority != "" && !input.Priority.IsValid() {
		return nil, models.NewValidationError("unknown priority %q", input.Priority)
	}

	task.Title = input.Title
	task.Description = input.Description
	if input.Status != "" {
		task.Status = input.Status
	}
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	task.Workplace = input.Workplace

	if err := s.taskRepo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	s.publish(models.EventTaskUpdated, task.TeamID, taskID, actingUserID, map[string]string{"status": string(task.Status)}, originClientID)
	return task, nil
}

// DeleteSharedTask removes a task together with its comments. Owner only.
func (s *TaskService) DeleteSharedTask(ctx context.Context, taskID, actingUserID, originClientID string) error {
	task, err := s.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	role, err := s.requireRole(ctx, task.TeamID, actingUserID)
	if err != nil {
		return err
	}
	if role != models.RoleOwner {
		return models.NewAuthorizationError("only the team owner may delete tasks")
	}

	if err := s.taskRepo.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	s.publish(models.EventTaskDeleted, task.TeamID, taskID, actingUserID, nil, originClientID)
	return nil
}

// AssignTask sets or clears the assignee. Requires write capability. A
// non-empty assignee must hold a current membership of the task's team.
func (s *TaskService) AssignTask(ctx context.Context, taskID, memberID, actingUserID, originClientID string) error {
	task, err := s.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	role, err := s.requireRole(ctx, task.TeamID, actingUserID)
	if err != nil {
		return err
	}
	if !role.CanWrite() {
		return models.NewAuthorizationError("viewers may not assign tasks")
	}
	if memberID != "" {
		if _, err := s.teamRepo.GetMembership(ctx, task.TeamID, memberID); err != nil {
			if models.IsNotFound(err) {
				return models.NewValidationError("assignee %s is not a member of team %s", memberID, task.TeamID)
			}
			return err
		}
	}

	if err := s.taskRepo.SetAssignee(ctx, taskID, memberID); err != nil {
		return err
	}

	s.publish(models.EventTaskUpdated, task.TeamID, taskID, actingUserID, map[string]string{"assignedTo": memberID}, originClientID)
	return nil
}

// AddComment appends a comment with a server-assigned timestamp. Every team
// member may comment, viewers included. Comments are never edited or
// removed afterwards.
func (s *TaskService) AddComment(ctx context.Context, taskID, text, authorID, originClientID string) (*models.Comment, error) {
	if text == "" {
		return nil, models.NewValidationError("comment text is required")
	}
	task, err := s.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, task.TeamID, authorID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.taskRepo.AppendComment(ctx, taskID, comment); err != nil {
		return nil, err
	}

	s.publish(models.EventCommentAdded, task.TeamID, taskID, authorID, nil, originClientID)
	return &comment, nil
}

func (s *TaskService) publish(kind models.EventKind, teamID, recordID, actorID string, diff map[string]string, originClientID string) {
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
