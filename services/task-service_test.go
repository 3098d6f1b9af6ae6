package services

import (
	"context"
	"testing"
	"time"

	"nexus-project/collaboration-service/models"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubTaskRepo struct {
	tasks map[string]*models.SharedTask
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*models.SharedTask)}
}

func (r *stubTaskRepo) InsertTask(_ context.Context, task *models.SharedTask) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	copied := *task
	r.tasks[task.ID.Hex()] = &copied
	return nil
}

func (r *stubTaskRepo) GetTaskByID(_ context.Context, taskID string) (*models.SharedTask, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, &models.NotFoundError{Resource: "task", ID: taskID}
	}
	copied := *task
	return &copied, nil
}

func (r *stubTaskRepo) GetTasksByTeam(_ context.Context, teamID string) ([]models.SharedTask, error) {
	var tasks []models.SharedTask
	for _, task := range r.tasks {
		if task.TeamID == teamID {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (r *stubTaskRepo) UpdateTask(_ context.Context, task *models.SharedTask) error {
	stored, ok := r.tasks[task.ID.Hex()]
	if !ok {
		return &models.NotFoundError{Resource: "task", ID: task.ID.Hex()}
	}
	stored.Title = task.Title
	stored.Description = task.Description
	stored.Status = task.Status
	stored.Priority = task.Priority
	stored.DueDate = task.DueDate
	stored.Workplace = task.Workplace
	return nil
}

func (r *stubTaskRepo) SetAssignee(_ context.Context, taskID, userID string) error {
	task, ok := r.tasks[taskID]
	if !ok {
		return &models.NotFoundError{Resource: "task", ID: taskID}
	}
	task.AssignedTo = userID
	return nil
}

func (r *stubTaskRepo) AppendComment(_ context.Context, taskID string, comment models.Comment) error {
	task, ok := r.tasks[taskID]
	if !ok {
		return &models.NotFoundError{Resource: "task", ID: taskID}
	}
	task.Comments = append(task.Comments, comment)
	return nil
}

func (r *stubTaskRepo) DeleteTask(_ context.Context, taskID string) error {
	if _, ok := r.tasks[taskID]; !ok {
		return &models.NotFoundError{Resource: "task", ID: taskID}
	}
	delete(r.tasks, taskID)
	return nil
}

type stubRoles struct {
	roles map[string]models.Role
}

func (s *stubRoles) GetUserRole(_ context.Context, teamID, userID string) (models.Role, error) {
	role, ok := s.roles[memberKey(teamID, userID)]
	if !ok {
		return "", &models.NotFoundError{Resource: "membership", ID: userID}
	}
	return role, nil
}

func newTaskServiceForTest() (*TaskService, *stubTaskRepo, *stubTeamRepo, *stubRoles, *stubPublisher) {
	taskRepo := newStubTaskRepo()
	teamRepo := newStubTeamRepo()
	roles := &stubRoles{roles: make(map[string]models.Role)}
	pub := &stubPublisher{}
	svc := NewTaskService(taskRepo, teamRepo, roles, pub)
	return svc, taskRepo, teamRepo, roles, pub
}

func grantRole(roles *stubRoles, teamID, userID string, role models.Role) {
	roles.roles[memberKey(teamID, userID)] = role
}

func TestCreateSharedTaskDefaults(t *testing.T) {
	svc, taskRepo, _, roles, _ := newTaskServiceForTest()
	grantRole(roles, "team1", "alice", models.RoleEditor)

	task, err := svc.CreateSharedTask(context.Background(), "team1", TaskInput{
		Title:    "Implement Auth Flow",
		Priority: models.PriorityHigh,
	}, "alice", "")
	require.NoError(t, err)

	require.Equal(t, models.StatusNotStarted, task.Status)
	require.Equal(t, models.PriorityHigh, task.Priority)
	require.Empty(t, task.AssignedTo)
	require.WithinDuration(t, time.Now().AddDate(0, 0, 7), task.DueDate, time.Minute)

	stored, err := taskRepo.GetTaskByID(context.Background(), task.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, "Implement Auth Flow", stored.Title)
	require.Equal(t, "team1", stored.TeamID)
}

func TestCreateSharedTaskDefaultPriorityMedium(t *testing.T) {
	svc, _, _, roles, _ := newTaskServiceForTest()
	grantRole(roles, "team1", "alice", models.RoleOwner)

	task, err := svc.CreateSharedTask(context.Background(), "team1", TaskInput{Title: "Design Landing Page"}, "alice", "")
	require.NoError(t, err)
	require.Equal(t, models.PriorityMedium, task.Priority)
}

func TestCreateSharedTaskViewerForbidden(t *testing.T) {
	svc, _, _, roles, _ := newTaskServiceForTest()
	grantRole(roles, "team1", "bob", models.RoleViewer)

	_, err := svc.CreateSharedTask(context.Background(), "team1", TaskInput{Title: "x"}, "bob", "")
	require.True(t, models.IsAuthorization(err))
}

func TestCreateSharedTaskNonMemberForbidden(t *testing.T) {
	svc, _, _, _, _ := newTaskServiceForTest()

	_, err := svc.CreateSharedTask(context.Background(), "team1", TaskInput{Title: "x"}, "stranger", "")
	require.True(t, models.IsAuthorization(err))
}

func TestCreateSharedTaskEmptyTitle(t *testing.T) {
	svc, _, _, roles, _ := newTaskServiceForTest()
	grantRole(roles, "team1", "alice", models.RoleEditor)

	_, err := svc.CreateSharedTask(context.Background(), "team1", TaskInput{}, "alice", "")
	require.True(t, models.IsValidation(err))
}

func TestUpdateSharedTaskTeamImmutable(t *testing.T) {
	svc, _, _, roles, _ := newTaskServiceForTest()
	grantRole(roles, "team1", "alice", models.RoleEditor)

	task, err := svc.CreateSharedTask(context.Background(), "team1", TaskInput{Title: "t"}, "alice", "")
	require.NoError(t, err)

	_, err = svc.UpdateSharedTask(context.Background(), task.ID.Hex(), TaskInput{
		TeamID: "team2",
		Title:  "t",
	}, "alice", "")
	require.True(t, models.IsValidation(err))
}

func TestUpdateSharedTaskStatusAnyTransition(t *testing.T) {
	svc, taskRepo, _, roles, pub := newTaskServiceForTest()
	grantRole(roles, "team1", "alice", models.RoleEditor)
	ctx := context.Background()

	task, err := svc.CreateSharedTask(ctx, "team1", TaskInput{Title: "t"}, "alice", "")
	require.NoError(t, err)

	// Completed straight from Not Started, then back again: the status
	// machine is driven by explicit user edits, not a forward-only order.
	_, err = svc.UpdateSharedTask(ctx, task.ID.Hex(), TaskInput{Title: "t", Status: models.StatusCompleted}, "alice", "")
	require.NoError(t, err)

	updated, err := svc.UpdateSharedTask(ctx, task.ID.Hex(), TaskInput{Title: "t", Status: models.StatusNotStarted}, "alice", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusNotStarted, updated.Status)

	stored, err := taskRepo.GetTaskByID(ctx, task.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, models.StatusNotStarted, stored.Status)

	// create + two updates
	require.Len(t, pub.events, 3)
	require.Equal(t, models.EventTaskUpdated, pub.events[2].event.Kind)
}

func TestUpdateSharedTaskDueDateKeepAndClear(t *testing.T) {
	svc, taskRepo, _, roles, _ := newTaskServiceForTest()
	grantRole(roles, "team1", "alice", models.RoleEditor)
	ctx := context.Background()

	task, err := svc.CreateSharedTask(ctx, "team1", TaskInput{Title: "t"}, "alice", "")
	require.NoError(t, err)
	defaulted := task.DueDate

	// Omitted due date leaves the current one in place.
	_, err = svc.UpdateSharedTask(ctx, task.ID.Hex(), TaskInput{Title: "t"}, "alice", "")
	require.NoError(t, err)
	stored, err := taskRepo.GetTaskByID(ctx, task.ID.Hex())
	require.NoError(t, err)
	require.True(t, stored.DueDate.Equal(defaulted))

	// An explicit date replaces it.
	newDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	_, err = svc.UpdateSharedTask(ctx, task.ID.Hex(), TaskInput{Title: "t", DueDate: &newDate}, "alice", "")
	require.NoError(t, err)
	stored, err = taskRepo.GetTaskByID(ctx, task.ID.Hex())
	require.NoError(t, err)
	require.True(t, stored.DueDate.Equal(newDate))

	// An explicit zero clears it entirely.
	cleared := time.Time{}
	_, err = svc.UpdateSharedTask(ctx, task.ID.Hex(), TaskInput{Title: "t", DueDate: &cleared}, "alice", "")
	require.NoError(t, err)
	stored, err = taskRepo.GetTaskByID(ctx, task.ID.Hex())
	require.NoError(t, err)
	require.True(t, stored.DueDate.IsZero())
}

func TestDeleteSharedTaskViewerForbidden(t *testing.T) {
	svc, taskRepo, _, roles, _ := newTaskServiceForTest()
	grantRole(roles, "team1", "alice", models.RoleEditor)
	grantRole(roles, "team1", "bob", models.RoleViewer)
	ctx := context.Background()

	task, err := svc.CreateSharedTask(ctx, "team1", TaskInput{Title: "keep me"}, "alice", "")
	require.NoError(t, err)

	err = svc.DeleteSharedTask(ctx, task.ID.Hex(), "bob", "")
	require.True(t, models.IsAuthorization(err))

	_, err = taskRepo.GetTaskByID(ctx, task.ID.Hex())
	require.NoError(t, err, "task must remain present")
}

func TestDeleteSharedTaskEditorForbidden(t *testing.T) {
	svc, _, _, roles, _ := newTaskServiceForTest()
	grantRole(roles, "team1", "alice", models.RoleEditor)

	task, err := svc.CreateSharedTask(context.Background(), "team1", TaskInput{Title: "t"}, "alice", "")
	require.NoError(t, err)

	err = svc.DeleteSharedTask(context.Background(), task.ID.Hex(), "alice", "")
	require.True(t, models.IsAuthorization(err))
}

func TestDeleteSharedTaskByOwner(t *testing.T) {
	svc, taskRepo, _, roles, pub := newTaskServiceForTest()
	grantRole(roles, "team1", "u1", models.RoleOwner)
	ctx := context.Background()

	task, err := svc.CreateSharedTask(ctx, "team1", TaskInput{Title: "t"}, "u1", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSharedTask(ctx, task.ID.Hex(), "u1", ""))

	_, err = taskRepo.GetTaskByID(ctx, task.ID.Hex())
	require.True(t, models.IsNotFound(err))
	require.Equal(t, models.EventTaskDeleted, pub.events[len(pub.events)-1].event.Kind)
}

func TestAssignTaskValidatesMembership(t *testing.T) {
	svc, taskRepo, teamRepo, roles, _ := newTaskServiceForTest()
	grantRole(roles, "team1", "alice", models.RoleEditor)
	ctx := context.Background()

	task, err := svc.CreateSharedTask(ctx, "team1", TaskInput{Title: "t"}, "alice", "")
	require.NoError(t, err)

	err = svc.AssignTask(ctx, task.ID.Hex(), "outsider", "alice", "")
	require.True(t, models.IsValidation(err))

	seedMember(t, teamRepo, "team1", "carol", models.RoleViewer)
	require.NoError(t, svc.AssignTask(ctx, task.ID.Hex(), "carol", "alice", ""))

	stored, err := taskRepo.GetTaskByID(ctx, task.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, "carol", stored.AssignedTo)

	// Empty member ID unassigns.
	require.NoError(t, svc.AssignTask(ctx, task.ID.Hex(), "", "alice", ""))
	stored, err = taskRepo.GetTaskByID(ctx, task.ID.Hex())
	require.NoError(t, err)
	require.Empty(t, stored.AssignedTo)
}

func TestAddCommentViewerAllowed(t *testing.T) {
	svc, taskRepo, _, roles, pub := newTaskServiceForTest()
	grantRole(roles, "team1", "alice", models.RoleEditor)
	grantRole(roles, "team1", "bob", models.RoleViewer)
	ctx := context.Background()

	task, err := svc.CreateSharedTask(ctx, "team1", TaskInput{Title: "t"}, "alice", "")
	require.NoError(t, err)

	before := time.Now()
	comment, err := svc.AddComment(ctx, task.ID.Hex(), "looks good", "bob", "client-3")
	require.NoError(t, err)
	require.Equal(t, "bob", comment.AuthorID)
	require.False(t, comment.CreatedAt.Before(before), "timestamp is server-assigned")

	stored, err := taskRepo.GetTaskByID(ctx, task.ID.Hex())
	require.NoError(t, err)
	require.Len(t, stored.Comments, 1)

	last := pub.events[len(pub.events)-1]
	require.Equal(t, models.EventCommentAdded, last.event.Kind)
	require.Equal(t, "client-3", last.exclude)
}

func TestAddCommentEmptyTextRejected(t *testing.T) {
	svc, _, _, roles, _ := newTaskServiceForTest()
	grantRole(roles, "team1", "bob", models.RoleViewer)

	task := &models.SharedTask{TeamID: "team1", Title: "t"}
	require.NoError(t, svc.taskRepo.InsertTask(context.Background(), task))

	_, err := svc.AddComment(context.Background(), task.ID.Hex(), "", "bob", "")
	require.True(t, models.IsValidation(err))
}

func TestListTasksForTeamMembersOnly(t *testing.T) {
	svc, _, _, roles, _ := newTaskServiceForTest()
	grantRole(roles, "team1", "alice", models.RoleEditor)

	_, err := svc.CreateSharedTask(context.Background(), "team1", TaskInput{Title: "a"}, "alice", "")
	require.NoError(t, err)
	_, err = svc.CreateSharedTask(context.Background(), "team1", TaskInput{Title: "b"}, "alice", "")
	require.NoError(t, err)

	tasks, err := svc.ListTasksForTeam(context.Background(), "team1", "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	_, err = svc.ListTasksForTeam(context.Background(), "team1", "stranger")
	require.True(t, models.IsAuthorization(err))
}
