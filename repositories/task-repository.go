package repositories

import (
	"context"
	"errors"

	"nexus-project/collaboration-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTaskRepository persists shared tasks with their embedded comments.
type MongoTaskRepository struct {
	tasksCollection *mongo.Collection
}

func NewMongoTaskRepository(tasksCollection *mongo.Collection) *MongoTaskRepository {
	return &MongoTaskRepository{tasksCollection: tasksCollection}
}

func (r *MongoTaskRepository) InsertTask(ctx context.Context, task *models.SharedTask) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	result, err := r.tasksCollection.InsertOne(ctx, task)
	if err != nil {
		return storeErr("insert task", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoTaskRepository) GetTaskByID(ctx context.Context, taskID string) (*models.SharedTask, error) {
	objectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, models.NewValidationError("invalid task ID format: %s", taskID)
	}
	var task models.SharedTask
	if err := r.tasksCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "task", ID: taskID}
		}
		return nil, storeErr("get task", err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) GetTasksByTeam(ctx context.Context, teamID string) ([]models.SharedTask, error) {
	cursor, err := r.tasksCollection.Find(ctx, bson.M{"team_id": teamID})
	if err != nil {
		return nil, storeErr("find tasks for team", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.SharedTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, storeErr("decode tasks", err)
	}
	return tasks, nil
}

// UpdateTask writes the mutable fields in a single $set so readers never see
// a partially applied edit. TeamID and Comments are deliberately excluded.
func (r *MongoTaskRepository) UpdateTask(ctx context.Context, task *models.SharedTask) error {
	update := bson.M{"$set": bson.M{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"priority":    task.Priority,
		"due_date":    task.DueDate,
		"workplace":   task.Workplace,
	}}
	result, err := r.tasksCollection.UpdateOne(ctx, bson.M{"_id": task.ID}, update)
	if err != nil {
		return storeErr("update task", err)
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "task", ID: task.ID.Hex()}
	}
	return nil
}

func (r *MongoTaskRepository) SetAssignee(ctx context.Context, taskID, userID string) error {
	objectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return models.NewValidationError("invalid task ID format: %s", taskID)
	}
	var update bson.M
	if userID == "" {
		update = bson.M{"$unset": bson.M{"assigned_to": ""}}
	} else {
		update = bson.M{"$set": bson.M{"assigned_to": userID}}
	}
	result, err := r.tasksCollection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return storeErr("set assignee", err)
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "task", ID: taskID}
	}
	return nil
}

func (r *MongoTaskRepository) AppendComment(ctx context.Context, taskID string, comment models.Comment) error {
	objectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return models.NewValidationError("invalid task ID format: %s", taskID)
	}
	update := bson.M{"$push": bson.M{"comments": comment}}
	result, err := r.tasksCollection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return storeErr("append comment", err)
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "task", ID: taskID}
	}
	return nil
}

func (r *MongoTaskRepository) DeleteTask(ctx context.Context, taskID string) error {
	objectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return models.NewValidationError("invalid task ID format: %s", taskID)
	}
	result, err := r.tasksCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return storeErr("delete task", err)
	}
	if result.DeletedCount == 0 {
		return &models.NotFoundError{Resource: "task", ID: taskID}
	}
	return nil
}
