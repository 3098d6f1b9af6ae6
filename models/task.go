package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "Not Started"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) IsValid() bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusCompleted
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

func (p TaskPriority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Comment is append-only; once posted it is never edited or removed.
type Comment struct {
	AuthorID  string    `json:"authorId" bson:"author_id"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// SharedTask is a task scoped to a team and visible to all its members.
// TeamID never changes after creation.
type SharedTask struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TeamID      string             `json:"teamId" bson:"team_id"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Status      TaskStatus         `json:"status" bson:"status"`
	Priority    TaskPriority       `json:"priority" bson:"priority"`
	DueDate     time.Time          `json:"dueDate" bson:"due_date"`
	Workplace   string             `json:"workplace" bson:"workplace"`
	AssignedTo  string             `json:"assignedTo,omitempty" bson:"assigned_to,omitempty"`
	Comments    []Comment          `json:"comments" bson:"comments"`
}
