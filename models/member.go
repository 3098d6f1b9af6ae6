package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Role string

const (
	RoleOwner  Role = "Owner"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
)

// IsValid reports whether the role is one of the three known levels.
func (r Role) IsValid() bool {
	return r == RoleOwner || r == RoleEditor || r == RoleViewer
}

// CanWrite reports whether the role may create or modify shared tasks.
func (r Role) CanWrite() bool {
	return r == RoleOwner || r == RoleEditor
}

// Member is one (team, user, role) membership row. Name and Avatar are
// denormalized from the identity provider at add time.
type Member struct {
	ID     primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TeamID string             `json:"teamId" bson:"team_id"`
	UserID string             `json:"userId" bson:"user_id"`
	Name   string             `json:"name" bson:"name"`
	Avatar string             `json:"avatar" bson:"avatar"`
	Role   Role               `json:"role" bson:"role"`
}
