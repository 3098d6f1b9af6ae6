package models

import "time"

type EventKind string

const (
	EventTeamUpdated       EventKind = "team_updated"
	EventMemberAdded       EventKind = "member_added"
	EventMemberRoleChanged EventKind = "member_role_changed"
	EventMemberRemoved     EventKind = "member_removed"
	EventTaskCreated       EventKind = "task_created"
	EventTaskUpdated       EventKind = "task_updated"
	EventTaskDeleted       EventKind = "task_deleted"
	EventCommentAdded      EventKind = "comment_added"
)

// Event describes one mutation on a team's shared state. Receivers treat it
// as a hint to re-fetch authoritative state, never as the record itself.
type Event struct {
	Kind      EventKind         `json:"kind"`
	TeamID    string            `json:"teamId"`
	RecordID  string            `json:"recordId"`
	ActorID   string            `json:"actorId"`
	Diff      map[string]string `json:"diff,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
