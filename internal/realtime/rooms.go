// Package realtime implements the room-based synchronization core: a room
// registry of live sessions, a mutation coordinator that validates and
// persists board/task/comment changes, and a dispatcher that fans the
// resulting events out to every session subscribed to the affected rooms.
package realtime

import "github.com/google/uuid"

// BoardRoom returns the room key scoping events to a board.
func BoardRoom(boardID uuid.UUID) string {
	return "board:" + boardID.String()
}

// TaskRoom returns the room key scoping events to a task's comment thread.
func TaskRoom(taskID uuid.UUID) string {
	return "task:" + taskID.String()
}

// UserRoom returns the room key for events addressed to a single user, such
// as assignment notifications and invites.
func UserRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}
