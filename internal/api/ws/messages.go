package ws

import (
	"time"

	"github.com/google/uuid"
)

// Inbound event names. Room management and authentication are handled by the
// gateway itself; mutation events are forwarded to the coordinator.
const (
	inAuthenticate = "authenticate"
	inJoinBoard    = "joinBoard"
	inLeaveBoard   = "leaveBoard"
	inJoinTask     = "joinTask"
	inLeaveTask    = "leaveTask"
	inJoinUser     = "joinUser"
	inCreateTask   = "createTask"
	inUpdateTask   = "updateTask"
	inEditTask     = "editTask"
	inDeleteTask   = "deleteTask"
	inAssignTask   = "taskAssigned"
	inAddComment   = "commentAdded"

	// Legacy client-side relay events. Invitations broadcast from the invite
	// operation itself, so client copies are dropped rather than re-emitted.
	inInviteSent        = "inviteSent"
	inCollaboratorAdded = "collaboratorAdded"
)

type authenticatePayload struct {
	Token string `json:"token"`
}

type boardRoomPayload struct {
	BoardID uuid.UUID `json:"boardId"`
}

type taskRoomPayload struct {
	TaskID uuid.UUID `json:"taskId"`
}

type createTaskPayload struct {
	BoardID     uuid.UUID  `json:"boardId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags"`
	AssignedTo  *uuid.UUID `json:"assignedTo"`
}

type patchTaskPayload struct {
	TaskID      uuid.UUID  `json:"taskId"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        *[]string  `json:"tags"`
	AssignedTo  *uuid.UUID `json:"assignedTo"`
}

type assignTaskPayload struct {
	TaskID     uuid.UUID  `json:"taskId"`
	AssignedTo *uuid.UUID `json:"assignedTo"`
}

type deleteTaskPayload struct {
	TaskID uuid.UUID `json:"taskId"`
}

type addCommentPayload struct {
	TaskID  uuid.UUID `json:"taskId"`
	Content string    `json:"content"`
}
