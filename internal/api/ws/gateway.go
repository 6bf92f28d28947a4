// Package ws bridges WebSocket connections to the realtime core. Each
// connection gets one realtime.Session; inbound envelopes either manage room
// membership or forward a mutation intent to the coordinator, and everything
// the dispatcher routes to the session is written back out.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quickcollab/quickcollab/internal/auth"
	"github.com/quickcollab/quickcollab/internal/domain"
	"github.com/quickcollab/quickcollab/internal/realtime"
)

// Mutator is the subset of coordinator operations reachable over the socket.
// *realtime.Coordinator satisfies this interface.
type Mutator interface {
	CreateTask(ctx context.Context, actor uuid.UUID, in realtime.CreateTaskInput) (*realtime.TaskView, error)
	UpdateTask(ctx context.Context, actor, taskID uuid.UUID, patch realtime.TaskPatch) (*realtime.TaskView, error)
	EditTask(ctx context.Context, actor, taskID uuid.UUID, patch realtime.TaskPatch) (*realtime.TaskView, error)
	AssignTask(ctx context.Context, actor, taskID uuid.UUID, assignee *uuid.UUID) (*realtime.TaskView, error)
	DeleteTask(ctx context.Context, actor, taskID uuid.UUID) error
	CreateComment(ctx context.Context, actor uuid.UUID, in realtime.CreateCommentInput) (*realtime.CommentView, error)
}

type Gateway struct {
	registry  *realtime.Registry
	mut       Mutator
	jwtSecret string
	buffer    int
}

func NewGateway(registry *realtime.Registry, mut Mutator, jwtSecret string, buffer int) *Gateway {
	return &Gateway{
		registry:  registry,
		mut:       mut,
		jwtSecret: jwtSecret,
		buffer:    buffer,
	}
}

// Serve upgrades the request and runs the session until the client leaves.
// Connections start anonymous; a token supplied via the Authorization header,
// the token query parameter, or a later authenticate event upgrades them.
func (g *Gateway) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	session := realtime.NewSession(g.registry, g.buffer)
	defer session.Close()

	if tok := tokenFrom(r); tok != "" {
		if userID, err := auth.ValidateToken(g.jwtSecret, tok); err == nil {
			_ = session.Authenticate(userID)
		} else {
			log.Debug().Err(err).Str("session_id", session.ID().String()).Msg("ws: handshake token rejected")
		}
	}

	ctx := r.Context()

	// Writer: drain the session's outbound queue onto the wire. Exits when
	// the session closes or the write fails.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for env := range session.Outbound() {
			buf, err := json.Marshal(env)
			if err != nil {
				log.Error().Err(err).Str("event", env.Event).Msg("ws: marshal envelope")
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, buf); err != nil {
				log.Debug().Err(err).Msg("ws: write")
				return
			}
		}
		_ = conn.Close(websocket.StatusNormalClosure, "session closed")
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		g.handleMessage(ctx, session, data)
	}

	session.Close()
	<-writeDone
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return h[7:]
	}
	return r.URL.Query().Get("token")
}

// handleMessage decodes one inbound envelope and applies it. Failures are
// logged and swallowed: a failed mutation emits nothing, matching the
// all-or-nothing broadcast contract.
func (g *Gateway) handleMessage(ctx context.Context, session *realtime.Session, data []byte) {
	var env realtime.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Debug().Err(err).Str("session_id", session.ID().String()).Msg("ws: malformed envelope")
		return
	}

	switch env.Event {
	case inAuthenticate:
		g.handleAuthenticate(session, env.Data)
	case inJoinBoard, inLeaveBoard:
		g.handleBoardRoom(session, env.Event, env.Data)
	case inJoinTask, inLeaveTask:
		g.handleTaskRoom(session, env.Event, env.Data)
	case inJoinUser:
		g.handleJoinUser(session)
	case inCreateTask, inUpdateTask, inEditTask, inDeleteTask, inAssignTask, inAddComment:
		g.handleMutation(ctx, session, env.Event, env.Data)
	case inInviteSent, inCollaboratorAdded:
		// Invite notifications originate server-side; a client copy is never
		// relayed, or any client could forge invitations into other rooms.
		log.Debug().Str("event", env.Event).Str("session_id", session.ID().String()).Msg("ws: client relay dropped")
	default:
		log.Debug().Str("event", env.Event).Msg("ws: unknown event")
	}
}

func (g *Gateway) handleAuthenticate(session *realtime.Session, data json.RawMessage) {
	var p authenticatePayload
	if err := json.Unmarshal(data, &p); err != nil || p.Token == "" {
		log.Debug().Str("session_id", session.ID().String()).Msg("ws: authenticate without token")
		return
	}

	userID, err := auth.ValidateToken(g.jwtSecret, p.Token)
	if err != nil {
		log.Debug().Err(err).Str("session_id", session.ID().String()).Msg("ws: authenticate rejected")
		return
	}

	if err := session.Authenticate(userID); err != nil {
		log.Debug().Err(err).Str("session_id", session.ID().String()).Msg("ws: authenticate")
	}
}

func (g *Gateway) handleBoardRoom(session *realtime.Session, event string, data json.RawMessage) {
	var p boardRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.BoardID == uuid.Nil {
		log.Debug().Str("event", event).Msg("ws: missing board id")
		return
	}

	room := realtime.BoardRoom(p.BoardID)
	var err error
	if event == inJoinBoard {
		err = session.Join(room)
	} else {
		err = session.Leave(room)
	}
	if err != nil {
		log.Debug().Err(err).Str("room", room).Msg("ws: room change")
	}
}

func (g *Gateway) handleTaskRoom(session *realtime.Session, event string, data json.RawMessage) {
	var p taskRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.TaskID == uuid.Nil {
		log.Debug().Str("event", event).Msg("ws: missing task id")
		return
	}

	room := realtime.TaskRoom(p.TaskID)
	var err error
	if event == inJoinTask {
		err = session.Join(room)
	} else {
		err = session.Leave(room)
	}
	if err != nil {
		log.Debug().Err(err).Str("room", room).Msg("ws: room change")
	}
}

// handleJoinUser subscribes the session to its own notification room. The
// room is derived from the authenticated principal, never from the payload,
// so a client cannot read another user's notifications.
func (g *Gateway) handleJoinUser(session *realtime.Session) {
	userID, ok := session.Principal()
	if !ok {
		log.Debug().Str("session_id", session.ID().String()).Msg("ws: joinUser requires authentication")
		return
	}

	if err := session.Join(realtime.UserRoom(userID)); err != nil {
		log.Debug().Err(err).Str("session_id", session.ID().String()).Msg("ws: joinUser")
	}
}

func (g *Gateway) handleMutation(ctx context.Context, session *realtime.Session, event string, data json.RawMessage) {
	actor, ok := session.Principal()
	if !ok {
		log.Warn().Str("event", event).Str("session_id", session.ID().String()).Msg("ws: mutation from unauthenticated session")
		return
	}

	var err error
	switch event {
	case inCreateTask:
		var p createTaskPayload
		if err = json.Unmarshal(data, &p); err == nil {
			_, err = g.mut.CreateTask(ctx, actor, realtime.CreateTaskInput{
				Title:       p.Title,
				Description: p.Description,
				Status:      domain.TaskStatus(p.Status),
				BoardID:     p.BoardID,
				DueDate:     p.DueDate,
				Tags:        p.Tags,
				AssignedTo:  p.AssignedTo,
			})
		}
	case inUpdateTask, inEditTask:
		var p patchTaskPayload
		if err = json.Unmarshal(data, &p); err == nil {
			patch := realtime.TaskPatch{
				Title:       p.Title,
				Description: p.Description,
				DueDate:     p.DueDate,
				Tags:        p.Tags,
				AssignedTo:  p.AssignedTo,
			}
			if p.Status != nil {
				status := domain.TaskStatus(*p.Status)
				patch.Status = &status
			}
			if event == inUpdateTask {
				_, err = g.mut.UpdateTask(ctx, actor, p.TaskID, patch)
			} else {
				_, err = g.mut.EditTask(ctx, actor, p.TaskID, patch)
			}
		}
	case inAssignTask:
		var p assignTaskPayload
		if err = json.Unmarshal(data, &p); err == nil {
			_, err = g.mut.AssignTask(ctx, actor, p.TaskID, p.AssignedTo)
		}
	case inDeleteTask:
		var p deleteTaskPayload
		if err = json.Unmarshal(data, &p); err == nil {
			err = g.mut.DeleteTask(ctx, actor, p.TaskID)
		}
	case inAddComment:
		var p addCommentPayload
		if err = json.Unmarshal(data, &p); err == nil {
			_, err = g.mut.CreateComment(ctx, actor, realtime.CreateCommentInput{
				Content: p.Content,
				TaskID:  p.TaskID,
			})
		}
	}

	if err != nil {
		log.Debug().Err(err).Str("event", event).Str("actor", actor.String()).Msg("ws: mutation failed")
	}
}
