package battle

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/medarena/medquiz/pkg/http/errors"
	"github.com/medarena/medquiz/pkg/http/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is enforced by the gateway in front of this service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades battle WebSocket connections and routes protocol messages
// into the service.
type Handler struct {
	service *Service
	hub     *ws.Hub
	logger  zerolog.Logger
}

// NewHandler creates the battle WebSocket handler.
func NewHandler(service *Service, hub *ws.Hub, logger zerolog.Logger) *Handler {
	return &Handler{service: service, hub: hub, logger: logger}
}

// HandleWebSocket upgrades the HTTP request and runs the connection's read
// loop until the peer disconnects.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	connID := uuid.New()
	conn := ws.NewConnection(wsConn, h.logger.With().Str("conn_id", connID.String()).Logger())
	h.hub.Register(connID, conn)

	go conn.WritePump()
	conn.ReadPump(func(msg ws.Message) error {
		return h.route(r.Context(), connID, msg)
	})

	h.service.Disconnect(connID)
	h.hub.Unregister(connID)
}

func (h *Handler) route(ctx context.Context, connID uuid.UUID, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeRegister:
		var payload ws.RegisterPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.invalidPayload(connID, msg.Type)
		}
		return h.service.Register(connID, payload)

	case ws.TypeJoinQueue:
		return h.service.JoinQueue(ctx, connID)

	case ws.TypeLeaveQueue:
		return h.service.LeaveQueue(connID)

	case ws.TypeCreatePrivateRoom:
		return h.service.CreatePrivateRoom(connID)

	case ws.TypeJoinPrivateRoom:
		var payload ws.JoinPrivateRoomPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.invalidPayload(connID, msg.Type)
		}
		return h.service.JoinPrivateRoom(ctx, connID, payload.RoomCode)

	case ws.TypePlayerReady:
		var payload ws.PlayerReadyPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.invalidPayload(connID, msg.Type)
		}
		return h.service.PlayerReady(connID, payload.RoomID)

	case ws.TypeSubmitAnswer:
		var payload ws.SubmitAnswerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.invalidPayload(connID, msg.Type)
		}
		return h.service.SubmitAnswer(connID, payload)

	default:
		return h.hub.Send(connID, ws.NewMessage(ws.TypeError, ws.ErrorPayload{
			Code:    httperrors.ErrCodeUnknownMessageType,
			Message: "unknown message type: " + msg.Type,
		}))
	}
}

func (h *Handler) invalidPayload(connID uuid.UUID, msgType string) error {
	return h.hub.Send(connID, ws.NewMessage(ws.TypeError, ws.ErrorPayload{
		Code:    httperrors.ErrCodeInvalidPayload,
		Message: "invalid payload for " + msgType,
	}))
}
