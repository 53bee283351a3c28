package realtime

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"PetPal/pkg/logger"
	"PetPal/pkg/metrics"
	"PetPal/pkg/services"
	"PetPal/pkg/validation"
)

type ConversationService interface {
	GetConversationWithMessages(ctx context.Context, conversationID string, requesterID uint) (*services.ConversationDetail, error)
	CreateMessage(ctx context.Context, conversationID string, senderID uint, content string) (*services.MessageView, error)
}

// Gateway turns inbound socket events into service calls and routes the
// results through the hub.
type Gateway struct {
	log     *slog.Logger
	hub     *Hub
	convs   ConversationService
	metrics *metrics.Metrics
}

func NewGateway(log *slog.Logger, hub *Hub, convs ConversationService, m *metrics.Metrics) *Gateway {
	return &Gateway{log: log, hub: hub, convs: convs, metrics: m}
}

// Serve registers c with the hub and blocks until the connection ends.
func (g *Gateway) Serve(ctx context.Context, c *Client) {
	if err := g.hub.Register(c); err != nil {
		c.Close()
		return
	}
	defer g.hub.Unregister(c)

	ctx = logger.WithContext(ctx, c.log)
	c.log.Info("realtime - serve - session opened")
	c.Run(ctx, func(raw []byte) { g.Dispatch(ctx, c, raw) })
	c.log.Info("realtime - serve - session closed")
}

// Dispatch handles one inbound frame for s. Events of one session are
// dispatched sequentially by its read loop.
func (g *Gateway) Dispatch(ctx context.Context, s Session, raw []byte) {
	env, err := decodeEnvelope(raw)
	if err != nil || env.Event == "" {
		g.sendError(s, "", "malformed frame: expected {\"event\": string, \"data\": any}")
		return
	}
	switch env.Event {
	case EventJoinRoom:
		g.joinRoom(ctx, s, env)
	case EventSendMessage:
		g.sendMessage(ctx, s, env)
	default:
		g.sendError(s, env.Event, "unknown event")
	}
}

func (g *Gateway) joinRoom(ctx context.Context, s Session, env Envelope) {
	conversationID, err := validation.ParseJoinRoom(env.Data)
	if err != nil {
		g.sendError(s, EventJoinRoom, g.publicMessage(ctx, EventJoinRoom, err))
		return
	}
	if _, err := g.convs.GetConversationWithMessages(ctx, conversationID, s.UserID()); err != nil {
		g.sendError(s, EventJoinRoom, g.publicMessage(ctx, EventJoinRoom, err))
		return
	}

	if prev := g.hub.Join(s, conversationID); prev != "" && prev != conversationID {
		logger.FromContext(ctx).Debug("realtime - join - left previous room", "room", prev)
	}
	g.metrics.RoomJoined()
	g.send(s, EventJoinedRoom, JoinedRoomData{ConversationID: conversationID})
}

func (g *Gateway) sendMessage(ctx context.Context, s Session, env Envelope) {
	in, err := validation.ParseSendMessage(env.Data)
	if err != nil {
		g.sendError(s, EventSendMessage, g.publicMessage(ctx, EventSendMessage, err))
		return
	}

	// The write must outlive the sender's connection.
	msg, err := g.convs.CreateMessage(context.WithoutCancel(ctx), in.ConversationID, s.UserID(), in.Content)
	if err != nil {
		g.sendError(s, EventSendMessage, g.publicMessage(ctx, EventSendMessage, err))
		return
	}
	g.metrics.MessageCreated("socket")

	g.BroadcastMessage(ctx, msg)
	g.send(s, EventMessageSent, MessageSentData{MessageID: msg.ID, ConversationID: msg.ConversationID})
}

// BroadcastMessage sends receive_message to every session in the message's
// conversation room. REST sends use it too.
func (g *Gateway) BroadcastMessage(ctx context.Context, msg *services.MessageView) {
	payload, err := Encode(EventReceiveMessage, ReceiveMessageData{Message: msg, ConversationID: msg.ConversationID})
	if err != nil {
		logger.FromContext(ctx).Error("realtime - broadcast - encode failed", "error", err)
		return
	}
	n := g.hub.Broadcast(msg.ConversationID, payload)
	logger.FromContext(ctx).Debug("realtime - broadcast - delivered", "conversation_id", msg.ConversationID, "sessions", n)
}

func (g *Gateway) send(s Session, event string, data any) {
	payload, err := Encode(event, data)
	if err != nil {
		g.log.Error("realtime - send - encode failed", "event", event, "error", err)
		return
	}
	if !s.Send(payload) {
		g.metrics.FrameDropped()
	}
}

func (g *Gateway) sendError(s Session, event, message string) {
	g.metrics.SocketError(event)
	g.send(s, EventError, ErrorData{Event: event, Message: message})
}

// publicMessage maps a service error to a client-safe message and logs the
// ones that are not the client's fault.
func (g *Gateway) publicMessage(ctx context.Context, event string, err error) string {
	if verr, ok := services.IsValidation(err); ok {
		return verr.Message
	}
	switch {
	case errors.Is(err, services.ErrNotFoundOrForbidden):
		return services.ErrNotFoundOrForbidden.Error()
	case errors.Is(err, services.ErrUnauthenticated):
		return err.Error()
	}
	logger.FromContext(ctx).Error("realtime - "+event+" - internal error", "error", err)
	return "internal error"
}
