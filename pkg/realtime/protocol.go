package realtime

import (
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	EventJoinRoom       = "join_room"
	EventJoinedRoom     = "joined_room"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventMessageSent    = "message_sent"
	EventError          = "error"
)

// Envelope is an inbound frame. Data stays raw until the event handler
// parses it into its own input type.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type ErrorData struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

type JoinedRoomData struct {
	ConversationID string `json:"conversationId"`
}

type ReceiveMessageData struct {
	Message        any    `json:"message"`
	ConversationID string `json:"conversationId"`
}

type MessageSentData struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
}

// Encode marshals an outbound {"event","data"} frame.
func Encode(event string, data any) ([]byte, error) {
	b, err := json.Marshal(frame{Event: event, Data: data})
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", event)
	}
	return b, nil
}

func decodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, errors.Wrap(err, "decode envelope")
	}
	return env, nil
}
