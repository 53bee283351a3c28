// Package validation trims and checks inbound payloads for both transports.
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/leebenson/conform"
	"github.com/pkg/errors"
)

const MaxContentLength = 1000

// Error is a client-facing validation failure on a single field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func newError(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	once     sync.Once
	validate *validator.Validate
	trans    ut.Translator
)

func engine() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		english := en.New()
		trans, _ = ut.New(english, english).GetTranslator("en")
		if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
			panic(err)
		}
	})
	return validate, trans
}

// Struct trims every `conform` tagged field in place and then runs the
// `validate` tags. The first failing field is returned as *Error.
func Struct(s any) error {
	if err := conform.Strings(s); err != nil {
		return errors.Wrap(err, "conform")
	}
	v, tr := engine()
	return translate(v.Struct(s), tr)
}

func translate(err error, tr ut.Translator) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(err, "validate")
	}
	fe := verrs[0]
	return &Error{Field: fe.Field(), Message: fe.Translate(tr)}
}

// Content trims s and checks it is 1..MaxContentLength characters.
func Content(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	v, tr := engine()
	if err := v.Var(trimmed, fmt.Sprintf("required,max=%d", MaxContentLength)); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msg := verrs[0].Translate(tr)
			return "", &Error{Field: "content", Message: "content" + strings.TrimPrefix(msg, verrs[0].Field())}
		}
		return "", errors.Wrap(err, "validate content")
	}
	return trimmed, nil
}

type SendMessageInput struct {
	ConversationID string `json:"conversationId" conform:"trim" validate:"required,max=64"`
	Content        string `json:"content" conform:"trim" validate:"required,max=1000"`
}

type MessageBody struct {
	Content string `json:"content" conform:"trim" validate:"required,max=1000"`
}

type joinRoomInput struct {
	ConversationID string `json:"conversationId" conform:"trim" validate:"required,max=64"`
}

// ParseSendMessage decodes a socket send_message payload.
func ParseSendMessage(raw json.RawMessage) (*SendMessageInput, error) {
	var in SendMessageInput
	if err := decodeObject(raw, &in); err != nil {
		return nil, err
	}
	if err := Struct(&in); err != nil {
		return nil, err
	}
	return &in, nil
}

// ParseJoinRoom accepts either a bare conversation id string or
// {"conversationId": "..."}.
func ParseJoinRoom(raw json.RawMessage) (string, error) {
	var in joinRoomInput
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		in.ConversationID = id
	} else if err := decodeObject(raw, &in); err != nil {
		return "", err
	}
	if err := Struct(&in); err != nil {
		return "", err
	}
	return in.ConversationID, nil
}

func decodeObject(raw json.RawMessage, dst any) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed[0] != '{' {
		return newError("data", "data must be an object")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return newError(typeErr.Field, "%s must be a %s", typeErr.Field, typeErr.Type.Kind())
		}
		return newError("data", "data is malformed")
	}
	return nil
}
