package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Metadata keys set on every message built by NewMessage.
const (
	MetaEventVersion = "event_version"
	MetaContentType  = "content_type"
)

// NewMessage encodes payload as JSON. id becomes the message UUID so
// consumers can deduplicate; an empty id gets a fresh one. The trace context
// of ctx travels in the metadata.
func NewMessage(ctx context.Context, id string, version int, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: encode payload: %w", err)
	}
	if id == "" {
		id = watermill.NewUUID()
	}
	msg := message.NewMessage(id, body)
	msg.Metadata.Set(MetaEventVersion, strconv.Itoa(version))
	msg.Metadata.Set(MetaContentType, "application/json")
	injectTrace(ctx, msg)
	return msg, nil
}

// Decode unmarshals the JSON payload of msg into a T.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("events: decode %s: %w", msg.UUID, err)
	}
	return v, nil
}

// Version returns the event_version metadata, or 0 if absent or malformed.
func Version(msg *message.Message) int {
	v, err := strconv.Atoi(msg.Metadata.Get(MetaEventVersion))
	if err != nil {
		return 0
	}
	return v
}

func injectTrace(ctx context.Context, msg *message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
}

func extractTrace(ctx context.Context, msg *message.Message) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		carrier[k] = v
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
