package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope frames every message on the wire as {"t": type, "p": payload}
type Envelope struct {
	T MessageType     `json:"t"`
	P json.RawMessage `json:"p"`
}

// ErrEmptyMessage is returned when decoding zero bytes
var ErrEmptyMessage = errors.New("empty message")

// NewEnvelope wraps a payload without serialising the envelope itself
func NewEnvelope(t MessageType, payload any) (Envelope, error) {
	if t == "" {
		return Envelope{}, fmt.Errorf("message type is empty")
	}
	if payload == nil {
		payload = struct{}{}
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Envelope{T: t, P: pb}, nil
}

// Encode serialises a typed payload inside an envelope
func Encode(t MessageType, payload any) ([]byte, error) {
	env, err := NewEnvelope(t, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// DecodeEnvelope parses the envelope, leaving the payload raw
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyMessage
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.T == "" {
		return Envelope{}, fmt.Errorf("envelope has no type")
	}
	return env, nil
}

// DecodePayload unmarshals the payload of env into T
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("decode %s payload: %w", env.T, err)
	}
	return out, nil
}
