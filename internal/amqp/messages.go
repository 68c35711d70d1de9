package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried in the envelope's Type field.
const (
	TypeDebtSync   = "debt.sync"
	TypeDebtDelete = "debt.delete"
)

// Envelope wraps every queue message so consumers can dispatch on Type
// before decoding the payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// DebtSyncMessage asks the worker to export one debt record. It carries only
// the ID and version; the worker fetches the full record from the database.
type DebtSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// DebtDeleteMessage asks the worker to remove a debt row from the export.
type DebtDeleteMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDebtSyncMessage creates a new sync message with just ID and version
func NewDebtSyncMessage(id, version int64) *DebtSyncMessage {
	return &DebtSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// NewDebtDeleteMessage creates a new delete message.
func NewDebtDeleteMessage(id int64, name string) *DebtDeleteMessage {
	return &DebtDeleteMessage{
		ID:        id,
		Name:      name,
		Timestamp: time.Now(),
	}
}

// wrap encodes a payload inside a typed envelope.
func wrap(msgType string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: body})
}

// ToJSON converts the message to envelope JSON bytes
func (m *DebtSyncMessage) ToJSON() ([]byte, error) {
	return wrap(TypeDebtSync, m)
}

// ToJSON converts the message to envelope JSON bytes
func (m *DebtDeleteMessage) ToJSON() ([]byte, error) {
	return wrap(TypeDebtDelete, m)
}

// ParseEnvelope decodes the outer envelope from raw bytes.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// DebtSyncFromEnvelope decodes a sync payload.
func DebtSyncFromEnvelope(env *Envelope) (*DebtSyncMessage, error) {
	var msg DebtSyncMessage
	if err := json.Unmarshal(env.Payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DebtDeleteFromEnvelope decodes a delete payload.
func DebtDeleteFromEnvelope(env *Envelope) (*DebtDeleteMessage, error) {
	var msg DebtDeleteMessage
	if err := json.Unmarshal(env.Payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
