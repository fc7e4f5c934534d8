package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"housebudget/internal/core"
)

// Message types carried in the "type" field of every body.
const (
	TypeLedgerChanged = "ledger.changed"
	TypeAlertRaised   = "alert.raised"
)

var ErrUnknownMessage = errors.New("unknown message type")

// LedgerChangedMessage announces a new ledger revision. Consumers reload the
// ledger from storage; the message carries no ledger data.
type LedgerChangedMessage struct {
	Type      string    `json:"type"`
	Revision  int64     `json:"revision"`
	Operation string    `json:"operation"`
	Month     string    `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertRaisedMessage announces a budget alert.
type AlertRaisedMessage struct {
	Type       string         `json:"type"`
	AlertID    string         `json:"alertId"`
	AlertType  core.AlertType `json:"alertType"`
	Severity   core.Severity  `json:"severity"`
	CategoryID string         `json:"categoryId,omitempty"`
	Message    string         `json:"message"`
	Timestamp  time.Time      `json:"timestamp"`
}

func NewLedgerChangedMessage(revision int64, op, month string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Type:      TypeLedgerChanged,
		Revision:  revision,
		Operation: op,
		Month:     month,
		Timestamp: time.Now().UTC(),
	}
}

func NewAlertRaisedMessage(a core.Alert) *AlertRaisedMessage {
	return &AlertRaisedMessage{
		Type:       TypeAlertRaised,
		AlertID:    a.ID,
		AlertType:  a.Type,
		Severity:   a.Severity,
		CategoryID: a.CategoryID,
		Message:    a.Message,
		Timestamp:  time.Now().UTC(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *AlertRaisedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage parses a body into *LedgerChangedMessage or
// *AlertRaisedMessage according to its type field.
func DecodeMessage(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch envelope.Type {
	case TypeLedgerChanged:
		var msg LedgerChangedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return &msg, nil
	case TypeAlertRaised:
		var msg AlertRaisedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return &msg, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, envelope.Type)
	}
}
