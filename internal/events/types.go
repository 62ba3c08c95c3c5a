package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// Event names published by the inventory service.
const (
	NameNodeCreated                = "node-created"
	NameNodeDeleted                = "node-deleted"
	NameNodeStateChanged           = "node-state-changed"
	NameNodeTagsChanged            = "node-tags-changed"
	NameSoftwareProfileTagsChanged = "software-profile-tags-changed"
	NameHardwareProfileTagsChanged = "hardware-profile-tags-changed"
)

// Event is the wire envelope carried on the bus and over the websocket feed.
// Payload is the decoded form of one of the typed event structs below.
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

// NodeStateChanged reports a node lifecycle transition.
type NodeStateChanged struct {
	Name          string `mapstructure:"name"`
	State         string `mapstructure:"state"`
	PreviousState string `mapstructure:"previous_state"`
}

// NodeTagsChanged reports a change to a node's tag map.
type NodeTagsChanged struct {
	Name         string            `mapstructure:"name"`
	Tags         map[string]string `mapstructure:"tags"`
	PreviousTags map[string]string `mapstructure:"previous_tags"`
}

// SoftwareProfileTagsChanged reports a change to a software profile's tags.
type SoftwareProfileTagsChanged struct {
	Name         string            `mapstructure:"name"`
	Tags         map[string]string `mapstructure:"tags"`
	PreviousTags map[string]string `mapstructure:"previous_tags"`
}

// HardwareProfileTagsChanged reports a change to a hardware profile's tags.
type HardwareProfileTagsChanged struct {
	Name         string            `mapstructure:"name"`
	Tags         map[string]string `mapstructure:"tags"`
	PreviousTags map[string]string `mapstructure:"previous_tags"`
}

// New builds an envelope around a typed payload struct. The payload is
// flattened to a map so subscribers can consume it without importing the
// concrete type.
func New(name string, payload any) (Event, error) {
	body := map[string]any{}
	if payload != nil {
		if err := mapstructure.Decode(payload, &body); err != nil {
			return Event{}, fmt.Errorf("encode %s payload: %w", name, err)
		}
	}
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		Timestamp: time.Now().UTC(),
		Payload:   body,
	}, nil
}

// DecodePayload unpacks the envelope payload into a typed event struct.
func DecodePayload(e Event, out any) error {
	if err := mapstructure.Decode(e.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Name, err)
	}
	return nil
}
