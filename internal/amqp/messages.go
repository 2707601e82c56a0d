package amqp

import (
	"encoding/json"
	"time"
)

// RecordEvent announces a change to a stored record. It carries only
// the identity of the change; the worker appends it to the audit trail
// without fetching the record back.
type RecordEvent struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEvent creates an event stamped with the current time.
func NewRecordEvent(entity, id, action string) *RecordEvent {
	return &RecordEvent{
		Entity:    entity,
		ID:        id,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
