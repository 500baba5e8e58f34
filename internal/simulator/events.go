package simulator

import (
	"encoding/json"
	"fmt"

	"github.com/chrisdamba/campussim/internal/models"
	"github.com/google/uuid"
	"github.com/xitongsys/parquet-go/schema"
)

// EventRecord is the flat wire form of a LogEntry shared by every sink.
type EventRecord struct {
	EventID     string  `json:"eventId" parquet:"name=eventId,type=BYTE_ARRAY,convertedtype=UTF8"`
	RunID       string  `json:"runId" parquet:"name=runId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Timestamp   int64   `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	Minutes     float64 `json:"minutes" parquet:"name=minutes,type=DOUBLE"`
	Clock       string  `json:"clock" parquet:"name=clock,type=BYTE_ARRAY,convertedtype=UTF8"`
	EventType   string  `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	StudentID   string  `json:"studentId" parquet:"name=studentId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Class       string  `json:"class,omitempty" parquet:"name=class,type=BYTE_ARRAY,convertedtype=UTF8"`
	Location    string  `json:"location,omitempty" parquet:"name=location,type=BYTE_ARRAY,convertedtype=UTF8"`
	EdgeID      int64   `json:"edgeId" parquet:"name=edgeId,type=INT64"`
	Description string  `json:"description" parquet:"name=description,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// GetSchema returns the parquet schema of a topic.
func GetSchema(topic string) (*schema.SchemaHandler, error) {
	switch topic {
	case models.TopicMovement, models.TopicActivity, models.TopicQueue:
		sh, err := schema.NewSchemaHandlerFromStruct(new(EventRecord))
		if err != nil {
			return nil, fmt.Errorf("schema for %s: %w", topic, err)
		}
		return sh, nil
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
}

func (r *Runner) serializeEvent(entry LogEntry) (models.EventMessage, error) {
	record := EventRecord{
		EventID:     uuid.NewString(),
		RunID:       r.RunID,
		Timestamp:   r.Config.Timestamp(entry.Minutes).Unix(),
		Minutes:     entry.Minutes,
		Clock:       entry.Clock,
		EventType:   entry.Kind,
		StudentID:   entry.StudentID,
		Class:       entry.Class,
		Location:    entry.Location,
		EdgeID:      int64(entry.Edge),
		Description: entry.Description,
	}
	msg, err := json.Marshal(record)
	if err != nil {
		return models.EventMessage{}, fmt.Errorf("failed to marshal %s event: %w", entry.Kind, err)
	}
	return models.EventMessage{Topic: models.TopicFor(entry.Kind), Message: msg}, nil
}
