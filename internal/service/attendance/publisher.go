package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/sse"
)

// EventMessage is the wire form of a committed event on the live feed and the broker.
type EventMessage struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	EventType    string    `json:"event_type"`
	Timestamp    time.Time `json:"timestamp"`
	WorkDate     string    `json:"work_date"`
	WorkedHours  *string   `json:"worked_hours,omitempty"`
}

func NewEventMessage(event attendance.Event, employeeName string) EventMessage {
	msg := EventMessage{
		ID:           event.ID,
		EmployeeID:   event.EmployeeID,
		EmployeeName: employeeName,
		EventType:    string(event.Type),
		Timestamp:    event.Timestamp,
		WorkDate:     event.WorkDate.Format("2006-01-02"),
	}
	if event.WorkedHours != nil {
		h := event.WorkedHours.StringFixed(2)
		msg.WorkedHours = &h
	}
	return msg
}

type feedPublisher struct {
	hub *sse.Hub
}

// NewFeedPublisher pushes events to the attendance topic and the employee's own topic.
func NewFeedPublisher(hub *sse.Hub) attendance.Publisher {
	return &feedPublisher{hub: hub}
}

func (p *feedPublisher) Publish(ctx context.Context, event attendance.Event, employeeName string) error {
	p.hub.PublishToMany(
		[]string{sse.TopicAttendance, sse.EmployeeTopic(event.EmployeeID)},
		sse.Event{Event: "attendance", Data: NewEventMessage(event, employeeName)},
	)
	return nil
}

// RecordProducer is satisfied by the Kafka producer.
type RecordProducer interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type brokerPublisher struct {
	producer RecordProducer
}

// NewBrokerPublisher keys records by employee ID so one employee's events stay ordered.
func NewBrokerPublisher(producer RecordProducer) attendance.Publisher {
	return &brokerPublisher{producer: producer}
}

func (p *brokerPublisher) Publish(ctx context.Context, event attendance.Event, employeeName string) error {
	value, err := json.Marshal(NewEventMessage(event, employeeName))
	if err != nil {
		return fmt.Errorf("encode attendance event: %w", err)
	}
	return p.producer.Publish(ctx, event.EmployeeID, value)
}

type namedPublisher struct {
	name string
	attendance.Publisher
}

// Publishers fans out to every sink and counts failures per sink.
type Publishers struct {
	sinks   []namedPublisher
	metrics *metrics.Metrics
}

func NewPublishers(m *metrics.Metrics) *Publishers {
	return &Publishers{metrics: m}
}

func (p *Publishers) Add(name string, publisher attendance.Publisher) *Publishers {
	p.sinks = append(p.sinks, namedPublisher{name: name, Publisher: publisher})
	return p
}

func (p *Publishers) Publish(ctx context.Context, event attendance.Event, employeeName string) error {
	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event, employeeName); err != nil {
			p.metrics.IncrementPublishFailure(sink.name)
			errs = append(errs, fmt.Errorf("%s: %w", sink.name, err))
		}
	}
	return errors.Join(errs...)
}
