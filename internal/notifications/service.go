package notifications

import (
	"context"
	"fmt"

	"ingrezzi/internal/shared/config"
	"ingrezzi/pkg/logger"

	"github.com/google/uuid"
)

// Service is the notification facade the domain packages publish through.
// When Kafka is disabled the service degrades to a no-op so the calling
// flows never depend on the broker being up.
type Service interface {
	PublishTicketIssued(ctx context.Context, ticketID, eventID uuid.UUID, code, attendeeEmail, attendeeName, eventTitle string) error
	PublishTicketCheckedIn(ctx context.Context, ticketID, eventID uuid.UUID, code, attendeeEmail, attendeeName, eventTitle string) error
	PublishGrantCreated(ctx context.Context, eventID uuid.UUID, targetEmail, targetName, eventTitle string) error
	PublishGrantRevoked(ctx context.Context, eventID uuid.UUID, targetEmail, targetName, eventTitle string) error
	Start(ctx context.Context) error
	Close() error
}

type service struct {
	producer Producer
	consumer Consumer
	enabled  bool
	log      *logger.Logger
}

// NewService wires the Kafka producer and consumer from config.
func NewService(cfg *config.Config) (Service, error) {
	svc := &service{
		enabled: cfg.Kafka.Enabled,
		log:     logger.GetDefault(),
	}

	if !cfg.Kafka.Enabled {
		svc.log.InfoWithContext(context.Background(), "notifications disabled, running without Kafka", nil)
		return svc, nil
	}

	producer, err := NewKafkaProducer(DefaultProducerConfig(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification producer: %w", err)
	}
	svc.producer = producer

	consumer, err := NewKafkaConsumer(
		DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.NotificationTopic),
		NewLogDispatcher(),
	)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}
	svc.consumer = consumer

	return svc, nil
}

func (s *service) Start(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	return s.consumer.Start(ctx, 2)
}

func (s *service) Close() error {
	if !s.enabled {
		return nil
	}

	var firstErr error
	if err := s.consumer.Stop(); err != nil {
		firstErr = err
	}
	if err := s.producer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (s *service) PublishTicketIssued(ctx context.Context, ticketID, eventID uuid.UUID, code, attendeeEmail, attendeeName, eventTitle string) error {
	if !s.enabled {
		return nil
	}

	n := NewNotification(NotificationTypeTicketIssued, attendeeEmail, attendeeName)
	n.EventID = &eventID
	n.TicketID = &ticketID
	n.TicketCode = code
	n.Subject = fmt.Sprintf("Your ticket for %s", eventTitle)
	n.Data["event_title"] = eventTitle
	n.Data["ticket_code"] = code

	return s.producer.Publish(ctx, n)
}

func (s *service) PublishTicketCheckedIn(ctx context.Context, ticketID, eventID uuid.UUID, code, attendeeEmail, attendeeName, eventTitle string) error {
	if !s.enabled {
		return nil
	}

	n := NewNotification(NotificationTypeTicketCheckedIn, attendeeEmail, attendeeName)
	n.EventID = &eventID
	n.TicketID = &ticketID
	n.TicketCode = code
	n.Subject = fmt.Sprintf("Checked in to %s", eventTitle)
	n.Data["event_title"] = eventTitle

	return s.producer.Publish(ctx, n)
}

func (s *service) PublishGrantCreated(ctx context.Context, eventID uuid.UUID, targetEmail, targetName, eventTitle string) error {
	if !s.enabled {
		return nil
	}

	n := NewNotification(NotificationTypeGrantCreated, targetEmail, targetName)
	n.EventID = &eventID
	n.Subject = fmt.Sprintf("You can now check in attendees for %s", eventTitle)
	n.Data["event_title"] = eventTitle

	return s.producer.Publish(ctx, n)
}

func (s *service) PublishGrantRevoked(ctx context.Context, eventID uuid.UUID, targetEmail, targetName, eventTitle string) error {
	if !s.enabled {
		return nil
	}

	n := NewNotification(NotificationTypeGrantRevoked, targetEmail, targetName)
	n.EventID = &eventID
	n.Subject = fmt.Sprintf("Check-in access removed for %s", eventTitle)
	n.Data["event_title"] = eventTitle

	return s.producer.Publish(ctx, n)
}
