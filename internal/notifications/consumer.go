package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ingrezzi/pkg/logger"

	"github.com/IBM/sarama"
)

// Consumer drains the notification topic and hands messages to the dispatcher
type Consumer interface {
	Start(ctx context.Context, numWorkers int) error
	Stop() error
}

// Dispatcher delivers a consumed notification to its channel (email, push).
// The default dispatcher only records deliveries; outbound email is out of
// scope for this service.
type Dispatcher interface {
	Dispatch(ctx context.Context, notification *Notification) error
}

type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	SessionTimeout    time.Duration
	HeartbeatInterval time.Duration
	MaxProcessingTime time.Duration
	OffsetOldest      bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

func DefaultConsumerConfig(brokers []string, groupID, topic string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topics:            []string{topic},
		SessionTimeout:    30 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		MaxProcessingTime: 5 * time.Minute,
		OffsetOldest:      false,
		MaxRetries:        3,
		RetryBackoff:      time.Second,
	}
}

type kafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	dispatcher    Dispatcher
	log           *logger.Logger
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewKafkaConsumer(config *ConsumerConfig, dispatcher Dispatcher) (Consumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.HeartbeatInterval
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		dispatcher:    dispatcher,
		log:           logger.GetDefault(),
	}, nil
}

func (kc *kafkaConsumer) Start(ctx context.Context, numWorkers int) error {
	ctx, kc.cancel = context.WithCancel(ctx)

	go kc.handleErrors(ctx)

	for i := 0; i < numWorkers; i++ {
		kc.wg.Add(1)
		go func(workerID int) {
			defer kc.wg.Done()
			kc.runWorker(ctx, workerID)
		}(i)
	}

	kc.log.InfoWithContext(ctx, "notification consumer workers started", map[string]interface{}{
		"workers": numWorkers,
		"topics":  kc.config.Topics,
		"group":   kc.config.GroupID,
	})
	return nil
}

func (kc *kafkaConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{
		dispatcher:   kc.dispatcher,
		log:          kc.log,
		workerID:     workerID,
		maxRetries:   kc.config.MaxRetries,
		retryBackoff: kc.config.RetryBackoff,
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Consume blocks until a rebalance; loop to rejoin the group
		if err := kc.consumerGroup.Consume(ctx, kc.config.Topics, handler); err != nil {
			kc.log.ErrorWithContext(ctx, "consumer worker error", err, map[string]interface{}{
				"worker_id": workerID,
			})
			time.Sleep(kc.config.RetryBackoff)
		}
	}
}

func (kc *kafkaConsumer) handleErrors(ctx context.Context) {
	for {
		select {
		case err, ok := <-kc.consumerGroup.Errors():
			if !ok {
				return
			}
			kc.log.ErrorWithContext(ctx, "consumer group error", err, nil)
		case <-ctx.Done():
			return
		}
	}
}

func (kc *kafkaConsumer) Stop() error {
	if kc.cancel != nil {
		kc.cancel()
	}
	kc.wg.Wait()

	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type consumerGroupHandler struct {
	dispatcher   Dispatcher
	log          *logger.Logger
	workerID     int
	maxRetries   int
	retryBackoff time.Duration
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			if err := h.processMessage(session.Context(), message); err != nil {
				h.log.ErrorWithContext(session.Context(), "failed to process notification", err, map[string]interface{}{
					"worker_id": h.workerID,
					"partition": message.Partition,
					"offset":    message.Offset,
				})
			}

			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	notification, err := FromJSON(message.Value)
	if err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	return h.dispatchWithRetry(ctx, notification)
}

func (h *consumerGroupHandler) dispatchWithRetry(ctx context.Context, notification *Notification) error {
	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(h.retryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if lastErr = h.dispatcher.Dispatch(ctx, notification); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("dispatch failed after %d retries: %w", h.maxRetries, lastErr)
}

// LogDispatcher records delivered notifications without sending anything.
type LogDispatcher struct {
	log *logger.Logger
}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{log: logger.GetDefault()}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, notification *Notification) error {
	d.log.InfoWithContext(ctx, "notification dispatched", map[string]interface{}{
		"notification_id": notification.ID.String(),
		"type":            string(notification.Type),
		"recipient":       notification.RecipientEmail,
		"subject":         notification.Subject,
	})
	return nil
}
