package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"clinic-scheduling-api/internal/domain/entity"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Notifier tells downstream consumers that an appointment changed.
// Booking never depends on delivery: Notify only logs failures.
type Notifier interface {
	Notify(ctx context.Context, event entity.AppointmentEvent)
	Close() error
}

// Events are written one at a time.
const publishBatchTimeout = 5 * time.Millisecond

type kafkaNotifier struct {
	writer  *kafka.Writer
	log     *logrus.Logger
	timeout time.Duration
}

// NewKafkaNotifier publishes events keyed by provider so one provider's
// events stay ordered within a partition.
func NewKafkaNotifier(brokers []string, topic string, timeout time.Duration, log *logrus.Logger) Notifier {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &kafkaNotifier{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           publishBatchTimeout,
			WriteTimeout:           timeout,
		},
		log:     log,
		timeout: timeout,
	}
}

func (n *kafkaNotifier) Notify(ctx context.Context, event entity.AppointmentEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Warnf("Failed to encode %s event for appointment %s: %+v", event.Type, event.AppointmentID, err)
		return
	}

	// The request may finish before the broker answers.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.ProviderID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	msg.Headers = injectTraceHeaders(ctx, msg.Headers)

	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		n.log.Warnf("Failed to publish %s event for appointment %s: %+v", event.Type, event.AppointmentID, err)
		return
	}
	n.log.Debugf("Published %s event for appointment %s", event.Type, event.AppointmentID)
}

func (n *kafkaNotifier) Close() error {
	return n.writer.Close()
}

type noopNotifier struct{}

// NewNoopNotifier is used when no brokers are configured.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) Notify(context.Context, entity.AppointmentEvent) {}

func (noopNotifier) Close() error { return nil }

// SplitBrokers parses a comma separated broker list.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// injectTraceHeaders appends W3C trace context headers to Kafka headers.
func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &kafkaHeaderCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type kafkaHeaderCarrier struct {
	headers []kafka.Header
}

func (c *kafkaHeaderCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *kafkaHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *kafkaHeaderCarrier) Set(key string, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var _ propagation.TextMapCarrier = (*kafkaHeaderCarrier)(nil)
