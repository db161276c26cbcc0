package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/ostanin/lending-service/internal/model"
	"github.com/ostanin/lending-service/pkg/circuit_breaker"
)

// KafkaNotifier publishes domain notifications to a single topic, keyed
// by member uid so per-member ordering is preserved; events without a
// member (book availability) are keyed by book uid. A circuit breaker
// keeps a broker outage from stalling request handling.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
	log      *zap.Logger
}

func New(producer sarama.SyncProducer, topic string, log *zap.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		topic:    topic,
		cb:       circuit_breaker.New(20, 30*time.Second, 0.5, 5),
		log:      log.Named("notifier"),
	}
}

func (n *KafkaNotifier) Notify(_ context.Context, event model.Notification) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := event.MemberUid
	if key == "" {
		key = event.BookUid
	}
	return n.cb.Call(func() error {
		msg := &sarama.ProducerMessage{
			Topic: n.topic,
			Key:   sarama.StringEncoder(key),
			Value: sarama.ByteEncoder(data),
		}
		_, _, err := n.producer.SendMessage(msg)
		return err
	})
}
