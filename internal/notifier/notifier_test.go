package notifier_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ostanin/lending-service/internal/model"
	"github.com/ostanin/lending-service/internal/notifier"
)

func expectKey(want string) func(*sarama.ProducerMessage) error {
	return func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != want {
			return fmt.Errorf("message key = %q, want %q", key, want)
		}
		return nil
	}
}

func TestNotify_MessageKeys(t *testing.T) {
	t.Parallel()
	const (
		memberUid = "7f1b3f46-5f0e-4b61-bf0a-3c6d7a1a1d89"
		bookUid   = "f7cdc58f-2caf-4b15-9727-f89dcc629b27"
	)

	producer := mocks.NewSyncProducer(t, nil)
	// member-scoped events are keyed by member uid
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(expectKey(memberUid))
	// availability broadcasts have no member; keyed by book uid
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(expectKey(bookUid))

	n := notifier.New(producer, "lending.notifications", zap.NewExample().Named("test"))

	err := n.Notify(context.Background(), model.Notification{
		Type:           model.NotifyReservationFulfilled,
		MemberUid:      memberUid,
		BookUid:        bookUid,
		ReservationUid: "83575e12-7ce0-48ee-9931-51919ff3c9ee",
		OccurredAt:     time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	err = n.Notify(context.Background(), model.Notification{
		Type:       model.NotifyBookAvailable,
		BookUid:    bookUid,
		OccurredAt: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, producer.Close())
}
