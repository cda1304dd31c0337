package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
	"github.com/valkey-io/valkey-go/mock"
	"go.uber.org/mock/gomock"

	"github.com/yanqian/taskhub/internal/domain/auth"
)

func sampleEvent(t *testing.T) (auth.Event, string) {
	t.Helper()
	event := auth.Event{
		ID:         "evt-1",
		Type:       auth.EventLoggedIn,
		UserID:     7,
		Email:      "ana@example.com",
		TokenID:    "jti-7",
		OccurredAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	encoded, err := json.Marshal(event)
	require.NoError(t, err)
	return event, string(encoded)
}

func TestNewValkeyPublisherDefaultsKey(t *testing.T) {
	publisher := NewValkeyPublisher(nil, "", 0)
	require.Equal(t, defaultKey, publisher.key)
}

func TestValkeyPublisherPushesAndTrims(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	event, encoded := sampleEvent(t)

	client.EXPECT().DoMulti(
		gomock.Any(),
		mock.Match("LPUSH", "auth:events", encoded),
		mock.Match("LTRIM", "auth:events", "0", "99"),
	).Return([]valkey.ValkeyResult{
		mock.Result(mock.ValkeyInt64(1)),
		mock.Result(mock.ValkeyString("OK")),
	})

	publisher := NewValkeyPublisher(client, "auth:events", 100)
	require.NoError(t, publisher.Publish(context.Background(), event))
}

func TestValkeyPublisherWithoutMaxLenSkipsTrim(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	event, encoded := sampleEvent(t)

	client.EXPECT().DoMulti(
		gomock.Any(),
		mock.Match("LPUSH", defaultKey, encoded),
	).Return([]valkey.ValkeyResult{mock.Result(mock.ValkeyInt64(1))})

	publisher := NewValkeyPublisher(client, "", 0)
	require.NoError(t, publisher.Publish(context.Background(), event))
}

func TestValkeyPublisherReturnsCommandError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	event, _ := sampleEvent(t)

	client.EXPECT().DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).Return([]valkey.ValkeyResult{
		mock.ErrorResult(errors.New("connection reset")),
		mock.Result(mock.ValkeyString("OK")),
	})

	publisher := NewValkeyPublisher(client, "auth:events", 10)
	err := publisher.Publish(context.Background(), event)
	require.ErrorContains(t, err, "push auth event")
}
