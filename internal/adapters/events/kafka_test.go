package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_PublishResolution(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, DefaultTopic)

	evt := domain.TradeResolved{
		BetID:      "b1",
		Platform:   domain.PlatformAzuro,
		User:       "0xabc",
		MarketID:   "c1",
		Status:     domain.BetWon,
		PnL:        42.5,
		ResolvedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishResolution(context.Background(), evt))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "b1", string(msg.Key))
	assert.Equal(t, "azuro", string(msg.Headers[0].Value))

	var got domain.TradeResolved
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, evt, got)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := newKafkaPublisher(&fakeWriter{err: errors.New("broker down")}, "t")
	err := p.PublishResolution(context.Background(), domain.TradeResolved{BetID: "b1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
