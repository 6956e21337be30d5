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

func TestProducer_PublishEncodesEnvelope(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{w: w}

	err := p.Publish(context.Background(), TopicOrder, "abc123", NewEvent("order_paid", map[string]string{"order_id": "abc123"}))
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, TopicOrder, msg.Topic)
	assert.Equal(t, "abc123", string(msg.Key))

	var got struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "order_paid", got.Type)
	assert.Equal(t, "abc123", got.Data["order_id"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishWrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &Producer{w: &fakeWriter{err: boom}}

	err := p.Publish(context.Background(), TopicCart, "k", NewEvent("cart_cleared", nil))
	assert.ErrorIs(t, err, boom)
}

// stalledWriter never answers until the caller gives up.
type stalledWriter struct{}

func (stalledWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stalledWriter) Close() error { return nil }

func TestProducer_PublishGivesUpOnStalledBroker(t *testing.T) {
	p := &Producer{w: stalledWriter{}, timeout: 50 * time.Millisecond}

	done := make(chan error, 1)
	go func() {
		done <- p.Publish(context.Background(), TopicOrder, "abc123", NewEvent("order_created", nil))
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("publish did not return with a stalled broker")
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), TopicUser, "k", nil))
}
