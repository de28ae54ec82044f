package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	published  []amqp.Publishing
	keys       []string
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitMQPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "extranet.events", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"extranet.events:topic"}, ch.declared)

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	ev := Event{
		Type:       EventDocumentUploaded,
		UserID:     2,
		DocumentID: "doc-1",
		Category:   "bordereau",
		Filename:   "Martin_Jean.pdf",
		OccurredAt: at,
	}
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, ch.published, 1)
	assert.Equal(t, []string{"extranet.events/document.uploaded"}, ch.keys)
	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, ev, decoded)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitMQPublisher_Errors(t *testing.T) {
	_, err := newPublisher(&fakeChannel{declareErr: errors.New("access refused")}, "x", zerolog.Nop())
	assert.ErrorContains(t, err, "declare exchange x")

	p, err := newPublisher(&fakeChannel{publishErr: errors.New("channel closed")}, "x", zerolog.Nop())
	require.NoError(t, err)
	err = p.Publish(context.Background(), Event{Type: EventDocumentUploaded})
	assert.ErrorContains(t, err, "publish document.uploaded")
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
