package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	publishErr error
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+"/"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, exchange+"|"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewAMQPPublisher(ch, "autoparts.events")
	require.NoError(t, err)
	require.Equal(t, []string{"autoparts.events/topic"}, ch.declared)

	// Correlation id comes from the chi request id.
	var ctx context.Context
	middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	ev := QuotationSubmitted{QuotationID: 7, Number: "QT-2025-0007", CustomerEmail: "a@b.c", ItemCount: 2, FinalAmount: decimal.RequireFromString("210")}
	require.NoError(t, p.Publish(ctx, ev))

	require.Equal(t, []string{"autoparts.events|quotation.submitted.v1"}, ch.keys)
	msg := ch.published[0]
	require.Equal(t, "application/json", msg.ContentType)
	require.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var env EventEnvelope[QuotationSubmitted]
	require.NoError(t, json.Unmarshal(msg.Body, &env))
	require.NoError(t, env.Validate(QuotationSubmittedName, 1))
	require.Equal(t, "QT-2025-0007", env.PartitionKey)
	require.Equal(t, msg.MessageId, env.EventID)
	require.NotEmpty(t, env.CorrelationID)
	require.Equal(t, middleware.GetReqID(ctx), env.CorrelationID)
	require.True(t, env.Payload.FinalAmount.Equal(decimal.RequireFromString("210")))
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := NewAMQPPublisher(ch, "x")
	require.NoError(t, err)
	err = p.Publish(context.Background(), EnquirySubmitted{EnquiryID: 3})
	require.ErrorContains(t, err, "publish enquiry.submitted")
}

func TestEnvelopeValidate(t *testing.T) {
	env := Wrap(context.Background(), QuotationStatusChanged{Number: "QT-2025-0001", From: "pending", To: "approved"})
	require.NoError(t, env.Validate(QuotationStatusChangedName, 1))
	require.Error(t, env.Validate(QuotationSubmittedName, 1))
	require.Error(t, env.Validate(QuotationStatusChangedName, 2))

	env.PartitionKey = ""
	require.Error(t, env.Validate(QuotationStatusChangedName, 1))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), EnquirySubmitted{EnquiryID: 1}))
	require.Len(t, r.Events(), 1)
	r.Err = errors.New("down")
	require.Error(t, r.Publish(context.Background(), EnquirySubmitted{EnquiryID: 2}))
	require.Len(t, r.Events(), 1)
}
