package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestPublisher_Publish_ConstruyeElSobre(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, ExchangeLedgerEvents, "inventario-ledger", nil)
	p.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }

	ctx := WithCorrelationID(context.Background(), "req-42")
	payload := appinventory.MovementsAppended{OperationID: "op-1", ProductID: "P1", Operation: "sortie", Records: 2, Quantity: 15}
	require.NoError(t, p.Publish(ctx, appinventory.EventMovementsAppended, payload))

	assert.Equal(t, ExchangeLedgerEvents, ch.exchange)
	assert.Equal(t, appinventory.EventMovementsAppended, ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "req-42", ch.msg.CorrelationId)

	var ev Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &ev))
	assert.Equal(t, ch.msg.MessageId, ev.ID)
	assert.Equal(t, "inventario-ledger", ev.Source)
	assert.True(t, ev.Timestamp.Equal(p.now()))

	var got appinventory.MovementsAppended
	require.NoError(t, ev.UnmarshalData(&got))
	assert.Equal(t, payload, got)
}

func TestPublisher_Publish_PropagaErrorDelCanal(t *testing.T) {
	ch := &fakeChannel{err: errors.New("canal cerrado")}
	p := newPublisher(ch, ExchangeLedgerEvents, "x", nil)

	err := p.Publish(context.Background(), "evento", map[string]int{"a": 1})
	assert.ErrorContains(t, err, "canal cerrado")
}

func TestPublisher_Publish_DatosNoSerializables(t *testing.T) {
	p := newPublisher(&fakeChannel{}, ExchangeLedgerEvents, "x", nil)
	assert.Error(t, p.Publish(context.Background(), "evento", make(chan int)))
}
