package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-backend/internal/queue"
	"jobboard-backend/internal/shared/telemetry"
)

type failingClient struct{}

func (failingClient) Send(context.Context, queue.Message) error {
	return errors.New("queue down")
}

func TestQueueNotifierWrapsNotification(t *testing.T) {
	client := &queue.MemoryClient{}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	notifier := &QueueNotifier{Client: client, Now: func() time.Time { return fixed }}

	ctx := telemetry.WithRequestID(context.Background(), "req-7")
	n := ApplicationSubmitted(Recipient{UserID: 5}, Subject{JobID: 7, JobTitle: "Go Engineer", CompanyName: "Acme", ApplicationID: 11})
	require.NoError(t, notifier.Notify(ctx, n))

	msgs := client.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, queue.KindNotification, msgs[0].Kind)
	assert.Equal(t, "req-7", msgs[0].RequestID)
	assert.Equal(t, "2026-03-01T12:00:00Z", msgs[0].EnqueuedAt)
	assert.Equal(t, queue.CurrentVersion, msgs[0].Version)

	var decoded Notification
	require.NoError(t, json.Unmarshal(msgs[0].Notification, &decoded))
	assert.Equal(t, int64(5), decoded.UserID)
	assert.Equal(t, KindApplicationSubmitted, decoded.Kind)
	assert.Contains(t, decoded.Body, "Go Engineer at Acme")
}

func TestQueueNotifierSurfacesSendErrors(t *testing.T) {
	notifier := &QueueNotifier{Client: failingClient{}}
	err := notifier.Notify(context.Background(), Notification{UserID: 1, Kind: KindNewApplicant})
	assert.Error(t, err)
}

func TestNotifyRequiresRecipient(t *testing.T) {
	direct := &DirectNotifier{Store: NewMemoryStore()}
	err := direct.Notify(context.Background(), Notification{Kind: KindNewApplicant})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeliverStoresQueuedNotification(t *testing.T) {
	ctx := context.Background()
	client := &queue.MemoryClient{}
	require.NoError(t, (&QueueNotifier{Client: client}).Notify(ctx, NewApplicant(Recipient{UserID: 8}, "Ana", Subject{JobID: 7, JobTitle: "Go Engineer", ApplicationID: 11})))

	store := NewMemoryStore()
	created, err := Deliver(ctx, store, client.Messages()[0])
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	inbox, err := store.ListByUser(ctx, 8, false, 10)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Ana applied to Go Engineer.", inbox[0].Body)
	require.NotNil(t, inbox[0].ApplicationID)
	assert.Equal(t, int64(11), *inbox[0].ApplicationID)
}

func TestDeliverIgnoresRedeliveredMessage(t *testing.T) {
	ctx := context.Background()
	client := &queue.MemoryClient{}
	require.NoError(t, (&QueueNotifier{Client: client}).Notify(ctx, ApplicationSubmitted(Recipient{UserID: 8}, Subject{JobID: 7, JobTitle: "Go Engineer", ApplicationID: 11})))
	require.NoError(t, (&QueueNotifier{Client: client}).Notify(ctx, ApplicationSubmitted(Recipient{UserID: 8}, Subject{JobID: 7, JobTitle: "Go Engineer", ApplicationID: 11})))
	msgs := client.Messages()
	require.Len(t, msgs, 2)
	require.NotEmpty(t, msgs[0].ID)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)

	store := NewMemoryStore()
	first, err := Deliver(ctx, store, msgs[0])
	require.NoError(t, err)
	again, err := Deliver(ctx, store, msgs[0])
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = Deliver(ctx, store, msgs[1])
	require.NoError(t, err)
	inbox, err := store.ListByUser(ctx, 8, false, 10)
	require.NoError(t, err)
	assert.Len(t, inbox, 2, "distinct events are both kept")
}

func TestConstructorsCarryRecipientAndDate(t *testing.T) {
	at := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)
	to := Recipient{UserID: 5, Email: "ana@example.test", Name: "Ana"}
	subject := Subject{JobID: 7, JobTitle: "Go Engineer", CompanyName: "Acme", ApplicationID: 11, Date: at}

	n := ApplicationSubmitted(to, subject)
	assert.Equal(t, "Your application for Go Engineer at Acme was received on Mar 4, 2026.", n.Body)
	assert.Equal(t, "ana@example.test", n.RecipientEmail)

	n = StatusChanged(to, "shortlisted", subject)
	assert.Equal(t, "Your application for Go Engineer is now shortlisted on Mar 4, 2026.", n.Body)
}

func TestDeliverRejectsMalformedMessages(t *testing.T) {
	store := NewMemoryStore()
	cases := []queue.Message{
		{Kind: "digest", Version: 1},
		{Kind: queue.KindNotification, Version: 99, Notification: json.RawMessage(`{}`)},
		{Kind: queue.KindNotification, Version: 1, Notification: json.RawMessage(`not-json`)},
		{Kind: queue.KindNotification, Version: 1, Notification: json.RawMessage(`{"kind":"new_applicant"}`)},
	}
	for _, msg := range cases {
		_, err := Deliver(context.Background(), store, msg)
		assert.ErrorIs(t, err, ErrValidation, "message %+v", msg)
	}
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	n, err := store.Create(ctx, Notification{UserID: 1, Kind: KindStatusChanged})
	require.NoError(t, err)

	assert.ErrorIs(t, store.MarkRead(ctx, 2, n.ID, time.Now()), ErrNotFound)
	require.NoError(t, store.MarkRead(ctx, 1, n.ID, time.Now()))

	unread, err := store.ListByUser(ctx, 1, true, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
