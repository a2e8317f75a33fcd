package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-backend/internal/notifications"
	"jobboard-backend/internal/queue"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type brokenStore struct {
	notifications.Store
}

func (brokenStore) Create(ctx context.Context, n notifications.Notification) (notifications.Notification, error) {
	return notifications.Notification{}, errors.New("db down")
}

func notificationMessage(t *testing.T, n notifications.Notification) sqstypes.Message {
	t.Helper()
	payload, err := json.Marshal(n)
	require.NoError(t, err)
	body, err := queue.EncodeMessage(queue.Message{
		Kind:         queue.KindNotification,
		Notification: payload,
		RequestID:    "req-1",
		Version:      queue.CurrentVersion,
	})
	require.NoError(t, err)
	return sqstypes.Message{
		MessageId:     aws.String("m1"),
		ReceiptHandle: aws.String("r1"),
		Body:          aws.String(string(body)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}
}

func TestWorkerDeletesMessageOnDelivery(t *testing.T) {
	client := &fakeSQS{}
	store := notifications.NewMemoryStore()
	msg := notificationMessage(t, notifications.Notification{
		UserID: 3,
		Kind:   notifications.KindApplicationSubmitted,
		Title:  "Application received",
	})

	handleMessage(context.Background(), client, "queue", store, msg)

	assert.Equal(t, []string{"r1"}, client.deleted)
	inbox, err := store.ListByUser(context.Background(), 3, false, 10)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, notifications.KindApplicationSubmitted, inbox[0].Kind)
}

func TestWorkerKeepsMessageOnStoreFailure(t *testing.T) {
	client := &fakeSQS{}
	msg := notificationMessage(t, notifications.Notification{UserID: 3, Kind: notifications.KindNewApplicant, CreatedAt: time.Now()})

	handleMessage(context.Background(), client, "queue", brokenStore{}, msg)

	assert.Empty(t, client.deleted)
}

func TestWorkerDropsInvalidPayloads(t *testing.T) {
	cases := map[string]sqstypes.Message{
		"bad json": {ReceiptHandle: aws.String("r1"), Body: aws.String("{bad-json")},
		"empty":    {ReceiptHandle: aws.String("r1"), Body: aws.String("")},
		"no user":  notificationMessage(t, notifications.Notification{Kind: notifications.KindStatusChanged}),
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			client := &fakeSQS{}
			handleMessage(context.Background(), client, "queue", notifications.NewMemoryStore(), msg)
			assert.Equal(t, []string{"r1"}, client.deleted)
		})
	}
}

func TestReceiveCount(t *testing.T) {
	assert.Equal(t, 3, receiveCount(sqstypes.Message{Attributes: map[string]string{"ApproximateReceiveCount": "3"}}))
	assert.Equal(t, 0, receiveCount(sqstypes.Message{}))
}
