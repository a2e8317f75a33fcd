package queue

import (
	"encoding/json"
	"testing"
)

func TestDecodeMessageKeepsNotificationPayload(t *testing.T) {
	payload := []byte(`{"kind":"notification","notification":{"userId":3,"kind":"application_submitted"},"requestId":"req-1","enqueuedAt":"2026-01-30T22:00:00Z","version":1}`)

	msg, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg.Kind != KindNotification || msg.RequestID != "req-1" || msg.Version != CurrentVersion {
		t.Fatalf("unexpected message: %+v", msg)
	}
	var inner map[string]any
	if err := json.Unmarshal(msg.Notification, &inner); err != nil {
		t.Fatalf("decode inner: %v", err)
	}
	if inner["kind"] != "application_submitted" {
		t.Fatalf("unexpected inner payload: %v", inner)
	}
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	if _, err := DecodeMessage([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
