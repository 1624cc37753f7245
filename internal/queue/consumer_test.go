package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/salon-reservation/internal/model"
)

func TestHandleMessageDecodesEvent(t *testing.T) {
	date, _ := model.ParseDate("2025-03-10")
	ev := BookingConfirmedEvent{
		Recipient: "cleo@example.com",
		Summary: model.BookingSummary{
			BookingID: 7,
			Date:      date,
			Total:     decimal.RequireFromString("1350.50"),
		},
	}
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got BookingConfirmedEvent
	err = handleMessage(context.Background(), body, func(_ context.Context, e BookingConfirmedEvent) error {
		got = e
		return nil
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got.Recipient != ev.Recipient || got.Summary.BookingID != 7 {
		t.Fatalf("unexpected event %+v", got)
	}
	if !got.Summary.Date.Equal(date) || !got.Summary.Total.Equal(ev.Summary.Total) {
		t.Fatalf("summary fields lost: %+v", got.Summary)
	}
}

func TestHandleMessageRejectsBadPayloads(t *testing.T) {
	called := false
	handle := func(context.Context, BookingConfirmedEvent) error { called = true; return nil }

	if err := handleMessage(context.Background(), []byte("{"), handle); err == nil {
		t.Fatal("expected error for invalid json")
	}
	if err := handleMessage(context.Background(), []byte(`{"summary":{}}`), handle); err == nil {
		t.Fatal("expected error for missing recipient")
	}
	if called {
		t.Fatal("handler must not run for rejected payloads")
	}
}

func TestHandleMessagePropagatesHandlerError(t *testing.T) {
	boom := errors.New("smtp down")
	err := handleMessage(context.Background(), []byte(`{"recipient":"a@b.co"}`), func(context.Context, BookingConfirmedEvent) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestSleepStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleep(ctx, time.Hour) {
		t.Fatal("sleep should return false on a cancelled context")
	}
}
