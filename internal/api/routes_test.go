package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/darijacast/server/domain/entities"
	"github.com/darijacast/server/internal/websocket"
	"github.com/darijacast/server/usecase"
)

// fakeProcessor hands received events to the test over a channel
type fakeProcessor struct {
	events chan entities.DonationEvent
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{events: make(chan entities.DonationEvent, 1)}
}

func (p *fakeProcessor) Process(ctx context.Context, event entities.DonationEvent) {
	p.events <- event
}

// fakeTTS returns scripted audio or a scripted error
type fakeTTS struct {
	audio []byte
	err   error
}

func (f *fakeTTS) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	audioChan := make(chan []byte, 2)
	audioChan <- f.audio[:len(f.audio)/2]
	audioChan <- f.audio[len(f.audio)/2:]
	close(audioChan)
	return audioChan, nil
}

func setupTestAPI(t *testing.T, processor DonationProcessor, tts *fakeTTS) *echo.Echo {
	t.Helper()

	e := echo.New()
	hub := websocket.NewHub(usecase.NewThresholdStore(0), zap.NewNop())
	InitRoutes(e, hub, processor, tts, zap.NewNop())
	return e
}

func postWebhook(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing payment id", `{"amount":20,"asset":{"name":"diamonds"}}`},
		{"missing amount", `{"paymentID":"p1","asset":{"name":"diamonds"}}`},
		{"missing asset", `{"paymentID":"p1","amount":20}`},
		{"asset without name", `{"paymentID":"p1","amount":20,"asset":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := newFakeProcessor()
			e := setupTestAPI(t, processor, &fakeTTS{})

			rec := postWebhook(e, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}

			select {
			case event := <-processor.events:
				t.Errorf("Expected no processing, got event %+v", event)
			case <-time.After(50 * time.Millisecond):
			}
		})
	}
}

func TestWebhook_ValidPayloadAcknowledgedAndProcessed(t *testing.T) {
	processor := newFakeProcessor()
	e := setupTestAPI(t, processor, &fakeTTS{})

	body := `{"paymentID":"p1","amount":20,"asset":{"name":"diamonds"},"donor":{"username":"Ali"},"message":"sbah elkhir"}`
	rec := postWebhook(e, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case event := <-processor.events:
		if event.PaymentID != "p1" {
			t.Errorf("Expected payment id p1, got %q", event.PaymentID)
		}
		if event.DonorName != "Ali" {
			t.Errorf("Expected donor Ali, got %q", event.DonorName)
		}
		if event.Amount != 20 {
			t.Errorf("Expected amount 20, got %f", event.Amount)
		}
		if event.Message != "sbah elkhir" {
			t.Errorf("Expected message preserved, got %q", event.Message)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected event to reach the processor")
	}
}

func TestWebhook_LegacyIDAlias(t *testing.T) {
	processor := newFakeProcessor()
	e := setupTestAPI(t, processor, &fakeTTS{})

	rec := postWebhook(e, `{"id":"legacy-7","amount":3,"asset":{"name":"roses"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	select {
	case event := <-processor.events:
		if event.PaymentID != "legacy-7" {
			t.Errorf("Expected legacy id to populate payment id, got %q", event.PaymentID)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected event to reach the processor")
	}
}

func TestWebhook_AcknowledgedEvenWhenSuppressedDownstream(t *testing.T) {
	// The 200 only reflects validation; downstream suppression is invisible
	// to the sender
	processor := newFakeProcessor()
	e := setupTestAPI(t, processor, &fakeTTS{})

	rec := postWebhook(e, `{"paymentID":"p1","amount":1,"asset":{"name":"diamonds"}}`)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 regardless of downstream outcome, got %d", rec.Code)
	}
}

func TestAudio_MissingText(t *testing.T) {
	e := setupTestAPI(t, newFakeProcessor(), &fakeTTS{})

	req := httptest.NewRequest(http.MethodGet, "/audio", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing text, got %d", rec.Code)
	}
}

func TestAudio_StreamsSynthesizedBytes(t *testing.T) {
	audio := []byte("mock-mpeg-bytes-for-testing")
	e := setupTestAPI(t, newFakeProcessor(), &fakeTTS{audio: audio})

	req := httptest.NewRequest(http.MethodGet, "/audio?text=%D8%B5%D8%A8%D8%A7%D8%AD", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if contentType := rec.Header().Get(echo.HeaderContentType); contentType != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg content type, got %q", contentType)
	}
	if rec.Body.String() != string(audio) {
		t.Errorf("Expected full audio payload, got %d bytes", rec.Body.Len())
	}
}

func TestAudio_SynthesisFailure(t *testing.T) {
	e := setupTestAPI(t, newFakeProcessor(), &fakeTTS{err: fmt.Errorf("provider down")})

	req := httptest.NewRequest(http.MethodGet, "/audio?text=hello", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 on synthesis failure, got %d", rec.Code)
	}
}
