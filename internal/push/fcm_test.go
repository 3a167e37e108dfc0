package push_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"vigia/internal/config"
	"vigia/internal/push"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func fcmServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, config.FCMConfig) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.FCMConfig{
		SendURL:      srv.URL,
		SubscribeURL: srv.URL,
		ServerKey:    "test-key",
	}
	return srv, cfg
}

func TestFCMSendToToken_OK(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	_, cfg := fcmServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "key=test-key" {
			t.Errorf("missing server key header")
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": 1, "failure": 0,
			"results": []map[string]string{{"message_id": "m-1"}},
		})
	})

	c := push.NewFCMClient(testLogger(), cfg)
	res := c.SendToToken(context.Background(), "tok-1", push.Payload{
		Title: "Alerta", Body: "corpo",
		Data: map[string]string{"type": "publicAlert"},
	}, 900)

	if !res.OK {
		t.Fatalf("expected success, got err=%v", res.Err)
	}
	if res.MessageID != "m-1" {
		t.Fatalf("message id: got %q", res.MessageID)
	}
	if gotBody["priority"] != "high" {
		t.Fatalf("priority: got %v", gotBody["priority"])
	}
	if gotBody["time_to_live"] != float64(900) {
		t.Fatalf("time_to_live: got %v", gotBody["time_to_live"])
	}
}

func TestFCMSendToToken_Rejected(t *testing.T) {
	t.Parallel()

	_, cfg := fcmServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": 0, "failure": 1,
			"results": []map[string]string{{"error": "NotRegistered"}},
		})
	})

	c := push.NewFCMClient(testLogger(), cfg)
	res := c.SendToToken(context.Background(), "dead-token", push.Payload{}, 900)

	if res.OK {
		t.Fatalf("expected failure for rejected token")
	}
	if res.Err == nil {
		t.Fatalf("expected error describing rejection")
	}
}

func TestFCMSendToToken_TransportError(t *testing.T) {
	t.Parallel()

	_, cfg := fcmServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := push.NewFCMClient(testLogger(), cfg)
	res := c.SendToToken(context.Background(), "tok", push.Payload{}, 900)
	if res.OK || res.Err == nil {
		t.Fatalf("expected transport failure, got %+v", res)
	}
}

func TestFCMSendMulticast_AggregateCounts(t *testing.T) {
	t.Parallel()

	_, cfg := fcmServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		ids := req["registration_ids"].([]any)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": len(ids) - 1, "failure": 1,
		})
	})

	c := push.NewFCMClient(testLogger(), cfg)
	tokens := []string{"a", "b", "c"}
	res, err := c.SendMulticast(context.Background(), tokens, push.Payload{}, 300)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.SuccessCount != 2 || res.FailureCount != 1 {
		t.Fatalf("counts: got %+v", res)
	}
}

func TestFCMSendMulticast_OverBatchLimit(t *testing.T) {
	t.Parallel()

	_, cfg := fcmServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("transport should not be called")
	})

	c := push.NewFCMClient(testLogger(), cfg)
	tokens := make([]string, push.MaxBatchSize+1)
	for i := range tokens {
		tokens[i] = "t"
	}
	if _, err := c.SendMulticast(context.Background(), tokens, push.Payload{}, 300); err == nil {
		t.Fatalf("expected batch limit error")
	}
}

func TestFCMSendToTopic(t *testing.T) {
	t.Parallel()

	_, cfg := fcmServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["to"] != "/topics/t_10_20" {
			t.Errorf("topic target: got %v", req["to"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"message_id": 123456})
	})

	c := push.NewFCMClient(testLogger(), cfg)
	res := c.SendToTopic(context.Background(), "t_10_20", push.Payload{Title: "x"}, 900)
	if !res.OK {
		t.Fatalf("expected success, got err=%v", res.Err)
	}
}

func TestFCMDisabled(t *testing.T) {
	t.Parallel()

	c := push.NewFCMClient(testLogger(), config.FCMConfig{Disabled: true})
	if res := c.SendToToken(context.Background(), "tok", push.Payload{}, 900); res.OK {
		t.Fatalf("disabled transport must fail sends")
	}
	if err := c.SubscribeToTopic(context.Background(), "tok", "topic"); err == nil {
		t.Fatalf("disabled transport must fail subscribes")
	}
}
