package push_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"vigia/internal/config"
	"vigia/internal/push"
)

func newHTTPServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func expoMessages(n int) []push.ExpoMessage {
	msgs := make([]push.ExpoMessage, n)
	for i := range msgs {
		msgs[i] = push.ExpoMessage{To: "ExponentPushToken[abc]", Title: "t"}
	}
	return msgs
}

func TestExpoSendBatch_Chunking(t *testing.T) {
	t.Parallel()

	var calls int32
	var sizes []int
	srv := newExpoServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var chunk []push.ExpoMessage
		_ = json.NewDecoder(r.Body).Decode(&chunk)
		sizes = append(sizes, len(chunk))
		tickets := make([]map[string]string, len(chunk))
		for i := range tickets {
			tickets[i] = map[string]string{"status": "ok"}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": tickets})
	})

	res := srv.SendBatch(context.Background(), expoMessages(250))

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 chunk calls, got %d", got)
	}
	if len(sizes) != 3 || sizes[0] != 100 || sizes[1] != 100 || sizes[2] != 50 {
		t.Fatalf("chunk sizes: got %v", sizes)
	}
	if res.Requested != 250 || res.OK != 250 || res.KO != 0 {
		t.Fatalf("result: got %+v", res)
	}
}

func TestExpoSendBatch_ChunkFailureCountsWholeChunk(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := newExpoServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 2 {
			http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
			return
		}
		var chunk []push.ExpoMessage
		_ = json.NewDecoder(r.Body).Decode(&chunk)
		tickets := make([]map[string]string, len(chunk))
		for i := range tickets {
			tickets[i] = map[string]string{"status": "ok"}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": tickets})
	})

	res := srv.SendBatch(context.Background(), expoMessages(250))

	if res.Requested != 250 {
		t.Fatalf("requested: got %d", res.Requested)
	}
	if res.OK != 150 || res.KO != 100 {
		t.Fatalf("expected ok=150 ko=100, got %+v", res)
	}
}

func TestExpoSendBatch_MixedTickets(t *testing.T) {
	t.Parallel()

	srv := newExpoServer(t, func(w http.ResponseWriter, r *http.Request) {
		var chunk []push.ExpoMessage
		_ = json.NewDecoder(r.Body).Decode(&chunk)
		tickets := make([]map[string]string, len(chunk))
		for i := range tickets {
			if i%2 == 0 {
				tickets[i] = map[string]string{"status": "ok"}
			} else {
				tickets[i] = map[string]string{"status": "error", "message": "DeviceNotRegistered"}
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": tickets})
	})

	res := srv.SendBatch(context.Background(), expoMessages(10))
	if res.OK != 5 || res.KO != 5 {
		t.Fatalf("expected 5/5 split, got %+v", res)
	}
}

func TestExpoSendBatch_Empty(t *testing.T) {
	t.Parallel()

	srv := newExpoServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("transport should not be called for empty batch")
	})
	res := srv.SendBatch(context.Background(), nil)
	if res.Requested != 0 || res.OK != 0 || res.KO != 0 {
		t.Fatalf("expected zero result, got %+v", res)
	}
}

func TestNormalizeTokens(t *testing.T) {
	t.Parallel()

	long := "cXyZ0123456789:APA91bFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFake"
	if got := push.NormalizeFCMToken(&long); got == nil || *got != long {
		t.Fatalf("valid fcm token was dropped")
	}
	short := "abc:def"
	if got := push.NormalizeFCMToken(&short); got != nil {
		t.Fatalf("short token should normalize to nil")
	}
	if got := push.NormalizeFCMToken(nil); got != nil {
		t.Fatalf("nil in, nil out")
	}

	expo := "ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"
	if got := push.NormalizeExpoToken(&expo); got == nil || *got != expo {
		t.Fatalf("valid expo token was dropped")
	}
	bad := "not-an-expo-token"
	if got := push.NormalizeExpoToken(&bad); got != nil {
		t.Fatalf("malformed expo token should normalize to nil")
	}
}

func newExpoServer(t *testing.T, handler http.HandlerFunc) *push.ExpoClient {
	t.Helper()
	srv := newHTTPServer(t, handler)
	return push.NewExpoClient(testLogger(), config.ExpoConfig{SendURL: srv})
}
