package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSend_Success(t *testing.T) {
	var requests int32
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.Header.Get("auth") != "shh" {
			t.Errorf("auth header = %q, want %q", r.Header.Get("auth"), "shh")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"Hi there!"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "shh", 5*time.Second)
	reply, err := c.Send(context.Background(), "Hello", "sess-1", "a@b.co")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply != "Hi there!" {
		t.Fatalf("reply = %q, want %q", reply, "Hi there!")
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Fatalf("requests = %d, want exactly 1", n)
	}

	if got["action"] != "chat" || got["message"] != "Hello" ||
		got["sessionId"] != "sess-1" || got["email"] != "a@b.co" {
		t.Fatalf("unexpected payload: %v", got)
	}
	if got["timestamp"] == nil || got["timestamp"] == "" {
		t.Fatalf("payload is missing the timestamp")
	}
}

func TestSend_OmitsEmptyEmail(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	if _, err := c.Send(context.Background(), "hi", "sess-1", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, present := got["email"]; present {
		t.Fatalf("email key should be omitted when not set, got %v", got)
	}
}

func TestSend_RemoteRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"workflow exploded"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	_, err := c.Send(context.Background(), "hi", "s", "")
	kind, ok := KindOf(err)
	if !ok || kind != KindRemoteRejected {
		t.Fatalf("kind = %v (classified=%v), want %v", kind, ok, KindRemoteRejected)
	}
	var ge *Error
	if !errors.As(err, &ge) || ge.Detail != "workflow exploded" {
		t.Fatalf("detail should carry the remote message, got %v", err)
	}
}

func TestSend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	c := NewClient(srv.URL, "", 2*time.Second)
	_, err := c.Send(context.Background(), "hi", "s", "")
	if kind, ok := KindOf(err); !ok || kind != KindUnreachable {
		t.Fatalf("kind = %v, want %v", kind, KindUnreachable)
	}
}

func TestSend_MalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	_, err := c.Send(context.Background(), "hi", "s", "")
	if kind, ok := KindOf(err); !ok || kind != KindMalformedReply {
		t.Fatalf("kind = %v, want %v", kind, KindMalformedReply)
	}
}

func TestSend_InputChecksBeforeNetwork(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	if _, err := c.Send(context.Background(), "   ", "s", ""); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}

	unconfigured := NewClient("", "", 5*time.Second)
	if _, err := unconfigured.Send(context.Background(), "hi", "s", ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if err := unconfigured.LogEmail(context.Background(), "a@b.co", "s"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}

	if n := atomic.LoadInt32(&requests); n != 0 {
		t.Fatalf("requests = %d, want 0", n)
	}
}

func TestLogEmail(t *testing.T) {
	var got map[string]any
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":"Invalid email address"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	if err := c.LogEmail(context.Background(), "a@b.co", "sess-9"); err != nil {
		t.Fatalf("log email: %v", err)
	}
	if got["action"] != "log-email" || got["email"] != "a@b.co" || got["sessionId"] != "sess-9" {
		t.Fatalf("unexpected payload: %v", got)
	}

	status = http.StatusBadRequest
	err := c.LogEmail(context.Background(), "a@b.co", "sess-9")
	var ge *Error
	if !errors.As(err, &ge) || ge.Kind != KindRemoteRejected || ge.Detail != "Invalid email address" {
		t.Fatalf("err = %v, want remote_rejected with the remote message", err)
	}
}
