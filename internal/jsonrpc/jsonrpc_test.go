// ABOUTME: Tests for JSON-RPC framing, read/write helpers, and the client.
// ABOUTME: Validates error codes, body limits, and fault propagation.

package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestReadRequest(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
		req, rpcErr := ReadRequest(body)
		if rpcErr != nil {
			t.Fatalf("ReadRequest failed: %v", rpcErr)
		}
		if req.Method != "tools/list" {
			t.Errorf("method mismatch: got %q", req.Method)
		}
		if string(req.ID) != "1" {
			t.Errorf("id mismatch: got %q", string(req.ID))
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, rpcErr := ReadRequest(strings.NewReader("{not json"))
		if rpcErr == nil || rpcErr.Code != CodeParseError {
			t.Errorf("expected parse error, got %v", rpcErr)
		}
	})

	t.Run("wrong version", func(t *testing.T) {
		_, rpcErr := ReadRequest(strings.NewReader(`{"jsonrpc":"1.0","id":1,"method":"x"}`))
		if rpcErr == nil || rpcErr.Code != CodeInvalidRequest {
			t.Errorf("expected invalid request, got %v", rpcErr)
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		huge := `{"jsonrpc":"2.0","id":1,"method":"x","params":"` + strings.Repeat("a", MaxRequestBodySize) + `"}`
		_, rpcErr := ReadRequest(strings.NewReader(huge))
		if rpcErr == nil || rpcErr.Code != CodeInvalidRequest {
			t.Errorf("expected invalid request for oversized body, got %v", rpcErr)
		}
	})
}

func TestWriteResult(t *testing.T) {
	rr := httptest.NewRecorder()
	if err := WriteResult(rr, json.RawMessage("7"), map[string]string{"ok": "yes"}); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.JSONRPC != Version {
		t.Errorf("version mismatch: got %q", resp.JSONRPC)
	}
	if string(resp.ID) != "7" {
		t.Errorf("id mismatch: got %q", string(resp.ID))
	}
	if resp.Error != nil {
		t.Errorf("unexpected error: %v", resp.Error)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type mismatch: got %q", rr.Header().Get("Content-Type"))
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	if err := WriteError(rr, json.RawMessage("3"), CodeMethodNotFound, "method not found", nil); err != nil {
		t.Fatalf("WriteError failed: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("expected error in response")
	}
	if resp.Error.Code != CodeMethodNotFound {
		t.Errorf("code mismatch: got %d", resp.Error.Code)
	}
}

func TestClientCall(t *testing.T) {
	t.Run("success round trip", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, rpcErr := ReadRequest(r.Body)
			if rpcErr != nil {
				t.Errorf("server failed to read request: %v", rpcErr)
				return
			}
			if req.Method != "tools/call" {
				t.Errorf("method mismatch: got %q", req.Method)
			}
			// Echo the params back as the result
			if err := WriteResult(w, req.ID, json.RawMessage(req.Params)); err != nil {
				t.Errorf("server write failed: %v", err)
			}
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		result, err := client.Call(context.Background(), "tools/call", map[string]string{"name": "get_customer"})
		if err != nil {
			t.Fatalf("Call failed: %v", err)
		}

		var params map[string]string
		if err := json.Unmarshal(result, &params); err != nil {
			t.Fatalf("decoding result: %v", err)
		}
		if params["name"] != "get_customer" {
			t.Errorf("result mismatch: got %v", params)
		}
	})

	t.Run("remote fault surfaces as *Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, _ := ReadRequest(r.Body)
			_ = WriteError(w, req.ID, CodeInternalError, "boom", nil)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		_, err := client.Call(context.Background(), "anything", nil)

		var rpcErr *Error
		if !errors.As(err, &rpcErr) {
			t.Fatalf("expected *Error, got %T: %v", err, err)
		}
		if rpcErr.Code != CodeInternalError {
			t.Errorf("code mismatch: got %d", rpcErr.Code)
		}
	})

	t.Run("context deadline surfaces as DeadlineExceeded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.Call(ctx, "anything", nil)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("unreachable endpoint returns transport error", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", 500*time.Millisecond)
		_, err := client.Call(context.Background(), "anything", nil)
		if err == nil {
			t.Fatal("expected error for unreachable endpoint")
		}
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			t.Errorf("transport failure should not be a *Error: %v", err)
		}
	})
}
