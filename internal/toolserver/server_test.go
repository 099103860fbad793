// ABOUTME: Tests for the tool server against a real seeded SQLite store.
// ABOUTME: Drives the server through the typed toolgate client end to end.

package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389/triage-gateway/internal/jsonrpc"
	"github.com/2389/triage-gateway/internal/store"
	"github.com/2389/triage-gateway/internal/toolgate"
)

// setupTestServer starts a tool server over a freshly seeded store and
// returns a typed client pointed at it.
func setupTestServer(t *testing.T) *toolgate.Client {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "support.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	fx, err := store.DefaultFixtures()
	if err != nil {
		t.Fatalf("failed to parse fixtures: %v", err)
	}
	if err := st.Seed(context.Background(), fx); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	server, err := NewServer(Config{Store: st})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	client, err := toolgate.NewClient(toolgate.Config{Endpoint: ts.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestListTools(t *testing.T) {
	client := setupTestServer(t)

	tools, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if len(tools) != 5 {
		t.Fatalf("expected 5 tools, got %d", len(tools))
	}

	names := make(map[string]bool)
	for _, tool := range tools {
		names[tool.Name] = true
		if len(tool.InputSchema) == 0 {
			t.Errorf("tool %s has no input schema", tool.Name)
		}
	}
	for _, want := range []string{
		toolgate.ToolGetCustomer, toolgate.ToolListCustomers, toolgate.ToolUpdateCustomer,
		toolgate.ToolCreateTicket, toolgate.ToolGetCustomerHistory,
	} {
		if !names[want] {
			t.Errorf("catalog missing tool %s", want)
		}
	}
}

func TestGetCustomerTool(t *testing.T) {
	client := setupTestServer(t)

	customer, err := client.GetCustomer(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetCustomer failed: %v", err)
	}
	if customer.Name != "Charlie Brown" {
		t.Errorf("expected Charlie Brown, got %q", customer.Name)
	}

	_, err = client.GetCustomer(context.Background(), 999)
	if !errors.Is(err, toolgate.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = client.GetCustomer(context.Background(), 0)
	if !errors.Is(err, toolgate.ErrInvalidField) {
		t.Errorf("expected ErrInvalidField for id 0, got %v", err)
	}
}

func TestListCustomersTool(t *testing.T) {
	client := setupTestServer(t)

	t.Run("defaults to active", func(t *testing.T) {
		customers, err := client.ListCustomers(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("ListCustomers failed: %v", err)
		}
		if len(customers) != 8 {
			t.Errorf("expected 8 active customers, got %d", len(customers))
		}
	})

	t.Run("disabled filter", func(t *testing.T) {
		customers, err := client.ListCustomers(context.Background(), "disabled", 0)
		if err != nil {
			t.Fatalf("ListCustomers failed: %v", err)
		}
		if len(customers) != 2 {
			t.Errorf("expected 2 disabled customers, got %d", len(customers))
		}
	})

	t.Run("limit", func(t *testing.T) {
		customers, err := client.ListCustomers(context.Background(), "active", 3)
		if err != nil {
			t.Fatalf("ListCustomers failed: %v", err)
		}
		if len(customers) != 3 {
			t.Errorf("expected 3 customers, got %d", len(customers))
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := client.ListCustomers(context.Background(), "suspended", 0)
		if !errors.Is(err, toolgate.ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})
}

func TestUpdateCustomerTool(t *testing.T) {
	client := setupTestServer(t)

	updated, err := client.UpdateCustomer(context.Background(), 3, map[string]string{
		"email": "carol@example.org",
		"name":  "Carol Whitfield",
	})
	if err != nil {
		t.Fatalf("UpdateCustomer failed: %v", err)
	}
	if len(updated) != 2 || updated[0] != "email" || updated[1] != "name" {
		t.Errorf("expected sorted [email name], got %v", updated)
	}

	customer, err := client.GetCustomer(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetCustomer failed: %v", err)
	}
	if customer.Name != "Carol Whitfield" || customer.Email != "carol@example.org" {
		t.Errorf("update not visible: %+v", customer)
	}

	_, err = client.UpdateCustomer(context.Background(), 3, map[string]string{"shoe_size": "9"})
	if !errors.Is(err, toolgate.ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
}

func TestCreateTicketTool(t *testing.T) {
	client := setupTestServer(t)

	id, err := client.CreateTicket(context.Background(), 1, "Exported CSV is empty", "high")
	if err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}
	if id != 16 {
		t.Errorf("expected ticket id 16, got %d", id)
	}

	_, err = client.CreateTicket(context.Background(), 1, "broken", "extreme")
	if !errors.Is(err, toolgate.ErrInvalidPriority) {
		t.Errorf("expected ErrInvalidPriority, got %v", err)
	}

	_, err = client.CreateTicket(context.Background(), 1, "", "low")
	if !errors.Is(err, toolgate.ErrInvalidField) {
		t.Errorf("expected ErrInvalidField for empty issue, got %v", err)
	}

	_, err = client.CreateTicket(context.Background(), 999, "broken", "low")
	if !errors.Is(err, toolgate.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCustomerHistoryTool(t *testing.T) {
	client := setupTestServer(t)

	tickets, err := client.GetCustomerHistory(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetCustomerHistory failed: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}
	if tickets[0].Issue != "Charged twice for subscription" {
		t.Errorf("expected newest ticket first, got %q", tickets[0].Issue)
	}

	_, err = client.GetCustomerHistory(context.Background(), 999)
	if !errors.Is(err, toolgate.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUnknownToolRejected(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "support.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	server, err := NewServer(Config{Store: st})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"drop_tables","arguments":{}}}`
	resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp jsonrpc.Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rpcResp.Error == nil {
		t.Fatal("expected an error response")
	}
	if rpcResp.Error.Code != jsonrpc.CodeMethodNotFound {
		t.Errorf("expected code %d, got %d", jsonrpc.CodeMethodNotFound, rpcResp.Error.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "support.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	server, err := NewServer(Config{Store: st})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode health body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %q", body["status"])
	}
	if body["server"] != "triage-tools" {
		t.Errorf("expected server triage-tools, got %q", body["server"])
	}
}
