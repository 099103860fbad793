// ABOUTME: Static tool catalog served by tools/list.
// ABOUTME: Descriptions and input schemas for the five customer tools.

package toolserver

import (
	"encoding/json"

	"github.com/2389/triage-gateway/internal/toolgate"
)

var toolCatalog = []toolgate.ToolInfo{
	{
		Name:        toolgate.ToolGetCustomer,
		Description: "Get customer details by id",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"customer_id": {"type": "integer", "description": "Customer id"}
			},
			"required": ["customer_id"]
		}`),
	},
	{
		Name:        toolgate.ToolListCustomers,
		Description: "List customers, optionally filtered by status",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"status": {"type": "string", "enum": ["active", "disabled"], "description": "Status filter, defaults to active"},
				"limit": {"type": "integer", "description": "Maximum rows to return, defaults to 100"}
			}
		}`),
	},
	{
		Name:        toolgate.ToolUpdateCustomer,
		Description: "Update one or more fields on a customer record",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"customer_id": {"type": "integer", "description": "Customer id"},
				"data": {
					"type": "object",
					"description": "Field/value pairs; allowed fields: name, email, phone, status"
				}
			},
			"required": ["customer_id", "data"]
		}`),
	},
	{
		Name:        toolgate.ToolCreateTicket,
		Description: "Create a support ticket for a customer",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"customer_id": {"type": "integer", "description": "Customer id"},
				"issue": {"type": "string", "description": "Issue description"},
				"priority": {"type": "string", "enum": ["low", "medium", "high"], "description": "Defaults to medium"}
			},
			"required": ["customer_id", "issue"]
		}`),
	},
	{
		Name:        toolgate.ToolGetCustomerHistory,
		Description: "Get a customer's ticket history, newest first",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"customer_id": {"type": "integer", "description": "Customer id"}
			},
			"required": ["customer_id"]
		}`),
	},
}
