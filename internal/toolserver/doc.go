// Package toolserver exposes the customer store as five tools over
// JSON-RPC 2.0: get_customer, list_customers, update_customer,
// create_ticket, and get_customer_history.
//
// Domain failures (unknown customer, bad field names, bad enum values)
// come back as success=false envelopes with a machine-readable code
// inside an ordinary JSON-RPC result, matching what the typed client in
// the toolgate package expects. Only transport and internal failures use
// JSON-RPC error responses.
package toolserver
