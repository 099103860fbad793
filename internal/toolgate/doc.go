// Package toolgate provides the typed client for the five customer/ticket
// data operations exposed by the tool service, plus the wire types shared
// with the server side.
//
// # Protocol
//
// The tool service speaks JSON-RPC 2.0 over HTTP POST to /mcp. Two methods
// are used:
//
//   - tools/list: returns the tool catalog with JSON schemas
//   - tools/call: executes one tool (params: name, arguments)
//
// Tool results arrive wrapped in a content envelope:
//
//	{"content": [{"type": "text", "text": "<json payload>"}]}
//
// The text payload carries a success envelope ({"success": true, ...} or
// {"success": false, "error": "...", "code": "not_found"}).
//
// # Error Mapping
//
// The client maps failure envelopes onto sentinel errors (ErrNotFound,
// ErrInvalidField, ErrInvalidPriority, ErrInvalidStatus) so callers can use
// errors.Is. Transport and JSON-RPC level failures pass through unchanged.
package toolgate
