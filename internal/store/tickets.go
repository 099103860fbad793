// ABOUTME: Ticket creation and history queries against the SQLite store.
// ABOUTME: History is returned newest first with a stable id tiebreak.

package store

import (
	"context"
	"fmt"

	"github.com/2389/triage-gateway/internal/toolgate"
)

// CreateTicket opens a ticket for an existing customer and returns its
// id. Priority defaults to medium when empty.
func (s *Store) CreateTicket(ctx context.Context, customerID int64, issue, priority string) (int64, error) {
	if priority == "" {
		priority = toolgate.PriorityMedium
	}
	if !toolgate.ValidPriority(priority) {
		return 0, fmt.Errorf("%w: %s", toolgate.ErrInvalidPriority, priority)
	}

	exists, err := s.CustomerExists(ctx, customerID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: customer %d", toolgate.ErrNotFound, customerID)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO tickets (customer_id, issue, status, priority) VALUES (?, ?, 'open', ?)`,
		customerID, issue, priority,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting ticket: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading ticket id: %w", err)
	}

	s.logger.Debug("created ticket", "id", id, "customer_id", customerID, "priority", priority)
	return id, nil
}

// GetCustomerHistory returns a customer's tickets, newest first.
func (s *Store) GetCustomerHistory(ctx context.Context, customerID int64) ([]toolgate.Ticket, error) {
	exists, err := s.CustomerExists(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: customer %d", toolgate.ErrNotFound, customerID)
	}

	query := `
		SELECT id, customer_id, issue, status, priority, created_at
		FROM tickets
		WHERE customer_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("querying tickets: %w", err)
	}
	defer rows.Close()

	var tickets []toolgate.Ticket
	for rows.Next() {
		var t toolgate.Ticket
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Issue, &t.Status, &t.Priority, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tickets: %w", err)
	}
	return tickets, nil
}
