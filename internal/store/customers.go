// ABOUTME: Customer read and write operations against the SQLite store.
// ABOUTME: Validates statuses and field names before touching the database.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/2389/triage-gateway/internal/toolgate"
)

// GetCustomer returns one customer by id, or toolgate.ErrNotFound.
func (s *Store) GetCustomer(ctx context.Context, id int64) (*toolgate.Customer, error) {
	query := `
		SELECT id, name, email, phone, status, created_at, updated_at
		FROM customers
		WHERE id = ?
	`

	var c toolgate.Customer
	var phone sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &phone, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: customer %d", toolgate.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer: %w", err)
	}
	c.Phone = phone.String
	return &c, nil
}

// CustomerExists reports whether a customer id is present.
func (s *Store) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM customers WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking customer: %w", err)
	}
	return true, nil
}

// ListCustomers returns customers ordered by id. An empty status means no
// filter; limit <= 0 means no limit.
func (s *Store) ListCustomers(ctx context.Context, status string, limit int) ([]toolgate.Customer, error) {
	if status != "" && !toolgate.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %s", toolgate.ErrInvalidStatus, status)
	}

	query := `
		SELECT id, name, email, phone, status, created_at, updated_at
		FROM customers
	`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	var customers []toolgate.Customer
	for rows.Next() {
		var c toolgate.Customer
		var phone sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &phone, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		c.Phone = phone.String
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customers: %w", err)
	}
	return customers, nil
}

// UpdateCustomer writes the given fields on one customer and returns the
// field names actually updated, sorted. Unknown field names and bad
// status values are rejected before any write.
func (s *Store) UpdateCustomer(ctx context.Context, id int64, fields map[string]string) ([]string, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", toolgate.ErrInvalidField)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if !toolgate.UpdatableField(name) {
			return nil, fmt.Errorf("%w: %s", toolgate.ErrInvalidField, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if v, ok := fields["status"]; ok && !toolgate.ValidStatus(v) {
		return nil, fmt.Errorf("%w: %s", toolgate.ErrInvalidStatus, v)
	}

	exists, err := s.CustomerExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: customer %d", toolgate.ErrNotFound, id)
	}

	assignments := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		assignments = append(assignments, name+" = ?")
		args = append(args, fields[name])
	}
	assignments = append(assignments, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := `UPDATE customers SET ` + strings.Join(assignments, ", ") + ` WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("updating customer: %w", err)
	}

	s.logger.Debug("updated customer", "id", id, "fields", names)
	return names, nil
}
