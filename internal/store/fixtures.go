// ABOUTME: TOML seed fixtures with an embedded default dataset.
// ABOUTME: Seeding replaces all rows so repeated runs converge on the same state.

package store

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed seed.toml
var defaultSeed []byte

// SeedCustomer is one customer row in a fixture file. Ids are assigned in
// file order starting at 1.
type SeedCustomer struct {
	Name      string `toml:"name"`
	Email     string `toml:"email"`
	Phone     string `toml:"phone"`
	Status    string `toml:"status"`
	CreatedAt string `toml:"created_at"`
}

// SeedTicket is one ticket row in a fixture file.
type SeedTicket struct {
	CustomerID int64  `toml:"customer_id"`
	Issue      string `toml:"issue"`
	Status     string `toml:"status"`
	Priority   string `toml:"priority"`
	CreatedAt  string `toml:"created_at"`
}

// Fixtures is a full seed dataset.
type Fixtures struct {
	Customers []SeedCustomer `toml:"customers"`
	Tickets   []SeedTicket   `toml:"tickets"`
}

// DefaultFixtures parses the embedded seed dataset.
func DefaultFixtures() (*Fixtures, error) {
	return parseFixtures(defaultSeed)
}

// LoadFixtures parses a fixture file from disk.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	return parseFixtures(data)
}

func parseFixtures(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := toml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	if len(fx.Customers) == 0 {
		return nil, fmt.Errorf("fixtures contain no customers")
	}
	for i, c := range fx.Customers {
		if c.Name == "" || c.Email == "" {
			return nil, fmt.Errorf("customer %d: name and email are required", i+1)
		}
	}
	for i, t := range fx.Tickets {
		if t.CustomerID < 1 || t.CustomerID > int64(len(fx.Customers)) {
			return nil, fmt.Errorf("ticket %d: customer_id %d out of range", i+1, t.CustomerID)
		}
		if t.Issue == "" {
			return nil, fmt.Errorf("ticket %d: issue is required", i+1)
		}
	}
	return &fx, nil
}

// Seed replaces all rows with the fixture dataset. Id sequences restart
// at 1 so fixture customer_id references line up.
func (s *Store) Seed(ctx context.Context, fx *Fixtures) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM tickets`,
		`DELETE FROM customers`,
		`DELETE FROM sqlite_sequence WHERE name IN ('tickets', 'customers')`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing tables: %w", err)
		}
	}

	for i, c := range fx.Customers {
		createdAt := c.CreatedAt
		status := c.Status
		if status == "" {
			status = "active"
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO customers (name, email, phone, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, COALESCE(NULLIF(?, ''), CURRENT_TIMESTAMP), COALESCE(NULLIF(?, ''), CURRENT_TIMESTAMP))`,
			c.Name, c.Email, c.Phone, status, createdAt, createdAt,
		)
		if err != nil {
			return fmt.Errorf("inserting customer %d: %w", i+1, err)
		}
	}

	for i, t := range fx.Tickets {
		status := t.Status
		if status == "" {
			status = "open"
		}
		priority := t.Priority
		if priority == "" {
			priority = "medium"
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tickets (customer_id, issue, status, priority, created_at)
			 VALUES (?, ?, ?, ?, COALESCE(NULLIF(?, ''), CURRENT_TIMESTAMP))`,
			t.CustomerID, t.Issue, status, priority, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting ticket %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	s.logger.Info("seeded store", "customers", len(fx.Customers), "tickets", len(fx.Tickets))
	return nil
}
