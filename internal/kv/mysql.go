package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MySQL stores values in the kv_entries table (see database.EnsureSchema).
type MySQL struct{ DB *sql.DB }

func NewMySQL(db *sql.DB) *MySQL { return &MySQL{DB: db} }

func (m *MySQL) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := m.DB.QueryRowContext(ctx,
		"SELECT v FROM kv_entries WHERE k=? LIMIT 1", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mysql get %s: %w", key, err)
	}
	return v, true, nil
}

func (m *MySQL) Set(ctx context.Context, key, value string) error {
	_, err := m.DB.ExecContext(ctx,
		"INSERT INTO kv_entries (k, v) VALUES (?,?) ON DUPLICATE KEY UPDATE v=VALUES(v)",
		key, value)
	if err != nil {
		return fmt.Errorf("mysql set %s: %w", key, err)
	}
	return nil
}

func (m *MySQL) Remove(ctx context.Context, key string) error {
	if _, err := m.DB.ExecContext(ctx, "DELETE FROM kv_entries WHERE k=?", key); err != nil {
		return fmt.Errorf("mysql delete %s: %w", key, err)
	}
	return nil
}
