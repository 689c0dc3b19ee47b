package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// FlaggedAccount is a watchlisted account. Accounts are keyed by public key
// so every network rendering of the same account matches.
type FlaggedAccount struct {
	PublicKey     string
	Address       string
	NetworkPrefix uint16
	H160          string
	ReviveH160    string
	Source        string
	Reason        string
	UpdatedAt     time.Time
}

type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// sqlite serialises writers anyway; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS flagged_accounts (
		public_key TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		network_prefix INTEGER NOT NULL,
		h160 TEXT NOT NULL,
		revive_h160 TEXT NOT NULL,
		source TEXT NOT NULL,
		reason TEXT,
		updated_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_flagged_h160 ON flagged_accounts(h160);
	CREATE INDEX IF NOT EXISTS idx_flagged_revive ON flagged_accounts(revive_h160);
	CREATE INDEX IF NOT EXISTS idx_flagged_source ON flagged_accounts(source);
	CREATE TABLE IF NOT EXISTS metadata (key TEXT PRIMARY KEY, value TEXT);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const selectFlagged = `SELECT public_key, address, network_prefix, h160, revive_h160, source, reason, updated_at FROM flagged_accounts`

// LookupPublicKey returns nil when the key is not flagged.
func (s *Store) LookupPublicKey(ctx context.Context, publicKey string) (*FlaggedAccount, error) {
	return s.lookup(ctx, selectFlagged+` WHERE public_key = ?`, publicKey)
}

// LookupH160 matches either H160 mapping of a flagged account.
func (s *Store) LookupH160(ctx context.Context, h160 string) (*FlaggedAccount, error) {
	return s.lookup(ctx, selectFlagged+` WHERE h160 = ? OR revive_h160 = ? LIMIT 1`, h160, h160)
}

func (s *Store) lookup(ctx context.Context, query string, args ...interface{}) (*FlaggedAccount, error) {
	var acc FlaggedAccount
	var reason sql.NullString
	var updated sql.NullTime
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&acc.PublicKey, &acc.Address, &acc.NetworkPrefix, &acc.H160, &acc.ReviveH160,
		&acc.Source, &reason, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up flagged account: %w", err)
	}
	acc.Reason = reason.String
	acc.UpdatedAt = updated.Time
	return &acc, nil
}

// ReplaceSource swaps every account of source for accounts in one transaction.
func (s *Store) ReplaceSource(ctx context.Context, source string, accounts []FlaggedAccount) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM flagged_accounts WHERE source = ?`, source); err != nil {
		return 0, fmt.Errorf("clearing source %s: %w", source, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO flagged_accounts
		(public_key, address, network_prefix, h160, revive_h160, source, reason, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	loaded := 0
	for _, acc := range accounts {
		if _, err := stmt.ExecContext(ctx, acc.PublicKey, acc.Address, acc.NetworkPrefix,
			acc.H160, acc.ReviveH160, source, acc.Reason, now); err != nil {
			return 0, fmt.Errorf("storing %s: %w", acc.Address, err)
		}
		loaded++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return loaded, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flagged_accounts`).Scan(&n)
	return n, err
}

// Metadata returns "" for unknown keys.
func (s *Store) Metadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO metadata(key, value) VALUES(?, ?)`, key, value)
	return err
}
