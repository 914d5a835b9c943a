package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/formstate/internal/ir"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one stored version of an entity's flattened values.
type Snapshot struct {
	ID     string         `json:"id"`
	Entity string         `json:"entity"`
	Key    string         `json:"key"`
	Seq    int64          `json:"seq"`
	Hash   string         `json:"hash"`
	Data   map[string]any `json:"data"`
}

// Put appends a snapshot of flat for (entity, key). When the latest stored
// snapshot for the same pair already has identical content, nothing is
// written and that snapshot is returned with inserted=false.
func (s *Store) Put(ctx context.Context, entity, key string, flat map[string]any) (snap Snapshot, inserted bool, err error) {
	hash, err := ir.SnapshotHash(entity, flat)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("put snapshot: %w", err)
	}
	data, err := ir.MarshalCanonical(flat)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("put snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("put snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	latest, err := scanSnapshot(tx.QueryRowContext(ctx, `
		SELECT id, entity, key, seq, hash, data
		FROM snapshots
		WHERE entity = ? AND key = ?
		ORDER BY seq DESC, id DESC
		LIMIT 1
	`, entity, key))
	switch {
	case err == nil && latest.Hash == hash:
		return latest, false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return Snapshot{}, false, fmt.Errorf("put snapshot: %w", err)
	}

	snap = Snapshot{
		ID:     s.newID(),
		Entity: entity,
		Key:    key,
		Seq:    s.clock.Next(),
		Hash:   hash,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, entity, key, seq, hash, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.Entity, snap.Key, snap.Seq, snap.Hash, string(data)); err != nil {
		return Snapshot{}, false, fmt.Errorf("put snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, false, fmt.Errorf("put snapshot: commit: %w", err)
	}

	// Read back through the canonical form so callers see stored types.
	snap.Data, err = decodeData(string(data))
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("put snapshot: %w", err)
	}
	s.logger.Debug("snapshot stored", "entity", entity, "key", key, "seq", snap.Seq, "hash", hash)
	return snap, true, nil
}

// Latest returns the most recent snapshot for (entity, key), or ErrNotFound.
func (s *Store) Latest(ctx context.Context, entity, key string) (Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, `
		SELECT id, entity, key, seq, hash, data
		FROM snapshots
		WHERE entity = ? AND key = ?
		ORDER BY seq DESC, id DESC
		LIMIT 1
	`, entity, key))
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest %s/%s: %w", entity, key, err)
	}
	return snap, nil
}

// History returns every snapshot for (entity, key), oldest first.
// Returns an empty slice (not nil) when there are none.
func (s *Store) History(ctx context.Context, entity, key string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity, key, seq, hash, data
		FROM snapshots
		WHERE entity = ? AND key = ?
		ORDER BY seq ASC, id ASC COLLATE BINARY
	`, entity, key)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	history := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return history, nil
}

// Keys lists the distinct keys stored for an entity in binary order.
func (s *Store) Keys(ctx context.Context, entity string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT key
		FROM snapshots
		WHERE entity = ?
		ORDER BY key ASC COLLATE BINARY
	`, entity)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

// FindByHash returns the earliest snapshot with the given content hash.
func (s *Store) FindByHash(ctx context.Context, hash string) (Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, `
		SELECT id, entity, key, seq, hash, data
		FROM snapshots
		WHERE hash = ?
		ORDER BY seq ASC, id ASC COLLATE BINARY
		LIMIT 1
	`, hash))
	if err != nil {
		return Snapshot{}, fmt.Errorf("find %s: %w", hash, err)
	}
	return snap, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		snap Snapshot
		data string
	)
	err := row.Scan(&snap.ID, &snap.Entity, &snap.Key, &snap.Seq, &snap.Hash, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	snap.Data, err = decodeData(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	return snap, nil
}

func decodeData(data string) (map[string]any, error) {
	v, err := ir.Unmarshal([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	obj, ok := ir.ToGo(v).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode data: not an object")
	}
	return obj, nil
}
