package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	description TEXT    NOT NULL,
	done        INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);`

// SQLiteStore keeps records in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) exec(ctx context.Context, q string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) Add(ctx context.Context, description string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (description, created_at) VALUES (?, ?)`,
		description, s.now().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) Complete(ctx context.Context, id int64, done bool) (bool, error) {
	return s.exec(ctx, `UPDATE todos SET done = ? WHERE id = ?`, done, id)
}

func (s *SQLiteStore) ToggleAll(ctx context.Context, done bool) (bool, error) {
	return s.exec(ctx, `UPDATE todos SET done = ? WHERE done <> ?`, done, done)
}

func (s *SQLiteStore) Remove(ctx context.Context, id int64) (bool, error) {
	return s.exec(ctx, `DELETE FROM todos WHERE id = ?`, id)
}

func (s *SQLiteStore) ClearCompleted(ctx context.Context) (bool, error) {
	return s.exec(ctx, `DELETE FROM todos WHERE done = 1`)
}

func (s *SQLiteStore) Edit(ctx context.Context, id int64, description string) (bool, error) {
	return s.exec(ctx, `UPDATE todos SET description = ? WHERE id = ?`, description, id)
}

func (s *SQLiteStore) List(ctx context.Context, p Pagination) ([]Record, error) {
	var (
		q    strings.Builder
		args []any
	)
	q.WriteString("SELECT id, description, done, created_at FROM todos")
	var where []string
	if p.After != nil {
		where = append(where, "(id, created_at) > (?, ?)")
		args = append(args, p.After.ID, p.After.CreatedAt)
	}
	if p.Before != nil {
		where = append(where, "(id, created_at) < (?, ?)")
		args = append(args, p.Before.ID, p.Before.CreatedAt)
	}
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if p.Backward() {
		q.WriteString(" ORDER BY id DESC, created_at DESC")
	} else {
		q.WriteString(" ORDER BY id ASC, created_at ASC")
	}
	q.WriteString(" LIMIT ?")
	args = append(args, p.Limit()+1)

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Description, &r.Done, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Total(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
