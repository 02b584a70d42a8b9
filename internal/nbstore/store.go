// Package nbstore persists the inbound assertion stream to a
// database/sql backend and replays it back through an Engine to
// reconstruct state after a restart (spec §1: "restores state by
// replaying assertion logs fed to it", made concrete since the engine
// itself never persists the cell graph — see SPEC_FULL.md §6/Non-goals).
//
// Grounded on internal/database/database.go and db_manager.go's
// multi-driver database/sql registration pattern (sql.Open keyed by a
// driver-name string, a pooled *sql.DB wrapped in a small manager
// struct) — generalized from that module's ad hoc security-scan queries
// to one fixed append-only table.
package nbstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbengine"
	"nodebrain/internal/nberrors"
	"nodebrain/internal/nbobject"
)

// replayGroup deduplicates concurrent Replay calls against the same
// Store: a restart path that accidentally invokes Replay from two
// goroutines (e.g. an HTTP health probe racing the startup replay)
// gets the one in-flight replay's result instead of reading the
// assertion log twice and re-asserting every row a second time.
var replayGroup singleflight.Group

// Row is one recorded assertion (spec §6 inbound assertion stream:
// "(term, expr-text, timestamp)").
type Row struct {
	ID      string
	Term    string
	Literal string
	At      time.Time
}

// Store persists the assertion stream to a database/sql backend. driver
// selects the backend the same way db_manager.go's Connect does
// ("sqlite"/"postgres"/"mysql"); the default, pure-Go sqlite driver
// needs no CGO toolchain.
type Store struct {
	db     *sql.DB
	driver string
}

// Open opens (creating if necessary) the assertion log at dsn using
// driver, and ensures the schema exists.
func Open(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "nbstore: open %s", driver)
	}
	if driver == "sqlite" {
		// An in-process sqlite connection is not safe for concurrent
		// writers, and a ":memory:" DSN gives each connection its own
		// private database — pin the pool to one connection so the
		// schema created by ensureSchema below is the one every later
		// query sees (db_manager.go pins its own pool size per backend
		// the same way, via SetMaxOpenConns).
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "nbstore: ping %s", driver)
	}
	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS assertions (
		id        TEXT PRIMARY KEY,
		term      TEXT NOT NULL,
		literal   TEXT NOT NULL,
		asserted_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return errors.Wrap(err, "nbstore: create schema")
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// insertPlaceholders returns the INSERT's parameter markers for driver:
// lib/pq (the "postgres" driver) rejects the `?` positional style
// sqlite/mysql accept and requires `$1, $2, …` instead.
func insertPlaceholders(driver string) string {
	if driver == "postgres" {
		return "$1, $2, $3, $4"
	}
	return "?, ?, ?, ?"
}

// Append records one assertion (spec §6: "a sequence of (term,
// expr-text) records" — appended in arrival order so Replay can
// reconstruct the exact firing history).
func (s *Store) Append(ctx context.Context, term, literal string) (Row, error) {
	row := Row{ID: uuid.NewString(), Term: term, Literal: literal, At: time.Now().UTC()}
	query := fmt.Sprintf(
		`INSERT INTO assertions (id, term, literal, asserted_at) VALUES (%s)`,
		insertPlaceholders(s.driver))
	_, err := s.db.ExecContext(ctx, query, row.ID, row.Term, row.Literal, row.At)
	if err != nil {
		return Row{}, errors.Wrap(err, "nbstore: append assertion")
	}
	return row, nil
}

// All returns every recorded row in arrival order.
func (s *Store) All(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, term, literal, asserted_at FROM assertions ORDER BY asserted_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "nbstore: query assertions")
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Term, &r.Literal, &r.At); err != nil {
			return nil, errors.Wrap(err, "nbstore: scan assertion row")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Replay re-feeds every stored row through e.AssertAndReact, in arrival
// order, rooted at context (typically e.Root()). It returns the number
// of rows replayed; a row whose literal cannot be parsed is a User error
// and aborts the replay rather than silently skipping state, since a
// partially-reconstructed graph is worse than a loud failure at startup.
func Replay(ctx context.Context, s *Store, e *nbengine.Engine, context_ *nbcell.Term) (int, error) {
	key := fmt.Sprintf("%p:%p", s, e)
	v, err, _ := replayGroup.Do(key, func() (interface{}, error) {
		rows, err := s.All(ctx)
		if err != nil {
			return 0, err
		}
		for i, row := range rows {
			value, err := ParseLiteral(e, row.Literal)
			if err != nil {
				return i, err
			}
			if _, _, _, err := e.AssertAndReact(context_, row.Term, value); err != nil {
				return i, err
			}
		}
		return len(rows), nil
	})
	return v.(int), err
}

// ParseLiteral reads the small literal grammar nbstore/nbtransport
// records accept for an asserted value: `?` (Unknown), `true`/`false`
// (the boolean Reals), a bare number (interned via InternReal), or a
// double-quoted string (interned via InternString). There is no general
// expression grammar in scope (no tokenizer/parser component), per
// SPEC_FULL.md's "builds small condition trees directly via the Engine
// API, the way an external parser would".
func ParseLiteral(e *nbengine.Engine, text string) (nbobject.Object, error) {
	switch text {
	case "?":
		return nbobject.Unknown, nil
	case "true":
		return nbobject.True, nil
	case "false":
		return nbobject.False, nil
	}
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return e.InternString(text[1 : len(text)-1]), nil
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return e.InternReal(v), nil
	}
	return nil, nberrors.Userf("cannot parse assertion literal %q", text)
}
