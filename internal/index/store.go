// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"
)

// chunk is one embedded window of section text.
type chunk struct {
	ID        string
	Section   int
	Position  int
	Text      string
	Embedding []float32
}

// store is the private SQLite database behind one Index. Each store opens its
// own in-memory database, so nothing is shared between jobs.
type store struct {
	db *sql.DB
}

func openStore(ctx context.Context) (*store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	s := &store{db: db}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *store) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE sections (
			idx INTEGER PRIMARY KEY,
			number TEXT,
			title TEXT,
			body TEXT
		)`,
		`CREATE TABLE chunks (
			id TEXT PRIMARY KEY,
			section INTEGER NOT NULL REFERENCES sections(idx),
			position INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL
		)`,
		`CREATE INDEX idx_chunks_section ON chunks(section, position)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (s *store) close() error {
	return s.db.Close()
}

// insert writes a section row and its chunks in one transaction.
func (s *store) insert(ctx context.Context, idx int, number, title, body string, chunks []chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sections (idx, number, title, body) VALUES (?, ?, ?, ?)`,
		idx, number, title, body,
	); err != nil {
		return fmt.Errorf("inserting section %d: %w", idx, err)
	}
	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (id, section, position, content, embedding) VALUES (?, ?, ?, ?, ?)`,
			c.ID, idx, c.Position, c.Text, encodeVector(c.Embedding),
		); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// errUnknownSection reports a section index that was never inserted.
var errUnknownSection = errors.New("unknown section")

// sectionChunks returns the chunks of one section in position order.
func (s *store) sectionChunks(ctx context.Context, idx int) ([]chunk, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sections WHERE idx = ?`, idx,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("looking up section %d: %w", idx, err)
	}
	if exists == 0 {
		return nil, errUnknownSection
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, position, content, embedding FROM chunks WHERE section = ? ORDER BY position`, idx)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var out []chunk
	for rows.Next() {
		c := chunk{Section: idx}
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Position, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = decodeVector(blob)
		out = append(out, c)
	}
	return out, rows.Err()
}

// count returns the number of sections and chunks stored.
func (s *store) count(ctx context.Context) (sections, chunks int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT (SELECT count(*) FROM sections), (SELECT count(*) FROM chunks)`,
	).Scan(&sections, &chunks)
	return sections, chunks, err
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
