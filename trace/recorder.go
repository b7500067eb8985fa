// Package trace records completed bus transactions into a SQLite database
// for later inspection.
package trace

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	// SQLite driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/buslab/fwprobe/fwbus"
)

const batchSize = 256

const schema = `CREATE TABLE IF NOT EXISTS transactions (
	session TEXT,
	kind TEXT,
	tcode INTEGER,
	offset INTEGER,
	length INTEGER,
	generation INTEGER,
	status TEXT,
	data TEXT,
	elapsed_ns INTEGER,
	recorded_at TEXT
);`

// A Row is one recorded transaction.
type Row struct {
	Session    string
	Kind       string
	Tcode      uint32
	Offset     uint64
	Length     uint32
	Generation uint32
	Status     string
	Data       string
	ElapsedNs  int64
	RecordedAt string
}

// A Recorder buffers transaction rows and writes them to SQLite in batches.
// It implements fwbus.Recorder. Flush failures are reported to stderr and
// never propagate into the transaction path.
type Recorder struct {
	db       *sql.DB
	buffered []Row
}

// New creates a recorder backed by a new database file. An empty path picks
// a unique name in the working directory. The recorder flushes at process
// exit through atexit.
func New(path string) (*Recorder, error) {
	if path == "" {
		path = "fwprobe_trace_" + xid.New().String() + ".sqlite3"
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("trace database %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "recording transactions to %s\n", path)

	return NewWithDB(db)
}

// NewWithDB creates a recorder over an existing database handle.
func NewWithDB(db *sql.DB) (*Recorder, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	r := &Recorder{db: db}
	atexit.Register(r.Flush)
	return r, nil
}

// RecordTransaction buffers one completed transaction.
func (r *Recorder) RecordTransaction(sessionID string, req *fwbus.Request,
	res fwbus.Result, elapsed time.Duration) {
	r.buffered = append(r.buffered, Row{
		Session:    sessionID,
		Kind:       req.Kind.String(),
		Tcode:      req.Tcode,
		Offset:     req.Offset,
		Length:     req.Length,
		Generation: req.Generation,
		Status:     res.Status.String(),
		Data:       hex.EncodeToString(res.Data),
		ElapsedNs:  elapsed.Nanoseconds(),
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})

	if len(r.buffered) >= batchSize {
		r.Flush()
	}
}

// Flush writes all buffered rows.
func (r *Recorder) Flush() {
	if len(r.buffered) == 0 {
		return
	}

	tx, err := r.db.Begin()
	if err != nil {
		r.reportLoss(err)
		return
	}
	stmt, err := tx.Prepare(
		"INSERT INTO transactions VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		r.reportLoss(err)
		return
	}

	for _, row := range r.buffered {
		_, err = stmt.Exec(row.Session, row.Kind, row.Tcode,
			int64(row.Offset), row.Length, row.Generation,
			row.Status, row.Data, row.ElapsedNs, row.RecordedAt)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			r.reportLoss(err)
			return
		}
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		r.reportLoss(err)
		return
	}
	r.buffered = nil
}

func (r *Recorder) reportLoss(err error) {
	fmt.Fprintf(os.Stderr, "trace: dropping %d rows: %v\n", len(r.buffered), err)
	r.buffered = nil
}

// Recent returns the newest rows, most recent first.
func (r *Recorder) Recent(limit int) ([]Row, error) {
	r.Flush()

	rows, err := r.db.Query(
		"SELECT session, kind, tcode, offset, length, generation, "+
			"status, data, elapsed_ns, recorded_at "+
			"FROM transactions ORDER BY recorded_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		var offset int64
		err := rows.Scan(&row.Session, &row.Kind, &row.Tcode, &offset,
			&row.Length, &row.Generation, &row.Status, &row.Data,
			&row.ElapsedNs, &row.RecordedAt)
		if err != nil {
			return nil, err
		}
		row.Offset = uint64(offset)
		out = append(out, row)
	}
	return out, rows.Err()
}

// Close flushes and releases the database.
func (r *Recorder) Close() error {
	r.Flush()
	return r.db.Close()
}
