// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores finalized benchmark series in a SQL database.
package db

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"golang.org/x/net/context"

	"golang.org/x/parbench/benchseries"
)

// ErrNotFound is returned for an upload ID that is not in the
// database.
var ErrNotFound = errors.New("upload not found")

// DB is a high-level interface to a database of benchmark series.
// It's safe for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	lastUpload   *sql.Stmt
	insertUpload *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to limit the connection pool.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
//
// An upload holds one Series. Groups, lines and points keep the
// index they had in the Series so it can be rebuilt in order.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Uploads (
	UploadID VARCHAR(20) PRIMARY KEY,
	Day VARCHAR(8),
	Seq BIGINT UNSIGNED,
	Family VARCHAR(255),
	XName VARCHAR(255),
	GroupBy VARCHAR(1024){{if not .sqlite3}},
	Index (Day, Seq),
	Index (Family){{end}}
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS UploadDaySeq ON Uploads(Day, Seq);
CREATE INDEX IF NOT EXISTS UploadFamily ON Uploads(Family);
{{end}}
CREATE TABLE IF NOT EXISTS SeriesGroups (
	UploadID VARCHAR(20),
	GroupIdx BIGINT UNSIGNED,
	Name VARCHAR(1024),
	PRIMARY KEY (UploadID, GroupIdx),
	FOREIGN KEY (UploadID) REFERENCES Uploads(UploadID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS GroupLabels (
	UploadID VARCHAR(20),
	GroupIdx BIGINT UNSIGNED,
	Name VARCHAR(255),
	Value VARCHAR(255),
{{if not .sqlite3}}
	Index (Name(100), Value(100)),
{{end}}
	PRIMARY KEY (UploadID, GroupIdx, Name),
	FOREIGN KEY (UploadID, GroupIdx) REFERENCES SeriesGroups(UploadID, GroupIdx) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS GroupLabelsNameValue ON GroupLabels(Name, Value);
{{end}}
CREATE TABLE IF NOT EXISTS SeriesLines (
	UploadID VARCHAR(20),
	GroupIdx BIGINT UNSIGNED,
	LineIdx BIGINT UNSIGNED,
	Method VARCHAR(255),
	Label VARCHAR(255),
	Unit VARCHAR(32),
	PRIMARY KEY (UploadID, GroupIdx, LineIdx),
	FOREIGN KEY (UploadID, GroupIdx) REFERENCES SeriesGroups(UploadID, GroupIdx) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS SeriesPoints (
	UploadID VARCHAR(20),
	GroupIdx BIGINT UNSIGNED,
	LineIdx BIGINT UNSIGNED,
	X DOUBLE,
	Y DOUBLE,
	PRIMARY KEY (UploadID, GroupIdx, LineIdx, X),
	FOREIGN KEY (UploadID, GroupIdx, LineIdx) REFERENCES SeriesLines(UploadID, GroupIdx, LineIdx) ON UPDATE CASCADE ON DELETE CASCADE
);
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.lastUpload, err = db.sql.Prepare("SELECT Seq FROM Uploads WHERE Day = ? ORDER BY Seq DESC LIMIT 1")
	if err != nil {
		return err
	}
	db.insertUpload, err = db.sql.Prepare("INSERT INTO Uploads(UploadID, Day, Seq, Family, XName, GroupBy) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing.
var now = time.Now

// An Upload is one Series stored in the database.
type Upload struct {
	// ID is the upload ID, of the form "YYYYMMDD.n", or an ID given
	// to ReplaceUpload.
	ID string

	Family string

	// Points is the number of points stored.
	Points int
}

// InsertSeries stores s as a new upload. Upload IDs are allocated
// sequentially within each (UTC) day.
func (db *DB) InsertSeries(ctx context.Context, s *benchseries.Series) (u *Upload, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	day, seq, err := db.nextSeq(ctx, tx)
	if err != nil {
		return nil, err
	}
	return db.insert(ctx, tx, fmt.Sprintf("%s.%d", day, seq), day, seq, s)
}

// NewUpload reserves the next upload ID with no series attached, so
// that files belonging to the upload can be named before its series is
// known. Fill it with ReplaceUpload, or discard it with DeleteUpload.
func (db *DB) NewUpload(ctx context.Context) (u *Upload, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	day, seq, err := db.nextSeq(ctx, tx)
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("%s.%d", day, seq)
	if _, err := tx.StmtContext(ctx, db.insertUpload).ExecContext(ctx, id, day, seq, "", "", ""); err != nil {
		return nil, err
	}
	return &Upload{ID: id}, nil
}

// nextSeq returns today's date and the next free sequence number on it.
func (db *DB) nextSeq(ctx context.Context, tx *sql.Tx) (day string, seq int64, err error) {
	day = now().UTC().Format("20060102")
	var lastSeq int64
	err = tx.StmtContext(ctx, db.lastUpload).QueryRowContext(ctx, day).Scan(&lastSeq)
	switch err {
	case sql.ErrNoRows:
	case nil:
	default:
		return "", 0, err
	}
	return day, lastSeq + 1, nil
}

// ReplaceUpload stores s under the given upload ID, replacing any
// upload that already has that ID.
func (db *DB) ReplaceUpload(ctx context.Context, id string, s *benchseries.Series) (u *Upload, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if err := deleteUpload(ctx, tx, id); err != nil {
		return nil, err
	}
	// A replaced sequential upload keeps its place in the sequence.
	day, seq, _ := parseUploadID(id)
	return db.insert(ctx, tx, id, day, seq, s)
}

func (db *DB) insert(ctx context.Context, tx *sql.Tx, id, day string, seq int64, s *benchseries.Series) (*Upload, error) {
	if _, err := tx.StmtContext(ctx, db.insertUpload).ExecContext(ctx, id, day, seq, s.FamilyName, s.XName, strings.Join(s.GroupBy, ",")); err != nil {
		return nil, err
	}
	u := &Upload{ID: id, Family: s.FamilyName}
	for gi, g := range s.Groups {
		if _, err := tx.ExecContext(ctx, "INSERT INTO SeriesGroups(UploadID, GroupIdx, Name) VALUES (?, ?, ?)", id, gi, g.Name); err != nil {
			return nil, err
		}
		var args []interface{}
		for i, name := range s.GroupBy {
			if i < len(g.Values) {
				args = append(args, id, gi, name, g.Values[i])
			}
		}
		if err := insertRows(ctx, tx, "GroupLabels(UploadID, GroupIdx, Name, Value)", 4, args); err != nil {
			return nil, err
		}
		for li, l := range g.Lines {
			if _, err := tx.ExecContext(ctx, "INSERT INTO SeriesLines(UploadID, GroupIdx, LineIdx, Method, Label, Unit) VALUES (?, ?, ?, ?, ?, ?)",
				id, gi, li, l.Method, l.Label, l.Unit); err != nil {
				return nil, err
			}
			args = args[:0]
			for _, p := range l.Points {
				args = append(args, id, gi, li, p.X, p.Y)
			}
			if err := insertRows(ctx, tx, "SeriesPoints(UploadID, GroupIdx, LineIdx, X, Y)", 5, args); err != nil {
				return nil, err
			}
			u.Points += len(l.Points)
		}
	}
	return u, nil
}

// maxRowsPerInsert bounds the number of rows in one INSERT, keeping
// the number of placeholders under sqlite's default limit.
const maxRowsPerInsert = 150

// insertRows inserts args, which holds ncols values per row, into
// table in batches.
func insertRows(ctx context.Context, tx *sql.Tx, table string, ncols int, args []interface{}) error {
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", ncols), ", ") + ")"
	for len(args) > 0 {
		n := len(args) / ncols
		if n > maxRowsPerInsert {
			n = maxRowsPerInsert
		}
		query := "INSERT INTO " + table + " VALUES " + strings.TrimSuffix(strings.Repeat(row+", ", n), ", ")
		if _, err := tx.ExecContext(ctx, query, args[:n*ncols]...); err != nil {
			return err
		}
		args = args[n*ncols:]
	}
	return nil
}

// DeleteUpload removes an upload and all of its points.
func (db *DB) DeleteUpload(ctx context.Context, id string) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM Uploads WHERE UploadID = ?", id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return deleteUpload(ctx, tx, id)
}

// deleteUpload deletes the rows of an upload child tables first, so
// it does not depend on the engine enforcing cascades.
func deleteUpload(ctx context.Context, tx *sql.Tx, id string) error {
	for _, table := range []string{"SeriesPoints", "SeriesLines", "GroupLabels", "SeriesGroups", "Uploads"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE UploadID = ?", id); err != nil {
			return err
		}
	}
	return nil
}

// Series reads back the Series stored as upload id. The returned
// Series has no Family; callers may set it from FamilyName.
func (db *DB) Series(ctx context.Context, id string) (*benchseries.Series, error) {
	s := new(benchseries.Series)
	var groupBy string
	err := db.sql.QueryRowContext(ctx, "SELECT Family, XName, GroupBy FROM Uploads WHERE UploadID = ?", id).Scan(&s.FamilyName, &s.XName, &groupBy)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	if groupBy != "" {
		s.GroupBy = strings.Split(groupBy, ",")
	}

	rows, err := db.sql.QueryContext(ctx, "SELECT Name FROM SeriesGroups WHERE UploadID = ? ORDER BY GroupIdx", id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		g := new(benchseries.Group)
		if err := rows.Scan(&g.Name); err != nil {
			rows.Close()
			return nil, err
		}
		if len(s.GroupBy) > 0 {
			g.Values = make([]string, len(s.GroupBy))
		}
		s.Groups = append(s.Groups, g)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = db.sql.QueryContext(ctx, "SELECT GroupIdx, Name, Value FROM GroupLabels WHERE UploadID = ?", id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var gi int
		var name, value string
		if err := rows.Scan(&gi, &name, &value); err != nil {
			rows.Close()
			return nil, err
		}
		if gi >= len(s.Groups) {
			continue
		}
		for i, n := range s.GroupBy {
			if n == name {
				s.Groups[gi].Values[i] = value
			}
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = db.sql.QueryContext(ctx, "SELECT GroupIdx, Method, Label, Unit FROM SeriesLines WHERE UploadID = ? ORDER BY GroupIdx, LineIdx", id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var gi int
		l := new(benchseries.Line)
		if err := rows.Scan(&gi, &l.Method, &l.Label, &l.Unit); err != nil {
			rows.Close()
			return nil, err
		}
		if gi < len(s.Groups) {
			s.Groups[gi].Lines = append(s.Groups[gi].Lines, l)
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = db.sql.QueryContext(ctx, "SELECT GroupIdx, LineIdx, X, Y FROM SeriesPoints WHERE UploadID = ? ORDER BY GroupIdx, LineIdx, X", id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var gi, li int
		var p benchseries.Point
		if err := rows.Scan(&gi, &li, &p.X, &p.Y); err != nil {
			rows.Close()
			return nil, err
		}
		if gi < len(s.Groups) && li < len(s.Groups[gi].Lines) {
			l := s.Groups[gi].Lines[li]
			l.Points = append(l.Points, p)
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return s, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

// A Record is one point of a stored Series, as returned by Query.
type Record struct {
	UploadID string
	Family   string
	Group    string
	Method   string
	Label    string
	Unit     string
	X, Y     float64
}

// Query searches for points matching q. q is a space-separated list
// of "key:value" words. The keys "upload", "family", "method" and
// "label" match the corresponding fields of the point; any other key
// matches a grouping dimension of the point's group.
func (db *DB) Query(ctx context.Context, q string) *Query {
	var (
		where []string
		args  []interface{}
	)
	for _, word := range splitQueryWords(q) {
		colon := strings.Index(word, ":")
		if colon == -1 {
			return &Query{err: fmt.Errorf("query term %q does not have required colon", word)}
		}
		key, value := word[:colon], word[colon+1:]
		switch key {
		case "upload":
			where = append(where, "p.UploadID = ?")
		case "family":
			where = append(where, "u.Family = ?")
		case "method":
			where = append(where, "l.Method = ?")
		case "label":
			where = append(where, "l.Label = ?")
		default:
			where = append(where, "EXISTS (SELECT 1 FROM GroupLabels gl WHERE gl.UploadID = p.UploadID AND gl.GroupIdx = p.GroupIdx AND gl.Name = ? AND gl.Value = ?)")
			args = append(args, key)
		}
		args = append(args, value)
	}
	query := `SELECT p.UploadID, u.Family, g.Name, l.Method, l.Label, l.Unit, p.X, p.Y
FROM SeriesPoints p
JOIN Uploads u ON u.UploadID = p.UploadID
JOIN SeriesGroups g ON g.UploadID = p.UploadID AND g.GroupIdx = p.GroupIdx
JOIN SeriesLines l ON l.UploadID = p.UploadID AND l.GroupIdx = p.GroupIdx AND l.LineIdx = p.LineIdx`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY u.Day, u.Seq, p.UploadID, p.GroupIdx, p.LineIdx, p.X"
	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return &Query{err: err}
	}
	return &Query{rows: rows}
}

// Query is the result of a query.
// Use Next to advance through the rows, making sure to call Close when done:
//
//	q := db.Query(ctx, "family:sync iterations:1000")
//	defer q.Close()
//	for q.Next() {
//		r := q.Result()
//		...
//	}
//	err = q.Err() // get any error encountered during iteration
//	...
type Query struct {
	rows   *sql.Rows
	result Record
	err    error
}

// Next prepares the next result for reading with the Result method.
// It returns false when there are no more results, either by
// reaching the end of the input or an error.
func (q *Query) Next() bool {
	if q.err != nil || q.rows == nil {
		return false
	}
	if !q.rows.Next() {
		q.err = q.rows.Err()
		return false
	}
	r := &q.result
	q.err = q.rows.Scan(&r.UploadID, &r.Family, &r.Group, &r.Method, &r.Label, &r.Unit, &r.X, &r.Y)
	return q.err == nil
}

// Result returns the most recent result generated by a call to Next.
func (q *Query) Result() *Record {
	return &q.result
}

// Err returns the error state of the query.
func (q *Query) Err() error {
	return q.err
}

// Close frees resources associated with the query.
func (q *Query) Close() error {
	if q.rows != nil {
		return q.rows.Close()
	}
	return q.err
}

// splitQueryWords splits q into words using shell syntax (whitespace
// can be escaped with double quotes or with a backslash).
func splitQueryWords(q string) []string {
	var words []string
	word := make([]byte, 0, len(q))
	inWord, quoted, escaped := false, false, false
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case escaped:
			word = append(word, c)
			escaped = false
		case c == '\\':
			escaped, inWord = true, true
		case c == '"':
			quoted, inWord = !quoted, true
		case !quoted && (c == ' ' || c == '\t' || c == '\n'):
			if inWord {
				words = append(words, string(word))
				word = word[:0]
				inWord = false
			}
		default:
			word = append(word, c)
			inWord = true
		}
	}
	if inWord {
		words = append(words, string(word))
	}
	return words
}

// CountUploads returns the number of uploads in the database.
func (db *DB) CountUploads() (int, error) {
	var uploads int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Uploads").Scan(&uploads)
	return uploads, err
}

// UploadIDs returns the IDs of every upload of the named family, or
// of every upload if family is "", oldest first.
func (db *DB) UploadIDs(ctx context.Context, family string) ([]string, error) {
	query, args := "SELECT UploadID FROM Uploads ORDER BY Day, Seq, UploadID", []interface{}(nil)
	if family != "" {
		query, args = "SELECT UploadID FROM Uploads WHERE Family = ? ORDER BY Day, Seq, UploadID", []interface{}{family}
	}
	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, closeRows(rows)
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.lastUpload, db.insertUpload} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}

// parseUploadID splits a sequential upload ID into its day and
// sequence number.
func parseUploadID(id string) (day string, seq int64, ok bool) {
	i := strings.Index(id, ".")
	if i != 8 {
		return "", 0, false
	}
	seq, err := strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return id[:i], seq, true
}
