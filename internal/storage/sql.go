package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"exam_exchange/internal/model"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
	searchLimit    = 50
)

// Dialect selects the SQL flavour of a Store.
type Dialect string

// Supported dialects.
const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements Storage on top of database/sql.
type Store struct {
	db      *sql.DB
	q       querier
	tx      *sql.Tx
	dialect Dialect
}

func newStore(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, q: db, dialect: d}
}

// Dialect returns the SQL flavour of the store.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the underlying database connection. It is a no-op on a
// transaction-bound store.
func (s *Store) Close() error {
	if s.tx != nil {
		return nil
	}
	return s.db.Close()
}

// InTx runs fn inside a transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx Storage) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Store{db: s.db, q: tx, tx: tx, dialect: s.dialect}); err != nil {
		return err
	}
	return wrap("commit tx", tx.Commit())
}

const advertColumns = `id, family_token, external_offer_id, offered_at, subject_code, subject_name,
	desired_date, contact_email, active, highlighted`

// CreateAdvert inserts a new row and populates its ID.
func (s *Store) CreateAdvert(ctx context.Context, a *model.Advert) error {
	now := time.Now().UTC().Format(dateTimeLayout)
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO adverts (family_token, external_offer_id, offered_at, subject_code, subject_name,
		                      desired_date, contact_email, active, highlighted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Token.String(), nullInt(a.ExternalOfferID), nullTime(a.OfferedAt, dateTimeLayout),
		nullString(a.SubjectCode), nullString(a.SubjectName), nullTime(a.DesiredDate, dateLayout),
		a.ContactEmail, boolToInt(a.Active), boolToInt(a.Highlighted), now,
	)
	if err != nil {
		return wrap("insert advert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrap("last insert id", err)
	}
	a.ID = id
	return nil
}

// UpdateAdvert persists every column of an existing row.
func (s *Store) UpdateAdvert(ctx context.Context, a *model.Advert) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE adverts
		 SET family_token = ?, external_offer_id = ?, offered_at = ?, subject_code = ?, subject_name = ?,
		     desired_date = ?, contact_email = ?, active = ?, highlighted = ?
		 WHERE id = ?`,
		a.Token.String(), nullInt(a.ExternalOfferID), nullTime(a.OfferedAt, dateTimeLayout),
		nullString(a.SubjectCode), nullString(a.SubjectName), nullTime(a.DesiredDate, dateLayout),
		a.ContactEmail, boolToInt(a.Active), boolToInt(a.Highlighted), a.ID,
	)
	if err != nil {
		return wrap("update advert", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("rows affected", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetActiveAdvert returns a listed row by its ID.
func (s *Store) GetActiveAdvert(ctx context.Context, id int64) (*model.Advert, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+advertColumns+` FROM adverts WHERE id = ? AND active = 1`, id,
	)
	a, err := scanAdvert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("get advert", err)
	}
	return a, nil
}

// ListActiveAdverts returns listed rows, highlighted first. An empty
// subjectCode lists every subject.
func (s *Store) ListActiveAdverts(ctx context.Context, subjectCode string) ([]model.Advert, error) {
	query := `SELECT ` + advertColumns + ` FROM adverts WHERE active = 1`
	var args []any
	if subjectCode != "" {
		query += ` AND subject_code = ?`
		args = append(args, subjectCode)
	}
	query += ` ORDER BY highlighted DESC, id`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("query adverts", err)
	}
	defer func() { _ = rows.Close() }()
	return scanAdverts(rows)
}

// ListFamily returns every row sharing token, or ErrNotFound if there is none.
func (s *Store) ListFamily(ctx context.Context, token model.Token) ([]model.Advert, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+advertColumns+` FROM adverts WHERE family_token = ? ORDER BY id`, token.String(),
	)
	if err != nil {
		return nil, wrap("query family", err)
	}
	defer func() { _ = rows.Close() }()

	adverts, err := scanAdverts(rows)
	if err != nil {
		return nil, err
	}
	if len(adverts) == 0 {
		return nil, ErrNotFound
	}
	return adverts, nil
}

// ListFamilySearchDates returns the distinct desired dates of a family in
// ascending order.
func (s *Store) ListFamilySearchDates(ctx context.Context, token model.Token) ([]time.Time, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT DISTINCT desired_date FROM adverts
		 WHERE family_token = ? AND desired_date IS NOT NULL
		 ORDER BY desired_date`, token.String(),
	)
	if err != nil {
		return nil, wrap("query search dates", err)
	}
	defer func() { _ = rows.Close() }()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, wrap("scan search date", err)
		}
		d, err := parseTime(raw)
		if err != nil {
			return nil, wrap("parse search date", err)
		}
		dates = append(dates, d)
	}
	return dates, wrap("iterate search dates", rows.Err())
}

// SetFamilyActive flips the listing flag of every row sharing token.
func (s *Store) SetFamilyActive(ctx context.Context, token model.Token, active bool) (int64, error) {
	res, err := s.q.ExecContext(ctx,
		`UPDATE adverts SET active = ? WHERE family_token = ?`, boolToInt(active), token.String(),
	)
	if err != nil {
		return 0, wrap("update family", err)
	}
	n, err := res.RowsAffected()
	return n, wrap("rows affected", err)
}

// DeleteFamily removes every row sharing token.
func (s *Store) DeleteFamily(ctx context.Context, token model.Token) (int64, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM adverts WHERE family_token = ?`, token.String())
	if err != nil {
		return 0, wrap("delete family", err)
	}
	n, err := res.RowsAffected()
	return n, wrap("rows affected", err)
}

// PutSubject inserts or replaces subject metadata.
func (s *Store) PutSubject(ctx context.Context, subj model.SubjectInfo) error {
	query := `INSERT INTO subjects (code, title, title_local, language, faculty, department, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`
	switch s.dialect {
	case DialectMySQL:
		query += ` ON DUPLICATE KEY UPDATE title = VALUES(title), title_local = VALUES(title_local),
		 language = VALUES(language), faculty = VALUES(faculty), department = VALUES(department),
		 status = VALUES(status)`
	default:
		query += ` ON CONFLICT(code) DO UPDATE SET title = excluded.title, title_local = excluded.title_local,
		 language = excluded.language, faculty = excluded.faculty, department = excluded.department,
		 status = excluded.status`
	}
	_, err := s.q.ExecContext(ctx, query,
		subj.Code, subj.Title, subj.TitleLocal, subj.Language, subj.Faculty, subj.Department, subj.Status,
	)
	return wrap("put subject", err)
}

// GetSubject returns subject metadata by code.
func (s *Store) GetSubject(ctx context.Context, code string) (*model.SubjectInfo, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT code, title, title_local, language, faculty, department, status
		 FROM subjects WHERE code = ?`, code,
	)
	subj, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("get subject", err)
	}
	return &subj, nil
}

// SearchSubjects returns taught subjects whose English or local title
// contains substring.
func (s *Store) SearchSubjects(ctx context.Context, substring string) ([]model.SubjectInfo, error) {
	pattern := "%" + escapeLike(substring) + "%"
	rows, err := s.q.QueryContext(ctx,
		`SELECT code, title, title_local, language, faculty, department, status
		 FROM subjects
		 WHERE (title LIKE ? ESCAPE '!' OR title_local LIKE ? ESCAPE '!') AND status = ?
		 ORDER BY code
		 LIMIT ?`,
		pattern, pattern, model.SubjectTaught, searchLimit,
	)
	if err != nil {
		return nil, wrap("query subjects", err)
	}
	defer func() { _ = rows.Close() }()

	var subjects []model.SubjectInfo
	for rows.Next() {
		subj, err := scanSubject(rows)
		if err != nil {
			return nil, wrap("scan subject", err)
		}
		subjects = append(subjects, subj)
	}
	return subjects, wrap("iterate subjects", rows.Err())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullTime(t *time.Time, layout string) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(layout), Valid: true}
}

// parseTime accepts every rendering the drivers hand back for DATE and
// DATETIME columns stored by this package.
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{dateTimeLayout, dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Parse(dateTimeLayout, raw)
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAdvert(row scannable) (*model.Advert, error) {
	var a model.Advert
	var token string
	var offerID sql.NullInt64
	var offered, code, name, desired sql.NullString
	var active, highlighted int
	err := row.Scan(&a.ID, &token, &offerID, &offered, &code, &name, &desired,
		&a.ContactEmail, &active, &highlighted)
	if err != nil {
		return nil, err
	}

	a.Token, err = model.ParseToken(token)
	if err != nil {
		return nil, err
	}
	a.ExternalOfferID = offerID.Int64
	a.SubjectCode = code.String
	a.SubjectName = name.String
	a.Active = active == 1
	a.Highlighted = highlighted == 1
	if offered.Valid {
		t, err := parseTime(offered.String)
		if err != nil {
			return nil, err
		}
		a.OfferedAt = &t
	}
	if desired.Valid {
		t, err := parseTime(desired.String)
		if err != nil {
			return nil, err
		}
		a.DesiredDate = &t
	}
	return &a, nil
}

func scanAdverts(rows *sql.Rows) ([]model.Advert, error) {
	var adverts []model.Advert
	for rows.Next() {
		a, err := scanAdvert(rows)
		if err != nil {
			return nil, wrap("scan advert", err)
		}
		adverts = append(adverts, *a)
	}
	return adverts, wrap("iterate adverts", rows.Err())
}

func scanSubject(row scannable) (model.SubjectInfo, error) {
	var s model.SubjectInfo
	err := row.Scan(&s.Code, &s.Title, &s.TitleLocal, &s.Language, &s.Faculty, &s.Department, &s.Status)
	return s, err
}
