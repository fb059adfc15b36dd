package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"visitorreg/internal/visitor/models"
	id "visitorreg/pkg/domain"
	"visitorreg/pkg/paging"
	"visitorreg/pkg/platform/sentinel"
)

const visitorColumns = `
	id, register_no, name, id_number_masked, company, purpose, host_name,
	check_in_at, check_out_at, phone, note, status,
	created_at, created_by, updated_at, updated_by, version`

// PostgresStore persists visitors in PostgreSQL. Register number uniqueness is
// enforced by a unique index; updates are guarded by the version column.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed visitor store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Add inserts a new visitor at version 1. A taken register number yields
// sentinel.ErrAlreadyUsed so the caller can allocate again.
func (s *PostgresStore) Add(ctx context.Context, v *models.Visitor) error {
	query := `
		INSERT INTO visitors (` + visitorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 1)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(v.ID),
		v.RegisterNo,
		v.Name,
		nullString(v.IDNumberMasked),
		nullString(v.Company),
		v.Purpose,
		v.HostName,
		v.CheckInAt,
		v.CheckOutAt,
		nullString(v.Phone),
		nullString(v.Note),
		int16(v.Status),
		v.CreatedAt,
		v.CreatedBy,
		v.UpdatedAt,
		nullString(v.UpdatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("register number %s: %w", v.RegisterNo, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert visitor: %w", err)
	}
	v.Version = 1
	return nil
}

// Update writes the mutable fields if the stored version still equals v.Version.
// No matching row means either the visitor is gone or another write won.
func (s *PostgresStore) Update(ctx context.Context, v *models.Visitor) error {
	query := `
		UPDATE visitors
		SET check_out_at = $3, status = $4, updated_at = $5, updated_by = $6, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`
	var newVersion int64
	err := s.db.QueryRowContext(ctx, query,
		uuid.UUID(v.ID),
		v.Version,
		v.CheckOutAt,
		int16(v.Status),
		v.UpdatedAt,
		nullString(v.UpdatedBy),
	).Scan(&newVersion)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM visitors WHERE id = $1)`, uuid.UUID(v.ID),
		).Scan(&exists); err != nil {
			return fmt.Errorf("check visitor exists: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("visitor %s version %d: %w", v.ID, v.Version, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update visitor: %w", err)
	}
	v.Version = newVersion
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors WHERE id = $1`
	v, err := scanVisitor(s.db.QueryRowContext(ctx, query, uuid.UUID(visitorID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find visitor by id: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) FindByRegisterNo(ctx context.Context, registerNo string) (*models.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors WHERE register_no = $1`
	v, err := scanVisitor(s.db.QueryRowContext(ctx, query, registerNo))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find visitor by register number: %w", err)
	}
	return v, nil
}

// Search returns one page ordered by check-in time, most recent first, and the
// total number of matches before paging.
func (s *PostgresStore) Search(ctx context.Context, filter models.SearchFilter, page paging.Request) ([]*models.Visitor, int, error) {
	where, args := buildSearchWhere(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visitors`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count visitors: %w", err)
	}
	if total == 0 {
		return []*models.Visitor{}, 0, nil
	}

	args = append(args, page.Size, page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM visitors%s
		ORDER BY check_in_at DESC, register_no DESC
		LIMIT $%d OFFSET $%d`, visitorColumns, where, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search visitors: %w", err)
	}
	defer rows.Close()

	visitors := []*models.Visitor{}
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan visitor: %w", err)
		}
		visitors = append(visitors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate visitors: %w", err)
	}
	return visitors, total, nil
}

// PeekLatestRegisterNo returns the lexicographically greatest register number
// under dayPrefix. The fixed-width suffix makes that the highest sequence.
func (s *PostgresStore) PeekLatestRegisterNo(ctx context.Context, dayPrefix string) (string, bool, error) {
	var latest string
	err := s.db.QueryRowContext(ctx, `
		SELECT register_no FROM visitors
		WHERE register_no LIKE $1
		ORDER BY register_no DESC
		LIMIT 1
	`, escapeLike(dayPrefix)+"%").Scan(&latest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("peek latest register number: %w", err)
	}
	return latest, true, nil
}

func buildSearchWhere(filter models.SearchFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.From != nil {
		add("check_in_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("check_in_at <= $%d", *filter.To)
	}
	if filter.Name != "" {
		add("name ILIKE $%d", "%"+escapeLike(filter.Name)+"%")
	}
	if filter.Company != "" {
		add("company ILIKE $%d", "%"+escapeLike(filter.Company)+"%")
	}
	if filter.HostName != "" {
		add("host_name ILIKE $%d", "%"+escapeLike(filter.HostName)+"%")
	}
	if filter.Status != nil {
		add("status = $%d", int16(*filter.Status))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type visitorRow interface {
	Scan(dest ...any) error
}

func scanVisitor(row visitorRow) (*models.Visitor, error) {
	var (
		v                                       models.Visitor
		visitorID                               uuid.UUID
		masked, company, phone, note, updatedBy sql.NullString
		checkOutAt, updatedAt                   sql.NullTime
		status                                  int16
	)
	if err := row.Scan(
		&visitorID,
		&v.RegisterNo,
		&v.Name,
		&masked,
		&company,
		&v.Purpose,
		&v.HostName,
		&v.CheckInAt,
		&checkOutAt,
		&phone,
		&note,
		&status,
		&v.CreatedAt,
		&v.CreatedBy,
		&updatedAt,
		&updatedBy,
		&v.Version,
	); err != nil {
		return nil, err
	}
	v.ID = id.VisitorID(visitorID)
	v.IDNumberMasked = masked.String
	v.Company = company.String
	v.Phone = phone.String
	v.Note = note.String
	v.UpdatedBy = updatedBy.String
	v.Status = models.Status(status)
	v.CheckOutAt = timePtr(checkOutAt)
	v.UpdatedAt = timePtr(updatedAt)
	return &v, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	out := t.Time
	return &out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
