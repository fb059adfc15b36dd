package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"visitorreg/internal/audit"
	id "visitorreg/pkg/domain"
	"visitorreg/pkg/paging"
)

// Store persists audit entries in the append-only audit_entries table.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts one entry. Entries are never updated or deleted.
func (s *Store) Append(ctx context.Context, entry *audit.Entry) error {
	query := `
		INSERT INTO audit_entries (
			id, occurred_at, actor, action, target_type, target_id,
			result, detail, source_address, client_device, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		entry.OccurredAt,
		entry.Actor,
		string(entry.Action),
		entry.TargetType,
		nullString(entry.TargetID),
		string(entry.Result),
		nullString(entry.Detail),
		nullString(entry.SourceAddress),
		nullString(entry.ClientDevice),
		nullString(entry.RequestID),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Search returns one page of matching entries, most recent first, and the total
// number of matches.
func (s *Store) Search(ctx context.Context, filter audit.Filter, page paging.Request) ([]*audit.Entry, int, error) {
	where, args := buildWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM audit_entries` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}
	if total == 0 {
		return []*audit.Entry{}, 0, nil
	}

	args = append(args, page.Size, page.Offset())
	query := fmt.Sprintf(`
		SELECT id, occurred_at, actor, action, target_type, target_id,
			   result, detail, source_address, client_device, request_id
		FROM audit_entries%s
		ORDER BY occurred_at DESC, id
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func buildWhere(filter audit.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.From != nil {
		add("occurred_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("occurred_at <= $%d", *filter.To)
	}
	if filter.Actor != "" {
		add("actor ILIKE $%d", "%"+escapeLike(filter.Actor)+"%")
	}
	if len(filter.Actions) > 0 {
		actions := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			actions[i] = string(a)
		}
		add("action = ANY($%d)", pq.Array(actions))
	}
	if filter.Result != "" {
		add("result = $%d", string(filter.Result))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEntries(rows *sql.Rows) ([]*audit.Entry, error) {
	entries := []*audit.Entry{}
	for rows.Next() {
		var (
			entry                                       audit.Entry
			entryID                                     uuid.UUID
			action, result                              string
			targetID, detail, source, device, requestID sql.NullString
		)
		if err := rows.Scan(
			&entryID,
			&entry.OccurredAt,
			&entry.Actor,
			&action,
			&entry.TargetType,
			&targetID,
			&result,
			&detail,
			&source,
			&device,
			&requestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.ID = id.AuditEntryID(entryID)
		entry.Action = audit.Action(action)
		entry.Result = audit.Result(result)
		entry.TargetID = targetID.String
		entry.Detail = detail.String
		entry.SourceAddress = source.String
		entry.ClientDevice = device.String
		entry.RequestID = requestID.String
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
