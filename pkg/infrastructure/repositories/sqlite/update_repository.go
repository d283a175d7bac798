package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

const updateColumns = "id, project_id, update_text, is_completed, timestamp, completion_timestamp, due_date"

// UpdateRepository stores project updates in the project_updates table
type UpdateRepository struct {
	db  *DB
	now func() time.Time
}

// NewUpdateRepository creates a new SQLite update repository
func NewUpdateRepository(db *DB) *UpdateRepository {
	return &UpdateRepository{db: db, now: time.Now}
}

// Verify interface compliance
var _ repositories.UpdateRepository = (*UpdateRepository)(nil)

func (r *UpdateRepository) ListByProject(ctx context.Context, projectID entities.ProjectID) ([]*entities.ProjectUpdate, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `SELECT `+updateColumns+` FROM project_updates
		WHERE project_id = ? ORDER BY timestamp DESC, id DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updates := make([]*entities.ProjectUpdate, 0)
	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

func (r *UpdateRepository) ListByProjects(ctx context.Context, ids []entities.ProjectID) (map[entities.ProjectID][]*entities.ProjectUpdate, error) {
	result := make(map[entities.ProjectID][]*entities.ProjectUpdate, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	rows, err := r.db.conn(ctx).QueryContext(ctx, `SELECT `+updateColumns+` FROM project_updates
		WHERE project_id IN (`+placeholders+`)
		ORDER BY project_id, timestamp DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			return nil, err
		}
		result[u.ProjectID] = append(result[u.ProjectID], u)
	}
	return result, rows.Err()
}

func (r *UpdateRepository) ListAll(ctx context.Context) ([]*entities.UpdateLogEntry, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT pu.id, pu.project_id, pu.update_text, pu.is_completed, pu.timestamp,
		       pu.completion_timestamp, pu.due_date, p.project_no, p.project_name
		FROM project_updates pu
		JOIN projects p ON pu.project_id = p.id
		ORDER BY pu.timestamp DESC, pu.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*entities.UpdateLogEntry, 0)
	for rows.Next() {
		var (
			e         entities.UpdateLogEntry
			projectNo sql.NullString
		)
		if err := scanUpdateInto(rows, &e.ProjectUpdate, &projectNo, &e.ProjectName); err != nil {
			return nil, err
		}
		e.ProjectNo = projectNo.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *UpdateRepository) Count(ctx context.Context, projectID entities.ProjectID) (int, error) {
	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM project_updates WHERE project_id = ?", projectID).Scan(&n)
	return n, err
}

func (r *UpdateRepository) Create(ctx context.Context, u *entities.ProjectUpdate) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now().UTC().Truncate(time.Second)
	}
	res, err := r.db.conn(ctx).ExecContext(ctx,
		"INSERT INTO project_updates (project_id, update_text, timestamp, due_date) VALUES (?, ?, ?, ?)",
		u.ProjectID, u.Text, formatTimestamp(u.CreatedAt), dateValue(u.DueDate))
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = entities.UpdateID(id)
	return nil
}

func (r *UpdateRepository) Get(ctx context.Context, id entities.UpdateID) (*entities.ProjectUpdate, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+updateColumns+` FROM project_updates WHERE id = ?`, id)
	u, err := scanUpdate(row)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r *UpdateRepository) SetCompleted(ctx context.Context, id entities.UpdateID, completed bool, at time.Time) error {
	var completedAt any
	if completed {
		completedAt = formatTimestamp(at)
	}
	res, err := r.db.conn(ctx).ExecContext(ctx,
		"UPDATE project_updates SET is_completed = ?, completion_timestamp = ? WHERE id = ?",
		boolInt(completed), completedAt, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *UpdateRepository) Delete(ctx context.Context, id entities.UpdateID) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, "DELETE FROM project_updates WHERE id = ?", id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func scanUpdate(s rowScanner) (*entities.ProjectUpdate, error) {
	var u entities.ProjectUpdate
	if err := scanUpdateInto(s, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUpdateInto(s rowScanner, u *entities.ProjectUpdate, extra ...any) error {
	var (
		completed          int
		created, completion sql.NullString
		due                sql.NullString
	)
	dest := append([]any{&u.ID, &u.ProjectID, &u.Text, &completed, &created, &completion, &due}, extra...)
	if err := s.Scan(dest...); err != nil {
		return err
	}
	u.Completed = completed == 1
	if ts := parseTimestamp(created); ts != nil {
		u.CreatedAt = *ts
	}
	u.CompletedAt = parseTimestamp(completion)
	u.DueDate = scanDate(due)
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
