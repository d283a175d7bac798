package sqlite

import (
	"context"
	"database/sql"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

const taskColumns = `task_id, project_id, task_name, start_date, end_date, planned_weight,
	actual_start, actual_end, assigned_to, parent_task_id`

// TaskRepository stores tasks in the project_tasks table
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new SQLite task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Verify interface compliance
var _ repositories.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) ListByProject(ctx context.Context, projectID entities.ProjectID) ([]*entities.Task, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `SELECT `+taskColumns+` FROM project_tasks
		WHERE project_id = ?
		ORDER BY parent_task_id NULLS FIRST, start_date, task_id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*entities.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Get(ctx context.Context, id entities.TaskID) (*entities.Task, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+taskColumns+` FROM project_tasks WHERE task_id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *entities.Task) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO project_tasks (project_id, task_name, start_date, end_date, planned_weight,
		                           actual_start, actual_end, assigned_to, parent_task_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, taskArgs(t)...)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = entities.TaskID(id)
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, t *entities.Task) error {
	args := append(taskArgs(t), t.ID)
	res, err := r.db.conn(ctx).ExecContext(ctx, `
		UPDATE project_tasks SET project_id = ?, task_name = ?, start_date = ?, end_date = ?,
		       planned_weight = ?, actual_start = ?, actual_end = ?, assigned_to = ?, parent_task_id = ?
		WHERE task_id = ?`, args...)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *TaskRepository) Delete(ctx context.Context, id entities.TaskID) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		// Detach explicitly so databases opened without foreign keys behave the same
		if _, err := r.db.conn(ctx).ExecContext(ctx,
			"UPDATE project_tasks SET parent_task_id = NULL WHERE parent_task_id = ?", id); err != nil {
			return err
		}
		res, err := r.db.conn(ctx).ExecContext(ctx, "DELETE FROM project_tasks WHERE task_id = ?", id)
		if err != nil {
			return translate(err)
		}
		return requireAffected(res)
	})
}

func taskArgs(t *entities.Task) []any {
	var parent any
	if t.ParentID != nil {
		parent = int64(*t.ParentID)
	}
	return []any{
		t.ProjectID, t.Name, dateValue(t.StartDate), dateValue(t.EndDate), t.PlannedWeight,
		dateValue(t.ActualStart), dateValue(t.ActualEnd), nullString(t.AssignedTo), parent,
	}
}

func scanTask(s rowScanner) (*entities.Task, error) {
	var (
		t                          entities.Task
		start, end, aStart, aEnd   sql.NullString
		assigned                   sql.NullString
		weight                     sql.NullFloat64
		parent                     sql.NullInt64
	)
	err := s.Scan(&t.ID, &t.ProjectID, &t.Name, &start, &end, &weight, &aStart, &aEnd, &assigned, &parent)
	if err != nil {
		return nil, err
	}
	t.StartDate = scanDate(start)
	t.EndDate = scanDate(end)
	t.ActualStart = scanDate(aStart)
	t.ActualEnd = scanDate(aEnd)
	t.PlannedWeight = weight.Float64
	t.AssignedTo = assigned.String
	if parent.Valid {
		id := entities.TaskID(parent.Int64)
		t.ParentID = &id
	}
	return &t, nil
}
