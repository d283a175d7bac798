package sqlite

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

const forecastViewQuery = `
	SELECT fi.id, fi.project_id, fi.forecast_input_type, fi.forecast_input_value,
	       fi.is_forecast_completed, fi.forecast_date, fi.is_deduction,
	       p.project_no, p.project_name, p.amount, p.status, p.pic
	FROM forecast_items fi
	JOIN projects p ON fi.project_id = p.id`

// ForecastRepository stores forecast entries in the forecast_items table
type ForecastRepository struct {
	db *DB
}

// NewForecastRepository creates a new SQLite forecast repository
func NewForecastRepository(db *DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

// Verify interface compliance
var _ repositories.ForecastRepository = (*ForecastRepository)(nil)

func (r *ForecastRepository) ListAll(ctx context.Context) ([]*entities.ForecastView, error) {
	return r.list(ctx, forecastViewQuery+" ORDER BY fi.forecast_date, p.project_no, fi.id")
}

func (r *ForecastRepository) ListForYear(ctx context.Context, year int, ds string) ([]*entities.ForecastView, error) {
	query := forecastViewQuery + " WHERE strftime('%Y', fi.forecast_date) = ?"
	args := []any{strconv.Itoa(year)}
	if ds != "" {
		query += " AND p.BS = ?"
		args = append(args, ds)
	}
	return r.list(ctx, query+" ORDER BY fi.forecast_date, fi.id", args...)
}

func (r *ForecastRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM forecast_items").Scan(&n)
	return n, err
}

func (r *ForecastRepository) Create(ctx context.Context, f *entities.ForecastEntry) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO forecast_items
			(project_id, forecast_input_type, forecast_input_value, forecast_date, is_deduction, is_forecast_completed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.ProjectID, string(f.InputType), f.Value, dateValue(f.Date), boolInt(f.Deduction), boolInt(f.Completed))
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = entities.ForecastID(id)
	return nil
}

func (r *ForecastRepository) Get(ctx context.Context, id entities.ForecastID) (*entities.ForecastView, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, forecastViewQuery+" WHERE fi.id = ?", id)
	v, err := scanForecastView(row)
	if err != nil {
		return nil, translate(err)
	}
	return v, nil
}

func (r *ForecastRepository) SetCompleted(ctx context.Context, id entities.ForecastID, completed bool) error {
	res, err := r.db.conn(ctx).ExecContext(ctx,
		"UPDATE forecast_items SET is_forecast_completed = ? WHERE id = ?", boolInt(completed), id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *ForecastRepository) Delete(ctx context.Context, id entities.ForecastID) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, "DELETE FROM forecast_items WHERE id = ?", id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *ForecastRepository) ProjectIDsWithForecasts(ctx context.Context) (map[entities.ProjectID]bool, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, "SELECT DISTINCT project_id FROM forecast_items")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[entities.ProjectID]bool)
	for rows.Next() {
		var id entities.ProjectID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (r *ForecastRepository) list(ctx context.Context, query string, args ...any) ([]*entities.ForecastView, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]*entities.ForecastView, 0)
	for rows.Next() {
		v, err := scanForecastView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func scanForecastView(s rowScanner) (*entities.ForecastView, error) {
	var (
		v                    entities.ForecastView
		inputType            string
		completed, deduction int
		date                 sql.NullString
		projectNo, pic       sql.NullString
	)
	err := s.Scan(&v.ID, &v.ProjectID, &inputType, &v.Value, &completed, &date, &deduction,
		&projectNo, &v.ProjectName, &v.ProjectAmount, &v.ProjectStatus, &pic)
	if err != nil {
		return nil, err
	}
	v.InputType = entities.InputType(inputType)
	v.Completed = completed == 1
	v.Deduction = deduction == 1
	v.Date = scanDate(date)
	v.ProjectNo = projectNo.String
	v.ProjectPIC = pic.String
	return &v, nil
}
