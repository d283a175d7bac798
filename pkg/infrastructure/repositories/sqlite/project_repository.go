package sqlite

import (
	"context"
	"database/sql"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

const projectColumns = `id, BS, year, project_no, client, project_name, amount, status,
	remaining_amount, po_date, po_no, date_completed, pic, address`

// ProjectRepository stores projects in the projects table
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new SQLite project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Verify interface compliance
var _ repositories.ProjectRepository = (*ProjectRepository)(nil)

func (r *ProjectRepository) ListActive(ctx context.Context) ([]*entities.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE (date_completed IS NULL OR date_completed = '') AND status < 100.0
		ORDER BY CASE WHEN remaining_amount IS NULL THEN 1 ELSE 0 END, remaining_amount DESC, id`)
}

func (r *ProjectRepository) ListCompleted(ctx context.Context) ([]*entities.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE (date_completed IS NOT NULL AND date_completed != '') OR status >= 100.0
		ORDER BY date_completed DESC, id DESC`)
}

func (r *ProjectRepository) ListAll(ctx context.Context) ([]*entities.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
}

func (r *ProjectRepository) ListBySegment(ctx context.Context, ds string) ([]*entities.Project, error) {
	if ds == "" {
		return r.ListAll(ctx)
	}
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects WHERE BS = ? ORDER BY id`, ds)
}

func (r *ProjectRepository) Get(ctx context.Context, id entities.ProjectID) (*entities.Project, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *ProjectRepository) GetByProjectNo(ctx context.Context, projectNo string) (*entities.Project, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE project_no = ?`, projectNo)
	p, err := scanProject(row)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *entities.Project) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO projects (BS, year, project_no, client, project_name, amount, status,
		                      remaining_amount, po_date, po_no, date_completed, pic, address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		projectArgs(p)...)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = entities.ProjectID(id)
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *entities.Project) error {
	args := append(projectArgs(p), p.ID)
	res, err := r.db.conn(ctx).ExecContext(ctx, `
		UPDATE projects SET BS = ?, year = ?, project_no = ?, client = ?, project_name = ?, amount = ?,
		                    status = ?, remaining_amount = ?, po_date = ?, po_no = ?,
		                    date_completed = ?, pic = ?, address = ?
		WHERE id = ?`, args...)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *ProjectRepository) Delete(ctx context.Context, id entities.ProjectID) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *ProjectRepository) ProjectNoIndex(ctx context.Context) (map[string]entities.ProjectID, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx,
		"SELECT id, project_no FROM projects WHERE project_no IS NOT NULL AND project_no != ''")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]entities.ProjectID)
	for rows.Next() {
		var (
			id        entities.ProjectID
			projectNo string
		)
		if err := rows.Scan(&id, &projectNo); err != nil {
			return nil, err
		}
		index[projectNo] = id
	}
	return index, rows.Err()
}

func (r *ProjectRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Project, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*entities.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func projectArgs(p *entities.Project) []any {
	var year any
	if p.Year != nil {
		year = *p.Year
	}
	return []any{
		nullString(p.DS), year, nullString(p.ProjectNo), nullString(p.Client), p.Name,
		p.Amount, p.Status, p.RemainingAmount, dateValue(p.PODate), nullString(p.PONo),
		dateValue(p.DateCompleted), nullString(p.PIC), nullString(p.Address),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(s rowScanner) (*entities.Project, error) {
	var (
		p                                      entities.Project
		ds, projectNo, client, poNo, pic, addr sql.NullString
		poDate, completed                      sql.NullString
		year                                   sql.NullInt64
	)
	err := s.Scan(&p.ID, &ds, &year, &projectNo, &client, &p.Name, &p.Amount, &p.Status,
		&p.RemainingAmount, &poDate, &poNo, &completed, &pic, &addr)
	if err != nil {
		return nil, err
	}
	p.DS = ds.String
	p.ProjectNo = projectNo.String
	p.Client = client.String
	p.PONo = poNo.String
	p.PIC = pic.String
	p.Address = addr.String
	p.PODate = scanDate(poDate)
	p.DateCompleted = scanDate(completed)
	if year.Valid {
		y := int(year.Int64)
		p.Year = &y
	}
	return &p, nil
}

func dateValue(d entities.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func scanDate(ns sql.NullString) entities.Date {
	if !ns.Valid {
		return entities.Date{}
	}
	d, _ := entities.ParseFlexibleDate(ns.String)
	return d
}
