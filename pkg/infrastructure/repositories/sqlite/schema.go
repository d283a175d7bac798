package sqlite

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/domain/entities"
)

func schema() string {
	roles := make([]string, len(entities.ValidRoles))
	for i, r := range entities.ValidRoles {
		roles[i] = "'" + string(r) + "'"
	}
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK(role IN (%s))
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_username ON users (username);

	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		BS TEXT, year INTEGER, project_no TEXT UNIQUE, client TEXT,
		project_name TEXT NOT NULL, amount REAL,
		status REAL NOT NULL DEFAULT 0.0 CHECK(status >= 0.0 AND status <= 100.0),
		remaining_amount REAL, total_running_weeks INTEGER,
		po_date TEXT, po_no TEXT, date_completed TEXT, pic TEXT, address TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_project_no ON projects (project_no);

	CREATE TABLE IF NOT EXISTS project_updates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		update_text TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0 CHECK(is_completed IN (0, 1)),
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		completion_timestamp DATETIME, due_date TEXT,
		FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_update_project_id ON project_updates (project_id);

	CREATE TABLE IF NOT EXISTS forecast_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		forecast_date TEXT,
		forecast_input_type TEXT NOT NULL CHECK(forecast_input_type IN ('percent', 'amount')),
		forecast_input_value REAL NOT NULL,
		is_forecast_completed INTEGER NOT NULL DEFAULT 0 CHECK(is_forecast_completed IN (0, 1)),
		is_deduction INTEGER NOT NULL DEFAULT 0 CHECK(is_deduction IN (0, 1)),
		FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_forecast_project_id ON forecast_items (project_id);

	CREATE TABLE IF NOT EXISTS project_tasks (
		task_id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		task_name TEXT NOT NULL, start_date TEXT, end_date TEXT,
		planned_weight REAL, actual_start TEXT, actual_end TEXT,
		assigned_to TEXT, parent_task_id INTEGER,
		FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE,
		FOREIGN KEY(parent_task_id) REFERENCES project_tasks(task_id) ON DELETE SET NULL
	);
	CREATE INDEX IF NOT EXISTS idx_task_project_id ON project_tasks (project_id);

	CREATE TABLE IF NOT EXISTS mrf_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		form_no TEXT UNIQUE NOT NULL,
		project_name TEXT, project_number TEXT, client TEXT,
		site_location TEXT, project_phase TEXT, mrf_date TEXT,
		status TEXT DEFAULT 'Pending',
		prepared_by_name TEXT, prepared_by_designation TEXT,
		approved_by_name TEXT, approved_by_designation TEXT,
		noted_by_name TEXT, noted_by_designation TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_mrf_form_no ON mrf_requests (form_no);

	CREATE TABLE IF NOT EXISTS mrf_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mrf_request_id INTEGER NOT NULL,
		item_no INTEGER, part_no TEXT, brand_name TEXT,
		description TEXT NOT NULL,
		qty REAL, uom TEXT, install_date TEXT, remarks TEXT,
		item_status TEXT DEFAULT 'Pending' NOT NULL,
		actual_delivery TEXT,
		FOREIGN KEY(mrf_request_id) REFERENCES mrf_requests(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_mrf_request_id ON mrf_items (mrf_request_id);
	`, strings.Join(roles, ", "))
}

// columnMigration adds a column that older databases may lack
type columnMigration struct {
	table      string
	column     string
	definition string
}

var columnMigrations = []columnMigration{
	{"projects", "address", "TEXT"},
	{"project_updates", "completion_timestamp", "DATETIME"},
	{"project_updates", "due_date", "TEXT"},
	{"forecast_items", "forecast_date", "TEXT"},
	{"forecast_items", "is_deduction", "INTEGER NOT NULL DEFAULT 0 CHECK(is_deduction IN (0, 1))"},
	{"project_tasks", "assigned_to", "TEXT"},
	{"project_tasks", "parent_task_id", "INTEGER REFERENCES project_tasks(task_id) ON DELETE SET NULL"},
	{"mrf_items", "item_status", "TEXT DEFAULT 'Pending' NOT NULL"},
	{"mrf_items", "actual_delivery", "TEXT"},
}

// Migrate creates missing tables and adds missing columns. It is safe to
// run repeatedly.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema()); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	for _, m := range columnMigrations {
		exists, err := d.columnExists(ctx, m.table, m.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.table, m.column, m.definition)
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", m.table, m.column, err)
		}
		d.logger.Info("added missing column", zap.String("table", m.table), zap.String("column", m.column))
	}

	if _, err := d.db.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS idx_task_parent_id ON project_tasks (parent_task_id)"); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (d *DB) columnExists(ctx context.Context, table, column string) (bool, error) {
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to query table info for %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
