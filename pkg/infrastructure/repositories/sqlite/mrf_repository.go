package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

const mrfItemColumns = `id, mrf_request_id, item_no, part_no, brand_name, description, qty, uom,
	install_date, remarks, item_status, actual_delivery`

// MRFRepository stores material requests in mrf_requests and mrf_items
type MRFRepository struct {
	db  *DB
	now func() time.Time
}

// NewMRFRepository creates a new SQLite MRF repository
func NewMRFRepository(db *DB) *MRFRepository {
	return &MRFRepository{db: db, now: time.Now}
}

// Verify interface compliance
var _ repositories.MRFRepository = (*MRFRepository)(nil)

// Save upserts the request header by form number and replaces its items.
// On update, empty header fields keep their stored values.
func (r *MRFRepository) Save(ctx context.Context, m *entities.MRFRequest) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		q := r.db.conn(ctx)
		now := r.now().UTC().Truncate(time.Second)
		m.UpdatedAt = now

		var id int64
		err := q.QueryRowContext(ctx, "SELECT id FROM mrf_requests WHERE form_no = ?", m.FormNo).Scan(&id)
		switch {
		case err == sql.ErrNoRows:
			if m.Status == "" {
				m.Status = entities.DefaultMRFStatus
			}
			m.CreatedAt = now
			res, err := q.ExecContext(ctx, `
				INSERT INTO mrf_requests (form_no, project_name, project_number, client, site_location,
					project_phase, mrf_date, status, prepared_by_name, prepared_by_designation,
					approved_by_name, approved_by_designation, noted_by_name, noted_by_designation,
					created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				m.FormNo, nullString(m.ProjectName), nullString(m.ProjectNumber), nullString(m.Client),
				nullString(m.SiteLocation), nullString(m.ProjectPhase), dateValue(m.Date), m.Status,
				nullString(m.PreparedBy.Name), nullString(m.PreparedBy.Designation),
				nullString(m.ApprovedBy.Name), nullString(m.ApprovedBy.Designation),
				nullString(m.NotedBy.Name), nullString(m.NotedBy.Designation),
				formatTimestamp(now), formatTimestamp(now))
			if err != nil {
				return translate(err)
			}
			if id, err = res.LastInsertId(); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			_, err := q.ExecContext(ctx, `
				UPDATE mrf_requests SET
					project_name = COALESCE(?, project_name),
					project_number = COALESCE(?, project_number),
					client = COALESCE(?, client),
					site_location = COALESCE(?, site_location),
					project_phase = COALESCE(?, project_phase),
					mrf_date = COALESCE(?, mrf_date),
					status = COALESCE(?, status),
					prepared_by_name = COALESCE(?, prepared_by_name),
					prepared_by_designation = COALESCE(?, prepared_by_designation),
					approved_by_name = COALESCE(?, approved_by_name),
					approved_by_designation = COALESCE(?, approved_by_designation),
					noted_by_name = COALESCE(?, noted_by_name),
					noted_by_designation = COALESCE(?, noted_by_designation),
					updated_at = ?
				WHERE id = ?`,
				nullString(m.ProjectName), nullString(m.ProjectNumber), nullString(m.Client),
				nullString(m.SiteLocation), nullString(m.ProjectPhase), dateValue(m.Date), nullString(m.Status),
				nullString(m.PreparedBy.Name), nullString(m.PreparedBy.Designation),
				nullString(m.ApprovedBy.Name), nullString(m.ApprovedBy.Designation),
				nullString(m.NotedBy.Name), nullString(m.NotedBy.Designation),
				formatTimestamp(now), id)
			if err != nil {
				return translate(err)
			}
		}
		m.ID = entities.MRFID(id)

		if _, err := q.ExecContext(ctx, "DELETE FROM mrf_items WHERE mrf_request_id = ?", id); err != nil {
			return err
		}
		for i := range m.Items {
			item := &m.Items[i]
			item.RequestID = m.ID
			if item.Status == "" {
				item.Status = entities.DefaultMRFStatus
			}
			res, err := q.ExecContext(ctx, `
				INSERT INTO mrf_items (mrf_request_id, item_no, part_no, brand_name, description, qty, uom,
				                       install_date, remarks, item_status, actual_delivery)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				mrfItemArgs(item)...)
			if err != nil {
				return translate(err)
			}
			itemID, err := res.LastInsertId()
			if err != nil {
				return err
			}
			item.ID = entities.MRFItemID(itemID)
		}
		return nil
	})
}

func (r *MRFRepository) GetByFormNo(ctx context.Context, formNo string) (*entities.MRFRequest, error) {
	var (
		m                                                   entities.MRFRequest
		projectName, projectNumber, client, site, phase     sql.NullString
		date, status                                        sql.NullString
		prepName, prepDesig, apprName, apprDesig, notedName sql.NullString
		notedDesig, created, updated                        sql.NullString
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT id, form_no, project_name, project_number, client, site_location, project_phase,
		       mrf_date, status, prepared_by_name, prepared_by_designation, approved_by_name,
		       approved_by_designation, noted_by_name, noted_by_designation, created_at, updated_at
		FROM mrf_requests WHERE form_no = ?`, formNo).Scan(
		&m.ID, &m.FormNo, &projectName, &projectNumber, &client, &site, &phase, &date, &status,
		&prepName, &prepDesig, &apprName, &apprDesig, &notedName, &notedDesig, &created, &updated)
	if err != nil {
		return nil, translate(err)
	}
	m.ProjectName = projectName.String
	m.ProjectNumber = projectNumber.String
	m.Client = client.String
	m.SiteLocation = site.String
	m.ProjectPhase = phase.String
	m.Date = scanDate(date)
	m.Status = status.String
	m.PreparedBy = entities.Signatory{Name: prepName.String, Designation: prepDesig.String}
	m.ApprovedBy = entities.Signatory{Name: apprName.String, Designation: apprDesig.String}
	m.NotedBy = entities.Signatory{Name: notedName.String, Designation: notedDesig.String}
	if ts := parseTimestamp(created); ts != nil {
		m.CreatedAt = *ts
	}
	if ts := parseTimestamp(updated); ts != nil {
		m.UpdatedAt = *ts
	}

	rows, err := r.db.conn(ctx).QueryContext(ctx, `SELECT `+mrfItemColumns+` FROM mrf_items
		WHERE mrf_request_id = ? ORDER BY item_no, id`, m.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m.Items = make([]entities.MRFItem, 0)
	for rows.Next() {
		item, err := scanMRFItem(rows)
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, *item)
	}
	return &m, rows.Err()
}

func (r *MRFRepository) ListItemLog(ctx context.Context) ([]*entities.MRFItemLogEntry, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT i.id, i.mrf_request_id, i.item_no, i.part_no, i.brand_name, i.description, i.qty, i.uom,
		       i.install_date, i.remarks, i.item_status, i.actual_delivery,
		       r.form_no, r.project_name, r.project_number, r.client, r.mrf_date, r.status,
		       r.prepared_by_name, r.updated_at
		FROM mrf_items i
		JOIN mrf_requests r ON i.mrf_request_id = r.id
		ORDER BY r.updated_at DESC, r.id DESC, i.item_no ASC, i.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*entities.MRFItemLogEntry, 0)
	for rows.Next() {
		var (
			e                                   entities.MRFItemLogEntry
			projectName, projectNumber, client  sql.NullString
			date, status, preparedBy, updatedAt sql.NullString
		)
		item, err := scanMRFItem(rows, &e.FormNo, &projectName, &projectNumber, &client,
			&date, &status, &preparedBy, &updatedAt)
		if err != nil {
			return nil, err
		}
		e.MRFItem = *item
		e.ProjectName = projectName.String
		e.ProjectNumber = projectNumber.String
		e.Client = client.String
		e.MRFDate = scanDate(date)
		e.MRFStatus = status.String
		e.PreparedBy = preparedBy.String
		if ts := parseTimestamp(updatedAt); ts != nil {
			e.MRFUpdatedAt = *ts
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *MRFRepository) GetItem(ctx context.Context, id entities.MRFItemID) (*entities.MRFItem, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+mrfItemColumns+` FROM mrf_items WHERE id = ?`, id)
	item, err := scanMRFItem(row)
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (r *MRFRepository) GetItemByFormAndNo(ctx context.Context, formNo string, itemNo int) (*entities.MRFItem, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT i.id, i.mrf_request_id, i.item_no, i.part_no, i.brand_name, i.description, i.qty, i.uom,
		       i.install_date, i.remarks, i.item_status, i.actual_delivery
		FROM mrf_items i
		JOIN mrf_requests r ON i.mrf_request_id = r.id
		WHERE r.form_no = ? AND i.item_no = ?
		ORDER BY i.id LIMIT 1`, formNo, itemNo)
	item, err := scanMRFItem(row)
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (r *MRFRepository) UpdateItem(ctx context.Context, item *entities.MRFItem) error {
	args := append(mrfItemArgs(item)[1:], item.ID)
	res, err := r.db.conn(ctx).ExecContext(ctx, `
		UPDATE mrf_items SET item_no = ?, part_no = ?, brand_name = ?, description = ?, qty = ?, uom = ?,
		       install_date = ?, remarks = ?, item_status = ?, actual_delivery = ?
		WHERE id = ?`, args...)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func mrfItemArgs(item *entities.MRFItem) []any {
	var itemNo, qty any
	if item.ItemNo != nil {
		itemNo = *item.ItemNo
	}
	if item.Qty != nil {
		qty = *item.Qty
	}
	return []any{
		item.RequestID, itemNo, nullString(item.PartNo), nullString(item.BrandName), item.Description,
		qty, nullString(item.UOM), dateValue(item.InstallDate), nullString(item.Remarks),
		item.Status, dateValue(item.ActualDelivery),
	}
}

func scanMRFItem(s rowScanner, extra ...any) (*entities.MRFItem, error) {
	var (
		item                                 entities.MRFItem
		itemNo                               sql.NullInt64
		qty                                  sql.NullFloat64
		partNo, brand, uom, remarks, status  sql.NullString
		installDate, actualDelivery          sql.NullString
	)
	dest := append([]any{&item.ID, &item.RequestID, &itemNo, &partNo, &brand, &item.Description,
		&qty, &uom, &installDate, &remarks, &status, &actualDelivery}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	if itemNo.Valid {
		n := int(itemNo.Int64)
		item.ItemNo = &n
	}
	if qty.Valid {
		q := qty.Float64
		item.Qty = &q
	}
	item.PartNo = partNo.String
	item.BrandName = brand.String
	item.UOM = uom.String
	item.Remarks = remarks.String
	item.Status = status.String
	item.InstallDate = scanDate(installDate)
	item.ActualDelivery = scanDate(actualDelivery)
	return &item, nil
}
