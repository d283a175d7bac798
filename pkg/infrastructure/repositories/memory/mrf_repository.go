package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

// MRFRepository provides in-memory storage for material requests
type MRFRepository struct {
	s   *Store
	now func() time.Time
}

// Verify interface compliance
var _ repositories.MRFRepository = (*MRFRepository)(nil)

// Save upserts the header by form number and replaces its items. On update,
// empty header fields keep their stored values.
func (r *MRFRepository) Save(_ context.Context, m *entities.MRFRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	if r.now != nil {
		now = r.now()
	}
	now = now.UTC().Truncate(time.Second)

	stored, found := r.findByFormNo(m.FormNo)
	if found {
		keep(&stored.ProjectName, m.ProjectName)
		keep(&stored.ProjectNumber, m.ProjectNumber)
		keep(&stored.Client, m.Client)
		keep(&stored.SiteLocation, m.SiteLocation)
		keep(&stored.ProjectPhase, m.ProjectPhase)
		keep(&stored.Status, m.Status)
		keep(&stored.PreparedBy.Name, m.PreparedBy.Name)
		keep(&stored.PreparedBy.Designation, m.PreparedBy.Designation)
		keep(&stored.ApprovedBy.Name, m.ApprovedBy.Name)
		keep(&stored.ApprovedBy.Designation, m.ApprovedBy.Designation)
		keep(&stored.NotedBy.Name, m.NotedBy.Name)
		keep(&stored.NotedBy.Designation, m.NotedBy.Designation)
		if !m.Date.IsZero() {
			stored.Date = m.Date
		}
		stored.UpdatedAt = now
		m.CreatedAt = stored.CreatedAt
	} else {
		if m.Status == "" {
			m.Status = entities.DefaultMRFStatus
		}
		stored = *m
		stored.ID = entities.MRFID(r.s.allocID())
		stored.CreatedAt = now
		stored.UpdatedAt = now
		stored.Items = nil
		m.CreatedAt = now
	}
	m.ID = stored.ID
	m.UpdatedAt = now
	r.s.data.mrfs[stored.ID] = stored

	for id, item := range r.s.data.mrfItems {
		if item.RequestID == stored.ID {
			delete(r.s.data.mrfItems, id)
		}
	}
	for i := range m.Items {
		item := &m.Items[i]
		item.RequestID = stored.ID
		if item.Status == "" {
			item.Status = entities.DefaultMRFStatus
		}
		item.ID = entities.MRFItemID(r.s.allocID())
		r.s.data.mrfItems[item.ID] = *item
	}
	return nil
}

func (r *MRFRepository) GetByFormNo(_ context.Context, formNo string) (*entities.MRFRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.findByFormNo(formNo)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	m.Items = make([]entities.MRFItem, 0)
	for _, item := range r.itemsOf(m.ID) {
		m.Items = append(m.Items, *item)
	}
	return &m, nil
}

func (r *MRFRepository) ListItemLog(_ context.Context) ([]*entities.MRFItemLogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	requests := make([]entities.MRFRequest, 0, len(r.s.data.mrfs))
	for _, m := range r.s.data.mrfs {
		requests = append(requests, m)
	}
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].UpdatedAt.Equal(requests[j].UpdatedAt) {
			return requests[i].UpdatedAt.After(requests[j].UpdatedAt)
		}
		return requests[i].ID > requests[j].ID
	})

	entries := make([]*entities.MRFItemLogEntry, 0)
	for _, m := range requests {
		for _, item := range r.itemsOf(m.ID) {
			entries = append(entries, &entities.MRFItemLogEntry{
				MRFItem:       *item,
				FormNo:        m.FormNo,
				ProjectName:   m.ProjectName,
				ProjectNumber: m.ProjectNumber,
				Client:        m.Client,
				MRFDate:       m.Date,
				MRFStatus:     m.Status,
				PreparedBy:    m.PreparedBy.Name,
				MRFUpdatedAt:  m.UpdatedAt,
			})
		}
	}
	return entries, nil
}

func (r *MRFRepository) GetItem(_ context.Context, id entities.MRFItemID) (*entities.MRFItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.data.mrfItems[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &item, nil
}

func (r *MRFRepository) GetItemByFormAndNo(_ context.Context, formNo string, itemNo int) (*entities.MRFItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.findByFormNo(formNo)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	for _, item := range r.itemsOf(m.ID) {
		if item.ItemNo != nil && *item.ItemNo == itemNo {
			return item, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *MRFRepository) UpdateItem(_ context.Context, item *entities.MRFItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.data.mrfItems[item.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	item.RequestID = stored.RequestID
	r.s.data.mrfItems[item.ID] = *item
	return nil
}

func (r *MRFRepository) findByFormNo(formNo string) (entities.MRFRequest, bool) {
	for _, m := range r.s.data.mrfs {
		if m.FormNo == formNo {
			return m, true
		}
	}
	return entities.MRFRequest{}, false
}

// itemsOf returns a request's lines by item number, unnumbered lines first
func (r *MRFRepository) itemsOf(id entities.MRFID) []*entities.MRFItem {
	items := make([]*entities.MRFItem, 0)
	for _, item := range r.s.data.mrfItems {
		if item.RequestID == id {
			items = append(items, &item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].ItemNo, items[j].ItemNo
		if (a == nil) != (b == nil) {
			return a == nil
		}
		if a != nil && *a != *b {
			return *a < *b
		}
		return items[i].ID < items[j].ID
	})
	return items
}

func keep(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
