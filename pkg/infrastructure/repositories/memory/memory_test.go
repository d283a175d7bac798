package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

func mustProject(t *testing.T, name, projectNo string, amount int64, status float64) *entities.Project {
	t.Helper()
	p, err := entities.NewProject(name, entities.NewAmount(decimal.NewFromInt(amount)), status)
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	p.ProjectNo = projectNo
	return p
}

func TestProjectRepository_ActiveOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Projects()

	small := mustProject(t, "Small", "P-1", 100, 0)
	large := mustProject(t, "Large", "P-2", 5000, 0)
	noAmount := mustProject(t, "Unpriced", "P-3", 0, 0)
	noAmount.SetAmount(entities.NoAmount())
	done := mustProject(t, "Done", "P-4", 100, 100)

	for _, p := range []*entities.Project{small, noAmount, large, done} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create %s: %v", p.Name, err)
		}
	}

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	want := []string{"Large", "Small", "Unpriced"}
	if len(active) != len(want) {
		t.Fatalf("expected %d active projects, got %d", len(want), len(active))
	}
	for i, name := range want {
		if active[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, active[i].Name)
		}
	}

	completed, err := repo.ListCompleted(ctx)
	if err != nil {
		t.Fatalf("ListCompleted: %v", err)
	}
	if len(completed) != 1 || completed[0].Name != "Done" {
		t.Errorf("expected only Done in completed list, got %v", completed)
	}
}

func TestProjectRepository_Conflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Projects()

	if err := repo.Create(ctx, mustProject(t, "A", "P-1", 10, 0)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, mustProject(t, "B", "P-1", 10, 0)); !errors.Is(err, repositories.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate project number, got %v", err)
	}
	// blank project numbers never collide
	for _, name := range []string{"C", "D"} {
		if err := repo.Create(ctx, mustProject(t, name, "", 10, 0)); err != nil {
			t.Errorf("Create %s without project number: %v", name, err)
		}
	}
	if _, err := repo.Get(ctx, 999); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	p := mustProject(t, "Cascade", "P-9", 1000, 0)
	if err := store.Projects().Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	u, _ := entities.NewProjectUpdate(p.ID, "site visit", entities.Date{})
	if err := store.Updates().Create(ctx, u); err != nil {
		t.Fatalf("Create update: %v", err)
	}
	f := &entities.ForecastEntry{ProjectID: p.ID, InputType: entities.InputPercent, Value: 10}
	if err := store.Forecasts().Create(ctx, f); err != nil {
		t.Fatalf("Create forecast: %v", err)
	}
	task, _ := entities.NewTask(p.ID, "Survey")
	if err := store.Tasks().Create(ctx, task); err != nil {
		t.Fatalf("Create task: %v", err)
	}

	if err := store.Projects().Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if n, _ := store.Updates().Count(ctx, p.ID); n != 0 {
		t.Errorf("expected updates removed, got %d", n)
	}
	if n, _ := store.Forecasts().Count(ctx); n != 0 {
		t.Errorf("expected forecasts removed, got %d", n)
	}
	if tasks, _ := store.Tasks().ListByProject(ctx, p.ID); len(tasks) != 0 {
		t.Errorf("expected tasks removed, got %d", len(tasks))
	}
}

func TestUpdateRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	p := mustProject(t, "Updates", "P-1", 10, 0)
	_ = store.Projects().Create(ctx, p)

	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	repo := &UpdateRepository{s: store, now: func() time.Time { return clock }}

	first, _ := entities.NewProjectUpdate(p.ID, "first", entities.Date{})
	_ = repo.Create(ctx, first)
	clock = clock.Add(time.Hour)
	second, _ := entities.NewProjectUpdate(p.ID, "second", entities.NewDate(2024, 3, 10))
	_ = repo.Create(ctx, second)

	list, err := repo.ListByProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(list) != 2 || list[0].Text != "second" {
		t.Fatalf("expected newest first, got %+v", list)
	}

	if err := repo.SetCompleted(ctx, first.ID, true, clock); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	got, _ := repo.Get(ctx, first.ID)
	if !got.Completed || got.CompletedAt == nil {
		t.Errorf("expected completed update with timestamp, got %+v", got)
	}
	_ = repo.SetCompleted(ctx, first.ID, false, clock)
	got, _ = repo.Get(ctx, first.ID)
	if got.Completed || got.CompletedAt != nil {
		t.Errorf("expected completion cleared, got %+v", got)
	}

	log, _ := repo.ListAll(ctx)
	if len(log) != 2 || log[0].ProjectName != "Updates" {
		t.Errorf("expected log joined with project, got %+v", log)
	}

	if err := repo.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, second.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestForecastRepository_ListForYear(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	a := mustProject(t, "A", "P-1", 1000, 0)
	a.DS = "North"
	b := mustProject(t, "B", "P-2", 1000, 0)
	b.DS = "South"
	_ = store.Projects().Create(ctx, a)
	_ = store.Projects().Create(ctx, b)

	repo := store.Forecasts()
	entries := []*entities.ForecastEntry{
		{ProjectID: a.ID, InputType: entities.InputPercent, Value: 10, Date: entities.NewDate(2024, 2, 1)},
		{ProjectID: b.ID, InputType: entities.InputAmount, Value: 50, Date: entities.NewDate(2024, 1, 15)},
		{ProjectID: a.ID, InputType: entities.InputAmount, Value: 5, Date: entities.NewDate(2023, 12, 1)},
		{ProjectID: a.ID, InputType: entities.InputAmount, Value: 5},
	}
	for _, e := range entries {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	tests := []struct {
		name string
		ds   string
		want int
	}{
		{"all segments", "", 2},
		{"north only", "North", 1},
		{"unknown segment", "West", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListForYear(ctx, 2024, tt.ds)
			if err != nil {
				t.Fatalf("ListForYear: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d entries, got %d", tt.want, len(got))
			}
		})
	}

	all, _ := repo.ListAll(ctx)
	if len(all) != 4 || !all[0].Date.IsZero() {
		t.Errorf("expected undated entry first, got %+v", all[0])
	}
	if all[1].ProjectName != "A" || all[1].ProjectAmount.Decimal.IntPart() != 1000 {
		t.Errorf("expected entry joined with project, got %+v", all[1])
	}
}

func TestTaskRepository_DeleteDetachesChildren(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	p := mustProject(t, "Tasks", "P-1", 10, 0)
	_ = store.Projects().Create(ctx, p)
	repo := store.Tasks()

	parent, _ := entities.NewTask(p.ID, "Parent")
	_ = repo.Create(ctx, parent)
	child, _ := entities.NewTask(p.ID, "Child")
	child.ParentID = &parent.ID
	_ = repo.Create(ctx, child)

	list, _ := repo.ListByProject(ctx, p.ID)
	if len(list) != 2 || list[0].Name != "Parent" {
		t.Fatalf("expected root task first, got %+v", list)
	}

	if err := repo.Delete(ctx, parent.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := repo.Get(ctx, child.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ParentID != nil {
		t.Errorf("expected child detached, got parent %d", *got.ParentID)
	}
}

func TestMRFRepository_SaveReplacesItems(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().MRFs()
	one, two := 1, 2

	m, _ := entities.NewMRFRequest("MRF-001")
	m.ProjectName = "Feeder"
	m.Client = "Acme"
	m.Items = []entities.MRFItem{
		{ItemNo: &two, Description: "cable"},
		{ItemNo: &one, Description: "breaker", Status: "Delivered"},
	}
	if err := repo.Save(ctx, m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	update := &entities.MRFRequest{FormNo: "MRF-001", Client: "Acme Corp"}
	update.Items = []entities.MRFItem{{ItemNo: &one, Description: "transformer"}}
	if err := repo.Save(ctx, update); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if update.ID != m.ID {
		t.Errorf("expected upsert to keep id %d, got %d", m.ID, update.ID)
	}

	got, err := repo.GetByFormNo(ctx, "MRF-001")
	if err != nil {
		t.Fatalf("GetByFormNo: %v", err)
	}
	if got.ProjectName != "Feeder" {
		t.Errorf("expected blank field to keep stored value, got %q", got.ProjectName)
	}
	if got.Client != "Acme Corp" {
		t.Errorf("expected client overwritten, got %q", got.Client)
	}
	if len(got.Items) != 1 || got.Items[0].Description != "transformer" {
		t.Fatalf("expected items replaced, got %+v", got.Items)
	}
	if got.Items[0].Status != entities.DefaultMRFStatus {
		t.Errorf("expected default item status, got %q", got.Items[0].Status)
	}

	item, err := repo.GetItemByFormAndNo(ctx, "MRF-001", 1)
	if err != nil {
		t.Fatalf("GetItemByFormAndNo: %v", err)
	}
	item.Remarks = "urgent"
	if err := repo.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	log, _ := repo.ListItemLog(ctx)
	if len(log) != 1 || log[0].Remarks != "urgent" || log[0].FormNo != "MRF-001" {
		t.Errorf("unexpected item log %+v", log)
	}
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context) error {
		if err := store.Projects().Create(ctx, mustProject(t, "Temp", "P-1", 10, 0)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	all, _ := store.Projects().ListAll(ctx)
	if len(all) != 0 {
		t.Errorf("expected rollback to discard project, found %d", len(all))
	}

	err = store.WithinTx(ctx, func(ctx context.Context) error {
		return store.Projects().Create(ctx, mustProject(t, "Kept", "P-2", 10, 0))
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
	all, _ = store.Projects().ListAll(ctx)
	if len(all) != 1 {
		t.Errorf("expected committed project, found %d", len(all))
	}
}

func TestSessionStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	sessions := NewStore().Sessions()
	now := time.Now()

	_ = sessions.Save(ctx, &entities.Session{Token: "old", ExpiresAt: now.Add(-time.Minute)})
	_ = sessions.Save(ctx, &entities.Session{Token: "fresh", ExpiresAt: now.Add(time.Hour)})

	n, err := sessions.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired session, got %d", n)
	}
	if _, err := sessions.Get(ctx, "old"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected old session gone, got %v", err)
	}
	if _, err := sessions.Get(ctx, "fresh"); err != nil {
		t.Errorf("expected fresh session kept, got %v", err)
	}
}
