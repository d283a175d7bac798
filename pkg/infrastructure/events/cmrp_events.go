package events

const (
	ProjectUpdatedEvent   = "project.updated"
	ProjectDeletedEvent   = "project.deleted"
	ProjectsImportedEvent = "projects.imported"

	UpdateAddedEvent   = "update.added"
	UpdateToggledEvent = "update.toggled"
	UpdateDeletedEvent = "update.deleted"

	ForecastAddedEvent   = "forecast.added"
	ForecastToggledEvent = "forecast.toggled"
	ForecastDeletedEvent = "forecast.deleted"

	TaskChangedEvent = "task.changed"

	MRFSavedEvent       = "mrf.saved"
	MRFItemUpdatedEvent = "mrf.item.updated"

	UserRegisteredEvent = "user.registered"
)

// AllEventTypes lists every event the application publishes
var AllEventTypes = []string{
	ProjectUpdatedEvent, ProjectDeletedEvent, ProjectsImportedEvent,
	UpdateAddedEvent, UpdateToggledEvent, UpdateDeletedEvent,
	ForecastAddedEvent, ForecastToggledEvent, ForecastDeletedEvent,
	TaskChangedEvent,
	MRFSavedEvent, MRFItemUpdatedEvent,
	UserRegisteredEvent,
}

type ProjectUpdated struct {
	ProjectID     int64    `json:"project_id"`
	UpdatedFields []string `json:"updated_fields"`
}

type ProjectDeleted struct {
	ProjectID int64 `json:"project_id"`
}

type ProjectsImported struct {
	Source   string `json:"source"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
}

type UpdateChanged struct {
	UpdateID  int64 `json:"update_id"`
	ProjectID int64 `json:"project_id"`
	Completed bool  `json:"is_completed"`
}

type ForecastChanged struct {
	EntryID       int64    `json:"forecast_entry_id"`
	ProjectID     int64    `json:"project_id"`
	Completed     bool     `json:"is_forecast_completed"`
	ProjectStatus *float64 `json:"project_status,omitempty"`
}

type TaskChanged struct {
	TaskID    int64  `json:"task_id"`
	ProjectID int64  `json:"project_id"`
	Action    string `json:"action"`
}

type MRFSaved struct {
	MRFID int64  `json:"mrf_id"`
	Form  string `json:"form_no"`
	Items int    `json:"items_processed"`
}

type MRFItemUpdated struct {
	ItemID int64 `json:"item_id"`
}

type UserRegistered struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}
