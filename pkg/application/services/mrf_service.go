package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
	"github.com/vsinha/cmrp/pkg/infrastructure/events"
)

// MRFService manages material request forms and their lines
type MRFService struct {
	deps Deps
}

// NewMRFService creates an MRF service
func NewMRFService(deps Deps) *MRFService {
	return &MRFService{deps: deps}
}

// Save upserts a form submitted by the MRF page. The payload carries a
// header object, tableRows with a values object per line and
// footerSignatories.
func (s *MRFService) Save(ctx context.Context, payload map[string]any) (*dto.MRFSaveResult, error) {
	if len(payload) == 0 {
		return nil, invalid("Invalid JSON payload")
	}
	header, _ := payload["header"].(map[string]any)
	footer, _ := payload["footerSignatories"].(map[string]any)
	formNo := text(header["formNo"])
	if header == nil || formNo == "" {
		return nil, invalid("Missing or invalid MRF Form Number (formNo) in header")
	}

	mrf, err := entities.NewMRFRequest(formNo)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	mrf.ProjectName, mrf.ProjectNumber = entities.SplitProjectLabel(text(header["projectName"]))
	mrf.Client = text(header["client"])
	mrf.SiteLocation = text(header["siteLocation"])
	mrf.ProjectPhase = text(header["projectPhase"])
	if d, ok := entities.ParseFlexibleDate(text(header["mrfDate"])); ok {
		mrf.Date = d
	}
	if status := text(header["status"]); status != "" {
		mrf.Status = status
	}
	mrf.PreparedBy = entities.Signatory{Name: text(footer["preparedByName"]), Designation: text(footer["preparedByDesignation"])}
	mrf.ApprovedBy = entities.Signatory{Name: text(footer["approvedByName"]), Designation: text(footer["approvedByDesignation"])}
	mrf.NotedBy = entities.Signatory{Name: text(footer["notedByName"]), Designation: text(footer["notedByDesignation"])}

	if mrf.Client == "" && mrf.ProjectNumber != "" {
		project, err := s.deps.Repos.Projects.GetByProjectNo(ctx, mrf.ProjectNumber)
		switch {
		case err == nil:
			mrf.Client = project.Client
		case !errors.Is(err, repositories.ErrNotFound):
			s.deps.logger().Warn("client lookup failed", zap.String("project_no", mrf.ProjectNumber), zap.Error(err))
		}
	}

	rows, _ := payload["tableRows"].([]any)
	for _, row := range rows {
		wrapper, _ := row.(map[string]any)
		values, _ := wrapper["values"].(map[string]any)
		if len(values) == 0 || text(values["description"]) == "" {
			continue
		}
		mrf.Items = append(mrf.Items, mrfItemFromValues(values))
	}

	err = s.deps.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.deps.Repos.MRFs.Save(ctx, mrf)
	})
	if errors.Is(err, repositories.ErrConflict) {
		return nil, &ConflictError{Message: fmt.Sprintf(
			"Database integrity error: %v. This Form No. might already exist or there's an issue with linked data.", err)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save MRF %s: %w", formNo, err)
	}

	s.deps.publish(events.MRFSavedEvent, "mrf-"+formNo, events.MRFSaved{
		MRFID: int64(mrf.ID),
		Form:  formNo,
		Items: len(mrf.Items),
	})
	return &dto.MRFSaveResult{
		Message:        fmt.Sprintf("MRF %s saved successfully.", formNo),
		MRFID:          mrf.ID,
		ItemsProcessed: len(mrf.Items),
		FormNo:         formNo,
	}, nil
}

func mrfItemFromValues(values map[string]any) entities.MRFItem {
	item := entities.MRFItem{
		PartNo:      text(values["partNo"]),
		BrandName:   text(values["brandName"]),
		Description: text(values["description"]),
		UOM:         text(values["uom"]),
		Remarks:     text(values["remarks"]),
		Status:      text(values["status"]),
	}
	if n, ok := entities.ParseLooseInt(values["itemNo"]); ok {
		item.ItemNo = &n
	}
	if q, ok := entities.ParseLooseFloat(values["qty"]); ok {
		item.Qty = &q
	}
	if d, ok := entities.ParseFlexibleDate(text(values["installDate"])); ok {
		item.InstallDate = d
	}
	if item.Status == "" {
		item.Status = entities.DefaultMRFStatus
	}
	return item
}

// Get returns a form with its lines
func (s *MRFService) Get(ctx context.Context, formNo string) (*dto.MRFView, error) {
	mrf, err := s.deps.Repos.MRFs.GetByFormNo(ctx, formNo)
	if err != nil {
		return nil, orNotFound(err, "MRF not found")
	}
	view := dto.NewMRFView(mrf)
	return &view, nil
}

// ItemLog returns every line flattened with its form header
func (s *MRFService) ItemLog(ctx context.Context) ([]dto.MRFItemLogView, error) {
	entries, err := s.deps.Repos.MRFs.ListItemLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list MRF items: %w", err)
	}
	views := make([]dto.MRFItemLogView, 0, len(entries))
	for _, e := range entries {
		views = append(views, dto.NewMRFItemLogView(e))
	}
	return views, nil
}

// ItemDetails looks up a line by form number and line number
func (s *MRFService) ItemDetails(ctx context.Context, formNo, itemNo string) (*dto.MRFItemView, error) {
	formNo = strings.TrimSpace(formNo)
	if formNo == "" || strings.TrimSpace(itemNo) == "" {
		return nil, invalid("Missing form_no or item_no parameter.")
	}
	n, ok := entities.ParseLooseInt(itemNo)
	if !ok {
		return nil, notFound("MRF item not found.")
	}
	item, err := s.deps.Repos.MRFs.GetItemByFormAndNo(ctx, formNo, n)
	if err != nil {
		return nil, orNotFound(err, "MRF item not found.")
	}
	view := dto.NewMRFItemView(item)
	return &view, nil
}

// mrfItemFields lists the fields UpdateItem accepts, in processing order
var mrfItemFields = []string{
	"part_no", "brand_name", "description", "qty", "uom",
	"install_date", "item_status", "actual_delivery", "item_remarks",
}

// UpdateItem applies a partial edit to a line identified by input["id"]
func (s *MRFService) UpdateItem(ctx context.Context, input map[string]any) (string, error) {
	if len(input) == 0 {
		return "", invalid("Request body must contain JSON data.")
	}
	rawID, ok := input["id"]
	id, valid := entities.ParseLooseInt(rawID)
	if !ok || !valid || id == 0 {
		return "", invalid("Missing 'id' for MRF item update.")
	}

	var (
		edits    []func(*entities.MRFItem)
		problems []string
	)
	for _, field := range mrfItemFields {
		value, present := input[field]
		if !present {
			continue
		}
		edit, problem := mrfItemFieldEdit(field, value)
		if problem != "" {
			problems = append(problems, problem)
			continue
		}
		edits = append(edits, edit)
	}
	if len(problems) > 0 {
		return "", &ValidationError{Message: "Validation failed", Details: problems}
	}
	if len(edits) == 0 {
		return "No valid fields provided for update.", nil
	}

	itemID := entities.MRFItemID(id)
	err := s.deps.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		item, err := s.deps.Repos.MRFs.GetItem(ctx, itemID)
		if err != nil {
			return orNotFound(err, "MRF item not found.")
		}
		for _, edit := range edits {
			edit(item)
		}
		return s.deps.Repos.MRFs.UpdateItem(ctx, item)
	})
	if err != nil {
		return "", err
	}
	s.deps.publish(events.MRFItemUpdatedEvent, fmt.Sprintf("mrf-item-%d", itemID), events.MRFItemUpdated{ItemID: int64(itemID)})
	return "MRF item updated successfully.", nil
}

func mrfItemFieldEdit(field string, value any) (func(*entities.MRFItem), string) {
	switch field {
	case "qty":
		if entities.IsBlank(value) {
			return func(i *entities.MRFItem) { i.Qty = nil }, ""
		}
		q, ok := entities.ParseLooseFloat(value)
		if !ok {
			return nil, fmt.Sprintf("Invalid value for '%s': '%v'. Expected number or empty.", field, value)
		}
		return func(i *entities.MRFItem) { i.Qty = &q }, ""

	case "install_date", "actual_delivery":
		var d entities.Date
		if !entities.IsBlank(value) {
			parsed, ok := entities.ParseFlexibleDate(text(value))
			if !ok {
				return nil, fmt.Sprintf("Invalid date format for '%s': '%v'. Use YYYY-MM-DD or MM/DD/YYYY or empty.", field, value)
			}
			d = parsed
		}
		if field == "install_date" {
			return func(i *entities.MRFItem) { i.InstallDate = d }, ""
		}
		return func(i *entities.MRFItem) { i.ActualDelivery = d }, ""
	}

	s := text(value)
	switch field {
	case "part_no":
		return func(i *entities.MRFItem) { i.PartNo = s }, ""
	case "brand_name":
		return func(i *entities.MRFItem) { i.BrandName = s }, ""
	case "description":
		return func(i *entities.MRFItem) { i.Description = s }, ""
	case "uom":
		return func(i *entities.MRFItem) { i.UOM = s }, ""
	case "item_status":
		return func(i *entities.MRFItem) { i.Status = s }, ""
	case "item_remarks":
		return func(i *entities.MRFItem) { i.Remarks = s }, ""
	}
	return nil, fmt.Sprintf("Internal error: Unknown validation type for field '%s'.", field)
}
