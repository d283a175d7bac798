package dto

import (
	"github.com/vsinha/cmrp/pkg/domain/entities"
)

// MRFItemView is a material request line as stored
type MRFItemView struct {
	ID             entities.MRFItemID `json:"id"`
	MRFRequestID   entities.MRFID     `json:"mrf_request_id"`
	ItemNo         *int               `json:"item_no"`
	PartNo         string             `json:"part_no"`
	BrandName      string             `json:"brand_name"`
	Description    string             `json:"description"`
	Qty            *float64           `json:"qty"`
	UOM            string             `json:"uom"`
	InstallDate    entities.Date      `json:"install_date"`
	Remarks        string             `json:"remarks"`
	ItemStatus     string             `json:"item_status"`
	ActualDelivery entities.Date      `json:"actual_delivery"`
}

// NewMRFItemView converts an item for the API
func NewMRFItemView(i *entities.MRFItem) MRFItemView {
	return MRFItemView{
		ID:             i.ID,
		MRFRequestID:   i.RequestID,
		ItemNo:         i.ItemNo,
		PartNo:         i.PartNo,
		BrandName:      i.BrandName,
		Description:    i.Description,
		Qty:            i.Qty,
		UOM:            i.UOM,
		InstallDate:    i.InstallDate,
		Remarks:        i.Remarks,
		ItemStatus:     i.Status,
		ActualDelivery: i.ActualDelivery,
	}
}

// MRFView is a full material request with its lines
type MRFView struct {
	ID                    entities.MRFID `json:"id"`
	FormNo                string         `json:"form_no"`
	ProjectName           string         `json:"project_name"`
	ProjectNumber         string         `json:"project_number"`
	Client                string         `json:"client"`
	SiteLocation          string         `json:"site_location"`
	ProjectPhase          string         `json:"project_phase"`
	MRFDate               entities.Date  `json:"mrf_date"`
	Status                string         `json:"status"`
	PreparedByName        string         `json:"prepared_by_name"`
	PreparedByDesignation string         `json:"prepared_by_designation"`
	ApprovedByName        string         `json:"approved_by_name"`
	ApprovedByDesignation string         `json:"approved_by_designation"`
	NotedByName           string         `json:"noted_by_name"`
	NotedByDesignation    string         `json:"noted_by_designation"`
	CreatedAt             string         `json:"created_at"`
	UpdatedAt             string         `json:"updated_at"`
	Items                 []MRFItemView  `json:"items"`
}

// NewMRFView converts a request for the API
func NewMRFView(m *entities.MRFRequest) MRFView {
	v := MRFView{
		ID:                    m.ID,
		FormNo:                m.FormNo,
		ProjectName:           m.ProjectName,
		ProjectNumber:         m.ProjectNumber,
		Client:                m.Client,
		SiteLocation:          m.SiteLocation,
		ProjectPhase:          m.ProjectPhase,
		MRFDate:               m.Date,
		Status:                m.Status,
		PreparedByName:        m.PreparedBy.Name,
		PreparedByDesignation: m.PreparedBy.Designation,
		ApprovedByName:        m.ApprovedBy.Name,
		ApprovedByDesignation: m.ApprovedBy.Designation,
		NotedByName:           m.NotedBy.Name,
		NotedByDesignation:    m.NotedBy.Designation,
		CreatedAt:             FormatTimestamp(m.CreatedAt),
		UpdatedAt:             FormatTimestamp(m.UpdatedAt),
		Items:                 make([]MRFItemView, 0, len(m.Items)),
	}
	for i := range m.Items {
		v.Items = append(v.Items, NewMRFItemView(&m.Items[i]))
	}
	return v
}

// MRFItemLogView is a request line flattened with its header
type MRFItemLogView struct {
	FormNo         string             `json:"form_no"`
	ProjectName    string             `json:"project_name"`
	ProjectNumber  string             `json:"project_number"`
	Client         string             `json:"client"`
	MRFDate        entities.Date      `json:"mrf_date"`
	MRFStatus      string             `json:"mrf_status"`
	PreparedByName string             `json:"prepared_by_name"`
	MRFUpdatedAt   string             `json:"mrf_updated_at"`
	ItemID         entities.MRFItemID `json:"item_id"`
	ItemNo         *int               `json:"item_no"`
	PartNo         string             `json:"part_no"`
	BrandName      string             `json:"brand_name"`
	Description    string             `json:"description"`
	Qty            *float64           `json:"qty"`
	UOM            string             `json:"uom"`
	InstallDate    entities.Date      `json:"install_date"`
	ItemRemarks    string             `json:"item_remarks"`
	ItemStatus     string             `json:"item_status"`
	ActualDelivery entities.Date      `json:"actual_delivery"`
}

// NewMRFItemLogView converts a log entry for the API
func NewMRFItemLogView(e *entities.MRFItemLogEntry) MRFItemLogView {
	return MRFItemLogView{
		FormNo:         e.FormNo,
		ProjectName:    e.ProjectName,
		ProjectNumber:  e.ProjectNumber,
		Client:         e.Client,
		MRFDate:        e.MRFDate,
		MRFStatus:      e.MRFStatus,
		PreparedByName: e.PreparedBy,
		MRFUpdatedAt:   FormatTimestamp(e.MRFUpdatedAt),
		ItemID:         e.ID,
		ItemNo:         e.ItemNo,
		PartNo:         e.PartNo,
		BrandName:      e.BrandName,
		Description:    e.Description,
		Qty:            e.Qty,
		UOM:            e.UOM,
		InstallDate:    e.InstallDate,
		ItemRemarks:    e.Remarks,
		ItemStatus:     e.Status,
		ActualDelivery: e.ActualDelivery,
	}
}

// MRFSaveResult reports a saved request
type MRFSaveResult struct {
	Message        string         `json:"message"`
	MRFID          entities.MRFID `json:"mrf_id"`
	ItemsProcessed int            `json:"items_processed"`
	FormNo         string         `json:"form_no"`
}
