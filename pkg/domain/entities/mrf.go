package entities

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMRFStatus applies to new requests and items without an explicit status
const DefaultMRFStatus = "Pending"

// poSeparator joins project name and project number in MRF headers
const poSeparator = " - PO# "

// MRFID identifies a material request
type MRFID int64

// MRFItemID identifies a material request line
type MRFItemID int64

// Signatory is a named person with a designation
type Signatory struct {
	Name        string
	Designation string
}

// MRFRequest is a material request form header with its lines
type MRFRequest struct {
	ID            MRFID
	FormNo        string
	ProjectName   string
	ProjectNumber string
	Client        string
	SiteLocation  string
	ProjectPhase  string
	Date          Date
	Status        string
	PreparedBy    Signatory
	ApprovedBy    Signatory
	NotedBy       Signatory
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []MRFItem
}

// NewMRFRequest creates a request with a validated form number
func NewMRFRequest(formNo string) (*MRFRequest, error) {
	formNo = strings.TrimSpace(formNo)
	if formNo == "" {
		return nil, fmt.Errorf("form number cannot be empty")
	}
	return &MRFRequest{FormNo: formNo, Status: DefaultMRFStatus}, nil
}

// SplitProjectLabel splits "Name - PO# 1234" into name and project number
func SplitProjectLabel(label string) (name, number string) {
	parts := strings.SplitN(label, poSeparator, 2)
	name = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		number = strings.TrimSpace(parts[1])
	}
	return name, number
}

// MRFItem is a single material line on a request
type MRFItem struct {
	ID             MRFItemID
	RequestID      MRFID
	ItemNo         *int
	PartNo         string
	BrandName      string
	Description    string
	Qty            *float64
	UOM            string
	InstallDate    Date
	Remarks        string
	Status         string
	ActualDelivery Date
}

// MRFItemLogEntry is an item joined with its request header
type MRFItemLogEntry struct {
	MRFItem
	FormNo        string
	ProjectName   string
	ProjectNumber string
	Client        string
	MRFDate       Date
	MRFStatus     string
	PreparedBy    string
	MRFUpdatedAt  time.Time
}
