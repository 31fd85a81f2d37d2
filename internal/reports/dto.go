package reports

import "encoding/json"

// CreateReportRequest creates a new DRAFT report.
type CreateReportRequest struct {
	Title   string          `json:"title" validate:"required,max=300"`
	Content json.RawMessage `json:"content" validate:"required"`
}

// UpdateReportRequest mutates a DRAFT report.
type UpdateReportRequest struct {
	Title   string          `json:"title" validate:"required,max=300"`
	Content json.RawMessage `json:"content" validate:"required"`
}

// ReportDetail is a report plus its signatures in signing order.
type ReportDetail struct {
	Report
	Signatures []Signature `json:"signatures"`
}
