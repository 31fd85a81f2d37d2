package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/platform/pdf"
	"github.com/cbmgo/financeiro/internal/shared"
)

// Service enforces the report lifecycle: DRAFT -> FINALIZED -> SIGNED.
// Creator-only mutation, permission-gated signing and append-only
// signatures live here; handlers only translate HTTP.
type Service struct {
	repo     Repository
	renderer pdf.Renderer
}

// NewService constructs a Service.
func NewService(repo Repository, renderer pdf.Renderer) *Service {
	return &Service{repo: repo, renderer: renderer}
}

// Create persists a new DRAFT report owned by the caller.
func (s *Service) Create(ctx context.Context, creatorID int64, req CreateReportRequest) (*Report, error) {
	if emptyJSON(req.Content) {
		return nil, fmt.Errorf("%w: content must not be empty", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, creatorID, req.Title, req.Content)
}

// Get returns a report with its signatures in signing order.
func (s *Service) Get(ctx context.Context, id int64) (*ReportDetail, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sigs, err := s.repo.Signatures(ctx, id)
	if err != nil {
		return nil, err
	}
	if sigs == nil {
		sigs = []Signature{}
	}
	return &ReportDetail{Report: *report, Signatures: sigs}, nil
}

// List returns one page of reports.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]Report, shared.Pagination, error) {
	return s.repo.List(ctx, page, pageSize)
}

// Update mutates title/content. Only the creator may update, and only
// while the report is a DRAFT.
func (s *Service) Update(ctx context.Context, callerID, id int64, req UpdateReportRequest) (*Report, error) {
	if emptyJSON(req.Content) {
		return nil, fmt.Errorf("%w: content must not be empty", httpx.ErrValidation)
	}
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.CreatorID != callerID {
		return nil, fmt.Errorf("%w: only the creator may update a report", httpx.ErrForbidden)
	}
	if report.Status != StatusDraft {
		return nil, errNotDraft
	}
	updated, err := s.repo.UpdateDraft(ctx, id, req.Title, req.Content)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost the race against a concurrent finalize.
		return nil, errNotDraft
	}
	return s.repo.Get(ctx, id)
}

// Finalize moves DRAFT -> FINALIZED. Not idempotent: a second call fails
// because the guard no longer matches.
func (s *Service) Finalize(ctx context.Context, callerID, id int64) (*Report, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.CreatorID != callerID {
		return nil, fmt.Errorf("%w: only the creator may finalize a report", httpx.ErrForbidden)
	}
	if report.Status != StatusDraft {
		return nil, errNotDraft
	}
	finalized, err := s.repo.FinalizeDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if !finalized {
		return nil, errNotDraft
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a DRAFT report and its signatures.
func (s *Service) Delete(ctx context.Context, callerID, id int64) error {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if report.CreatorID != callerID {
		return fmt.Errorf("%w: only the creator may delete a report", httpx.ErrForbidden)
	}
	if report.Status != StatusDraft {
		return errNotDraft
	}
	deleted, err := s.repo.DeleteDraft(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errNotDraft
	}
	return nil
}

// Sign appends the caller's signature. The first signature on a FINALIZED
// report advances it to SIGNED; a duplicate attempt by the same user is
// rejected with a conflict rather than silently ignored.
func (s *Service) Sign(ctx context.Context, callerID, id int64) (*ReportDetail, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status == StatusDraft {
		return nil, fmt.Errorf("%w: draft reports cannot be signed", httpx.ErrForbidden)
	}
	if _, err := s.repo.Sign(ctx, id, callerID); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ExportPDF renders a PDF snapshot of the report and its signatures in
// chronological order. Allowed in any status; no state change.
func (s *Service) ExportPDF(ctx context.Context, id int64) ([]byte, string, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	html, err := renderReportHTML(detail)
	if err != nil {
		return nil, "", err
	}
	data, err := s.renderer.RenderHTML(ctx, html)
	if err != nil {
		return nil, "", fmt.Errorf("reports: render pdf: %w", err)
	}
	filename := fmt.Sprintf("relatorio-%d.pdf", detail.ID)
	return data, filename, nil
}

var errNotDraft = fmt.Errorf("%w: report is not a draft", httpx.ErrForbidden)

func emptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return true
	}
	switch string(trimmed) {
	case "null", `""`, "{}", "[]":
		return true
	}
	return false
}
