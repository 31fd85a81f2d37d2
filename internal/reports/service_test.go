package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/shared"
)

type fakeRepo struct {
	reports    map[int64]*Report
	signatures map[int64][]Signature
	nextID     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reports:    make(map[int64]*Report),
		signatures: make(map[int64][]Signature),
		nextID:     1,
	}
}

func (f *fakeRepo) Create(ctx context.Context, creatorID int64, title string, content json.RawMessage) (*Report, error) {
	report := &Report{
		ID:        f.nextID,
		Title:     title,
		Content:   content,
		Status:    StatusDraft,
		CreatorID: creatorID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.reports[f.nextID] = report
	f.nextID++
	return report, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (*Report, error) {
	report, ok := f.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: report", httpx.ErrNotFound)
	}
	copied := *report
	return &copied, nil
}

func (f *fakeRepo) List(ctx context.Context, page, pageSize int) ([]Report, shared.Pagination, error) {
	var list []Report
	for _, report := range f.reports {
		list = append(list, *report)
	}
	return list, shared.NewPagination(page, pageSize, len(list)), nil
}

func (f *fakeRepo) UpdateDraft(ctx context.Context, id int64, title string, content json.RawMessage) (bool, error) {
	report, ok := f.reports[id]
	if !ok || report.Status != StatusDraft {
		return false, nil
	}
	report.Title = title
	report.Content = content
	return true, nil
}

func (f *fakeRepo) FinalizeDraft(ctx context.Context, id int64) (bool, error) {
	report, ok := f.reports[id]
	if !ok || report.Status != StatusDraft {
		return false, nil
	}
	report.Status = StatusFinalized
	return true, nil
}

func (f *fakeRepo) DeleteDraft(ctx context.Context, id int64) (bool, error) {
	report, ok := f.reports[id]
	if !ok || report.Status != StatusDraft {
		return false, nil
	}
	delete(f.reports, id)
	delete(f.signatures, id)
	return true, nil
}

func (f *fakeRepo) Sign(ctx context.Context, reportID, userID int64) (*Signature, error) {
	for _, sig := range f.signatures[reportID] {
		if sig.UserID == userID {
			return nil, fmt.Errorf("%w: report already signed by this user", httpx.ErrConflict)
		}
	}
	sig := Signature{
		ID:       int64(len(f.signatures[reportID]) + 1),
		ReportID: reportID,
		UserID:   userID,
		SignedAt: time.Now(),
	}
	f.signatures[reportID] = append(f.signatures[reportID], sig)
	if report, ok := f.reports[reportID]; ok && report.Status == StatusFinalized {
		report.Status = StatusSigned
	}
	return &sig, nil
}

func (f *fakeRepo) Signatures(ctx context.Context, reportID int64) ([]Signature, error) {
	return append([]Signature(nil), f.signatures[reportID]...), nil
}

type fakeRenderer struct {
	lastHTML string
}

func (f *fakeRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	f.lastHTML = html
	return []byte("%PDF-1.4 fake"), nil
}

func newTestService() (*Service, *fakeRepo, *fakeRenderer) {
	repo := newFakeRepo()
	renderer := &fakeRenderer{}
	return NewService(repo, renderer), repo, renderer
}

func TestCreateRejectsEmptyContent(t *testing.T) {
	svc, _, _ := newTestService()

	for _, content := range []string{"", "null", `""`, "{}", "[]", "  "} {
		_, err := svc.Create(context.Background(), 1, CreateReportRequest{
			Title:   "Relatório",
			Content: json.RawMessage(content),
		})
		assert.ErrorIs(t, err, httpx.ErrValidation, "content %q", content)
	}
}

func TestUpdateOnlyCreatorAndOnlyDraft(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	report, err := svc.Create(ctx, 1, CreateReportRequest{Title: "T", Content: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, 2, report.ID, UpdateReportRequest{Title: "X", Content: json.RawMessage(`{"a":2}`)})
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	updated, err := svc.Update(ctx, 1, report.ID, UpdateReportRequest{Title: "X", Content: json.RawMessage(`{"a":2}`)})
	require.NoError(t, err)
	assert.Equal(t, "X", updated.Title)

	_, err = svc.Finalize(ctx, 1, report.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, 1, report.ID, UpdateReportRequest{Title: "Y", Content: json.RawMessage(`{"a":3}`)})
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestFinalizeIsOneWay(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	report, err := svc.Create(ctx, 1, CreateReportRequest{Title: "T", Content: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)

	finalized, err := svc.Finalize(ctx, 1, report.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFinalized, finalized.Status)

	_, err = svc.Finalize(ctx, 1, report.ID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestSignRejectsDraftAndDuplicates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	report, err := svc.Create(ctx, 1, CreateReportRequest{Title: "T", Content: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)

	_, err = svc.Sign(ctx, 2, report.ID)
	assert.ErrorIs(t, err, httpx.ErrForbidden, "draft must not be signable")

	_, err = svc.Finalize(ctx, 1, report.ID)
	require.NoError(t, err)

	detail, err := svc.Sign(ctx, 2, report.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSigned, detail.Status)
	require.Len(t, detail.Signatures, 1)

	_, err = svc.Sign(ctx, 2, report.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)

	// A different user may still add a signature.
	detail, err = svc.Sign(ctx, 3, report.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Signatures, 2)
}

func TestCrossUserSigningOnAnotherCreatorsReport(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	report, err := svc.Create(ctx, 1, CreateReportRequest{Title: "T", Content: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, 1, report.ID)
	require.NoError(t, err)

	detail, err := svc.Sign(ctx, 2, report.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.Signatures[0].UserID)
}

func TestDeleteOnlyDraft(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	report, err := svc.Create(ctx, 1, CreateReportRequest{Title: "T", Content: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, report.ID))
	_, err = repo.Get(ctx, report.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	other, err := svc.Create(ctx, 1, CreateReportRequest{Title: "T2", Content: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, 1, other.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, 1, other.ID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateLosesRaceAgainstFinalize(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	report, err := svc.Create(ctx, 1, CreateReportRequest{Title: "T", Content: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)

	// Status flips between the service's read and the guarded update.
	racer := &racingRepo{fakeRepo: repo, flipTo: StatusFinalized}
	racedSvc := NewService(racer, &fakeRenderer{})

	_, err = racedSvc.Update(ctx, 1, report.ID, UpdateReportRequest{Title: "X", Content: json.RawMessage(`{"a":2}`)})
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

type racingRepo struct {
	*fakeRepo
	flipTo string
}

func (r *racingRepo) UpdateDraft(ctx context.Context, id int64, title string, content json.RawMessage) (bool, error) {
	if report, ok := r.reports[id]; ok {
		report.Status = r.flipTo
	}
	return r.fakeRepo.UpdateDraft(ctx, id, title, content)
}

func TestExportPDFAnyStatus(t *testing.T) {
	svc, _, renderer := newTestService()
	ctx := context.Background()

	report, err := svc.Create(ctx, 1, CreateReportRequest{Title: "Relatório Mensal", Content: json.RawMessage(`{"total":"R$ 100,00"}`)})
	require.NoError(t, err)

	data, filename, err := svc.ExportPDF(ctx, report.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, fmt.Sprintf("relatorio-%d.pdf", report.ID), filename)
	assert.Contains(t, renderer.lastHTML, "Relatório Mensal")
	assert.Contains(t, renderer.lastHTML, "total")
}

func TestGetUnknownReport(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}
