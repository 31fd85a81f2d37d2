package settings

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
)

type fakeSettingsRepo struct {
	byUser map[int64]*Settings
	nextID int64
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{byUser: make(map[int64]*Settings), nextID: 1}
}

func (f *fakeSettingsRepo) Get(ctx context.Context, userID int64) (*Settings, bool, error) {
	s, ok := f.byUser[userID]
	if !ok {
		return nil, false, nil
	}
	copied := *s
	return &copied, true, nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, userID int64, empresa, cnpj, endereco string) (*Settings, error) {
	s, ok := f.byUser[userID]
	if !ok {
		s = &Settings{ID: f.nextID, UserID: userID, CreatedAt: time.Now()}
		f.nextID++
		f.byUser[userID] = s
	}
	s.Empresa = empresa
	s.CNPJ = cnpj
	s.Endereco = endereco
	s.UpdatedAt = time.Now()
	copied := *s
	return &copied, nil
}

func (f *fakeSettingsRepo) SetLogoPath(ctx context.Context, userID int64, path string) (string, *Settings, error) {
	s, ok := f.byUser[userID]
	if !ok {
		s = &Settings{ID: f.nextID, UserID: userID}
		f.nextID++
		f.byUser[userID] = s
	}
	previous := s.LogoPath
	s.LogoPath = path
	copied := *s
	return previous, &copied, nil
}

func newSettingsService(t *testing.T) (*Service, *fakeSettingsRepo, string) {
	t.Helper()
	repo := newFakeSettingsRepo()
	dir := t.TempDir()
	return NewService(slog.Default(), repo, dir), repo, dir
}

func TestGetReturnsDefaultsBeforeFirstSave(t *testing.T) {
	svc, _, _ := newSettingsService(t)

	s, err := svc.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.UserID)
	assert.Empty(t, s.Empresa)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newSettingsService(t)

	s, err := svc.Update(context.Background(), 1, UpdateSettingsRequest{
		Empresa: "CBMGO", CNPJ: "00.000.000/0001-00", Endereco: "Goiânia",
	})
	require.NoError(t, err)
	assert.Equal(t, "CBMGO", s.Empresa)
}

func TestSaveLogoStoresFileAndReplacesPrevious(t *testing.T) {
	svc, repo, dir := newSettingsService(t)
	ctx := context.Background()

	first, err := svc.SaveLogo(ctx, 1, "image/png", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	require.NotEmpty(t, first.LogoPath)
	assert.FileExists(t, filepath.Join(dir, first.LogoPath))

	second, err := svc.SaveLogo(ctx, 1, "image/jpeg", bytes.NewReader([]byte("jpg-bytes")))
	require.NoError(t, err)
	assert.NotEqual(t, first.LogoPath, second.LogoPath)
	assert.NoFileExists(t, filepath.Join(dir, first.LogoPath), "replaced logo must be removed")
	assert.Equal(t, second.LogoPath, repo.byUser[1].LogoPath)
}

func TestSaveLogoRejectsUnknownType(t *testing.T) {
	svc, _, dir := newSettingsService(t)

	_, err := svc.SaveLogo(context.Background(), 1, "application/pdf", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, httpx.ErrValidation)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "rejected upload must leave no file behind")
}

func TestSaveLogoRejectsOversizedFile(t *testing.T) {
	svc, _, dir := newSettingsService(t)

	big := bytes.Repeat([]byte("a"), maxLogoBytes+1)
	_, err := svc.SaveLogo(context.Background(), 1, "image/png", bytes.NewReader(big))
	assert.ErrorIs(t, err, httpx.ErrValidation)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestLogoPathWithoutUpload(t *testing.T) {
	svc, _, _ := newSettingsService(t)

	_, err := svc.LogoPath(context.Background(), 1)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestNormalizeContentType(t *testing.T) {
	for input, want := range map[string]string{
		"image/png":                 "image/png",
		"IMAGE/PNG":                 "image/png",
		"image/jpeg; charset=utf-8": "image/jpeg",
	} {
		assert.Equal(t, want, normalizeContentType(input), fmt.Sprintf("input %q", input))
	}
}
