package settings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/cbmgo/financeiro/internal/platform/httpx"
)

// 2 MB is plenty for a letterhead logo.
const maxLogoBytes = 2 << 20

var allowedLogoTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// Repository is the persistence surface the service needs.
type Repository interface {
	Get(ctx context.Context, userID int64) (*Settings, bool, error)
	Upsert(ctx context.Context, userID int64, empresa, cnpj, endereco string) (*Settings, error)
	SetLogoPath(ctx context.Context, userID int64, path string) (previous string, s *Settings, err error)
}

// Service manages the per-user company profile and its logo file.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	uploadDir string
}

// NewService constructs a Service storing logos under uploadDir.
func NewService(logger *slog.Logger, repo Repository, uploadDir string) *Service {
	return &Service{logger: logger, repo: repo, uploadDir: uploadDir}
}

// Get returns the user's profile, empty defaults before the first save.
func (s *Service) Get(ctx context.Context, userID int64) (*Settings, error) {
	stored, ok, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Settings{UserID: userID}, nil
	}
	return stored, nil
}

// Update replaces the company profile fields.
func (s *Service) Update(ctx context.Context, userID int64, req UpdateSettingsRequest) (*Settings, error) {
	return s.repo.Upsert(ctx, userID, req.Empresa, req.CNPJ, req.Endereco)
}

// SaveLogo stores the uploaded image under a random name and records its
// path, removing the file it replaces.
func (s *Service) SaveLogo(ctx context.Context, userID int64, contentType string, body io.Reader) (*Settings, error) {
	ext, ok := allowedLogoTypes[normalizeContentType(contentType)]
	if !ok {
		return nil, fmt.Errorf("%w: logo must be PNG or JPEG", httpx.ErrValidation)
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, err
	}
	name := uuid.NewString() + ext
	path := filepath.Join(s.uploadDir, name)

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	written, err := io.Copy(file, io.LimitReader(body, maxLogoBytes+1))
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > maxLogoBytes {
		err = fmt.Errorf("%w: logo exceeds 2MB", httpx.ErrValidation)
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	previous, stored, err := s.repo.SetLogoPath(ctx, userID, name)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	if previous != "" && previous != name {
		if err := os.Remove(filepath.Join(s.uploadDir, previous)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("remove replaced logo", slog.String("path", previous), slog.Any("error", err))
		}
	}
	return stored, nil
}

// LogoPath resolves the stored logo for serving. Empty when none uploaded.
func (s *Service) LogoPath(ctx context.Context, userID int64) (string, error) {
	stored, ok, err := s.repo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if !ok || stored.LogoPath == "" {
		return "", fmt.Errorf("%w: logo", httpx.ErrNotFound)
	}
	return filepath.Join(s.uploadDir, stored.LogoPath), nil
}

func normalizeContentType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}
