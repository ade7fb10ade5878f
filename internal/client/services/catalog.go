package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/studyshare/internal/category"
	"github.com/dmitrijs2005/studyshare/internal/client/client"
	"github.com/dmitrijs2005/studyshare/internal/client/models"
	"github.com/dmitrijs2005/studyshare/internal/common"
	"github.com/dmitrijs2005/studyshare/internal/filex"
)

// UploadInput is what the user typed in the upload form.
type UploadInput struct {
	Path        string
	ClassCode   string
	Category    string
	DisplayName string
}

// CatalogService lists and uploads study files.
type CatalogService interface {
	Categories(ctx context.Context) ([]models.CategoryInfo, error)
	List(ctx context.Context, scope models.Scope) ([]*models.File, error)
	Upload(ctx context.Context, in UploadInput) (*models.File, error)
}

type catalogService struct {
	client        client.Client
	maxUploadSize int64
}

func NewCatalogService(c client.Client, maxUploadSize int64) CatalogService {
	return &catalogService{client: c, maxUploadSize: maxUploadSize}
}

func (s *catalogService) Categories(ctx context.Context) ([]models.CategoryInfo, error) {
	return s.client.Categories(ctx)
}

func (s *catalogService) List(ctx context.Context, scope models.Scope) ([]*models.File, error) {
	return s.client.ListFiles(ctx, scope)
}

// Upload checks the form locally, reads the file and sends it. Nothing is
// sent when the form is incomplete or the file is over the size limit.
func (s *catalogService) Upload(ctx context.Context, in UploadInput) (*models.File, error) {
	classCode := strings.TrimSpace(in.ClassCode)
	displayName := strings.TrimSpace(in.DisplayName)
	if classCode == "" || displayName == "" {
		return nil, fmt.Errorf("%w: class code and name are required", common.ErrValidation)
	}

	if strings.TrimSpace(in.Category) == "" {
		return nil, fmt.Errorf("%w: category is required", common.ErrValidation)
	}
	cat, err := category.Parse(in.Category)
	if err != nil {
		return nil, err
	}

	content, fileName, err := filex.ReadLimited(in.Path, s.maxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	return s.client.UploadFile(ctx, models.Upload{
		Content:     content,
		FileName:    fileName,
		ClassCode:   classCode,
		Category:    cat,
		DisplayName: displayName,
	})
}
