package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// ArticleUseCase administración de artículos (alta, consulta, edición).
type ArticleUseCase struct {
	articleRepo repository.ArticleRepository
}

// NewArticleUseCase construye el caso de uso.
func NewArticleUseCase(articleRepo repository.ArticleRepository) *ArticleUseCase {
	return &ArticleUseCase{articleRepo: articleRepo}
}

// CreateArticleInput datos para dar de alta un artículo.
type CreateArticleInput struct {
	Code        string
	Designation string
	UnitMeasure string
	StockMin    *int64
	StockMax    *int64
}

// Create da de alta un artículo activo. El código es único: un duplicado
// devuelve domain.ErrDuplicateCode.
func (uc *ArticleUseCase) Create(ctx context.Context, in CreateArticleInput) (*entity.Article, error) {
	in.Code = strings.TrimSpace(in.Code)
	if in.Code == "" || strings.TrimSpace(in.Designation) == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validThresholds(in.StockMin, in.StockMax); err != nil {
		return nil, err
	}
	existing, err := uc.articleRepo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateCode
	}

	now := time.Now()
	article := &entity.Article{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Designation: strings.TrimSpace(in.Designation),
		UnitMeasure: in.UnitMeasure,
		StockMin:    in.StockMin,
		StockMax:    in.StockMax,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// GetByID obtiene un artículo; domain.ErrArticleNotFound si no existe.
func (uc *ArticleUseCase) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	article, err := uc.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.ErrArticleNotFound
	}
	return article, nil
}

// List lista artículos con paginación.
func (uc *ArticleUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Article, error) {
	return uc.articleRepo.List(ctx, clampLimit(limit), maxInt(offset, 0))
}

// UpdateArticleInput campos editables; nil = sin cambio.
type UpdateArticleInput struct {
	Designation *string
	UnitMeasure *string
	StockMin    *int64
	StockMax    *int64
	Active      *bool
}

// Update edita un artículo existente (edición explícita).
func (uc *ArticleUseCase) Update(ctx context.Context, id string, in UpdateArticleInput) (*entity.Article, error) {
	article, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Designation != nil {
		if strings.TrimSpace(*in.Designation) == "" {
			return nil, domain.ErrInvalidInput
		}
		article.Designation = strings.TrimSpace(*in.Designation)
	}
	if in.UnitMeasure != nil {
		article.UnitMeasure = *in.UnitMeasure
	}
	if in.StockMin != nil {
		article.StockMin = in.StockMin
	}
	if in.StockMax != nil {
		article.StockMax = in.StockMax
	}
	if err := validThresholds(article.StockMin, article.StockMax); err != nil {
		return nil, err
	}
	if in.Active != nil {
		article.Active = *in.Active
	}
	article.UpdatedAt = time.Now()
	if err := uc.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func validThresholds(min, max *int64) error {
	if min != nil && *min < 0 {
		return domain.ErrInvalidInput
	}
	if max != nil && *max < 0 {
		return domain.ErrInvalidInput
	}
	if min != nil && max != nil && *min > *max {
		return domain.ErrInvalidInput
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
