package commands

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ed-robles/shop-template/internal/domain/product"
	"github.com/ed-robles/shop-template/internal/pkg/errs"
	"github.com/ed-robles/shop-template/internal/pkg/slug"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound     = errs.New("product not found")
	ErrInvalidProductSlug  = errs.New("could not build a valid slug")
	ErrInvalidProductInput = errs.New("invalid product input")
	ErrSKUGenerationFailed = errs.New("unable to generate a unique sku")
)

const maxSKUGenerationAttempts = 25

type CreateProductRequest struct {
	Name          string
	Slug          string
	Description   string
	ImageURL      string
	Category      product.Category
	PriceInCents  int64
	StockQuantity int32
	Status        product.Status
}

// UpdateProductRequest patches a product; nil fields stay untouched.
// StockQuantity is an absolute set, not a delta.
type UpdateProductRequest struct {
	Name          *string
	Slug          *string
	Description   *string
	ImageURL      *string
	Category      *product.Category
	PriceInCents  *int64
	StockQuantity *int32
	Status        *product.Status
}

type AdminProductCommands interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*shared.ProductSnapshot, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*shared.ProductSnapshot, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
}

type adminProductUseCaseImpl struct {
	uow shared.UnitOfWork
}

func NewAdminProductUseCase(uow shared.UnitOfWork) AdminProductCommands {
	return &adminProductUseCaseImpl{uow: uow}
}

func (uc *adminProductUseCaseImpl) CreateProduct(ctx context.Context, req CreateProductRequest) (*shared.ProductSnapshot, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, ErrInvalidProductInput
	}
	if req.PriceInCents <= 0 || req.StockQuantity < 0 {
		return nil, ErrInvalidProductInput
	}

	base := slug.Make(req.Slug)
	if base == "" {
		base = slug.Make(req.Name)
	}
	if base == "" {
		return nil, ErrInvalidProductSlug
	}

	var snapshot *shared.ProductSnapshot
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		uniqueSlug, err := uniquifySlug(ctx, tx, base, uuid.Nil)
		if err != nil {
			return err
		}

		productID, err := tx.Products().Create(ctx, tx.DB(), shared.NewProduct{
			Slug:          uniqueSlug,
			Name:          strings.TrimSpace(req.Name),
			Description:   strings.TrimSpace(req.Description),
			ImageURL:      strings.TrimSpace(req.ImageURL),
			Category:      req.Category,
			PriceInCents:  req.PriceInCents,
			StockQuantity: req.StockQuantity,
			Status:        req.Status,
		})
		if err != nil {
			return err
		}

		if err := assignSKU(ctx, tx, productID); err != nil {
			return err
		}

		snapshot, err = tx.Products().FindByID(ctx, tx.DB(), productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (uc *adminProductUseCaseImpl) UpdateProduct(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*shared.ProductSnapshot, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrInvalidProductInput
	}
	if req.PriceInCents != nil && *req.PriceInCents <= 0 {
		return nil, ErrInvalidProductInput
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		return nil, ErrInvalidProductInput
	}

	var snapshot *shared.ProductSnapshot
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, err := tx.Products().FindByID(ctx, tx.DB(), productID)
		if err != nil {
			if isNotFound(err) {
				return ErrProductNotFound
			}
			return err
		}

		patch := shared.ProductPatch{
			Name:          req.Name,
			Description:   req.Description,
			ImageURL:      req.ImageURL,
			Category:      req.Category,
			PriceInCents:  req.PriceInCents,
			StockQuantity: req.StockQuantity,
			Status:        req.Status,
		}

		if req.Slug != nil {
			base := slug.Make(*req.Slug)
			if base == "" {
				return ErrInvalidProductSlug
			}
			if base != existing.Slug {
				uniqueSlug, err := uniquifySlug(ctx, tx, base, productID)
				if err != nil {
					return err
				}
				patch.Slug = &uniqueSlug
			}
		}

		if err := tx.Products().Update(ctx, tx.DB(), productID, patch); err != nil {
			return err
		}
		snapshot, err = tx.Products().FindByID(ctx, tx.DB(), productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (uc *adminProductUseCaseImpl) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Products().FindByID(ctx, tx.DB(), productID); err != nil {
			if isNotFound(err) {
				return ErrProductNotFound
			}
			return err
		}
		return tx.Products().Delete(ctx, tx.DB(), productID)
	})
}

// uniquifySlug appends an incrementing numeric suffix until the slug is
// free. excludeID lets an update keep its own slug.
func uniquifySlug(ctx context.Context, tx shared.Tx, base string, excludeID uuid.UUID) (string, error) {
	candidate := base
	for suffix := 1; ; suffix++ {
		ownerID, err := tx.Products().FindIDBySlug(ctx, tx.DB(), candidate)
		if err != nil {
			if isNotFound(err) {
				return candidate, nil
			}
			return "", err
		}
		if ownerID == excludeID {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}

// assignSKU retries random six digit SKUs until one sticks.
func assignSKU(ctx context.Context, tx shared.Tx, productID uuid.UUID) error {
	for attempt := 0; attempt < maxSKUGenerationAttempts; attempt++ {
		sku := fmt.Sprintf("%06d", rand.IntN(900000)+100000)
		affected, err := tx.Products().AssignSKU(ctx, tx.DB(), productID, sku)
		if err != nil {
			return err
		}
		if affected == 1 {
			return nil
		}
	}
	return ErrSKUGenerationFailed
}
