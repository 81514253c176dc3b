package request

import (
	"github.com/ed-robles/shop-template/internal/domain/product"
	"github.com/ed-robles/shop-template/internal/usecase/commands"
)

type CreateProductRequest struct {
	Name          string `json:"name" binding:"required"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	ImageURL      string `json:"imageUrl"`
	Category      string `json:"category" binding:"required"`
	PriceInCents  int64  `json:"priceInCents" binding:"min=0"`
	StockQuantity int32  `json:"stockQuantity" binding:"min=0"`
	Status        string `json:"status"`
}

func (r CreateProductRequest) ToCommand() (commands.CreateProductRequest, bool) {
	category, ok := product.ParseCategory(r.Category)
	if !ok {
		return commands.CreateProductRequest{}, false
	}

	status := product.StatusDraft
	if r.Status != "" {
		status, ok = product.ParseStatus(r.Status)
		if !ok {
			return commands.CreateProductRequest{}, false
		}
	}

	return commands.CreateProductRequest{
		Name:          r.Name,
		Slug:          r.Slug,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		Category:      category,
		PriceInCents:  r.PriceInCents,
		StockQuantity: r.StockQuantity,
		Status:        status,
	}, true
}

type UpdateProductRequest struct {
	Name          *string `json:"name,omitempty"`
	Slug          *string `json:"slug,omitempty"`
	Description   *string `json:"description,omitempty"`
	ImageURL      *string `json:"imageUrl,omitempty"`
	Category      *string `json:"category,omitempty"`
	PriceInCents  *int64  `json:"priceInCents,omitempty"`
	StockQuantity *int32  `json:"stockQuantity,omitempty"`
	Status        *string `json:"status,omitempty"`
}

func (r UpdateProductRequest) ToCommand() (commands.UpdateProductRequest, bool) {
	cmd := commands.UpdateProductRequest{
		Name:          r.Name,
		Slug:          r.Slug,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		PriceInCents:  r.PriceInCents,
		StockQuantity: r.StockQuantity,
	}

	if r.Category != nil {
		category, ok := product.ParseCategory(*r.Category)
		if !ok {
			return commands.UpdateProductRequest{}, false
		}
		cmd.Category = &category
	}
	if r.Status != nil {
		status, ok := product.ParseStatus(*r.Status)
		if !ok {
			return commands.UpdateProductRequest{}, false
		}
		cmd.Status = &status
	}

	return cmd, true
}
