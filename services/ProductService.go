package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"toyWholesale/models"
	"toyWholesale/pricing"
	"toyWholesale/repository"
	"toyWholesale/storage"

	"go.uber.org/zap"
)

// ProductInput carries every editable product attribute. An update replaces
// all of them; ImageURL empty with no new image keeps the stored picture.
type ProductInput struct {
	Name        string
	Description string
	Category    string
	AgeGroup    string
	Material    string
	Country     string
	Tiers       pricing.Tiers
	InStock     bool
	ImageURL    string
}

type ProductService struct {
	pr    repository.ProductRepository
	files storage.Storage
	log   *zap.Logger
}

func NewProductService(productRepo repository.ProductRepository, files storage.Storage, log *zap.Logger) ProductService {
	return ProductService{
		pr:    productRepo,
		files: files,
		log:   log.Named("products"),
	}
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: product name is required", models.ErrBadRequest)
	}
	if err := in.Tiers.Validate(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrBadRequest, err)
	}
	return nil
}

func (ps *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) (prods []models.Product_db, err error) {
	if filter.PriceRange != "" {
		if _, _, ok := models.PriceRangeBounds(filter.PriceRange); !ok {
			err = fmt.Errorf("%w: unknown price range %q", models.ErrBadRequest, filter.PriceRange)
			return
		}
	}
	prods, err = ps.pr.ListProducts(ctx, filter)
	if prods == nil && err == nil {
		prods = []models.Product_db{}
	}
	return
}

// GetProduct returns a product; hidden ones are visible only when includeHidden is set.
func (ps *ProductService) GetProduct(ctx context.Context, id int, includeHidden bool) (p models.Product_db, err error) {
	var ex bool
	p, ex, err = ps.pr.GetProductById(ctx, id)
	if err != nil {
		return
	}
	if !ex || (!p.InStock && !includeHidden) {
		err = models.ErrNotFoundError
	}
	return
}

func (ps *ProductService) saveImage(ctx context.Context, image *Upload) (url string, err error) {
	if image == nil {
		return
	}
	url, err = ps.files.Save(ctx, storage.KindProduct, image.Filename, image.Body)
	if err != nil {
		err = uploadError(ps.log, "saveImage", err)
	}
	return
}

func (ps *ProductService) CreateProduct(ctx context.Context, in ProductInput, image *Upload) (p models.Product_db, err error) {
	if err = in.validate(); err != nil {
		return
	}
	url, err := ps.saveImage(ctx, image)
	if err != nil {
		return
	}
	if url == "" {
		url = in.ImageURL
	}

	p = models.Product_db{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		AgeGroup:    strings.TrimSpace(in.AgeGroup),
		Material:    strings.TrimSpace(in.Material),
		Country:     strings.TrimSpace(in.Country),
		Tiers:       in.Tiers,
		InStock:     in.InStock,
		ImageURL:    sql.NullString{String: url, Valid: url != ""},
		CreatedAt:   time.Now().UTC(),
	}
	p.Id, err = ps.pr.CreateProduct(ctx, p)
	if err != nil && image != nil {
		discardUpload(ctx, ps.files, ps.log, "CreateProduct", url)
	}
	return
}

func (ps *ProductService) UpdateProduct(ctx context.Context, id int, in ProductInput, image *Upload) (p models.Product_db, err error) {
	if err = in.validate(); err != nil {
		return
	}
	p, err = ps.GetProduct(ctx, id, true)
	if err != nil {
		return
	}
	url, err := ps.saveImage(ctx, image)
	if err != nil {
		return
	}
	if url == "" {
		url = in.ImageURL
	}
	if url != "" {
		p.ImageURL = sql.NullString{String: url, Valid: true}
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Category = strings.TrimSpace(in.Category)
	p.AgeGroup = strings.TrimSpace(in.AgeGroup)
	p.Material = strings.TrimSpace(in.Material)
	p.Country = strings.TrimSpace(in.Country)
	p.Tiers = in.Tiers
	p.InStock = in.InStock

	err = ps.pr.UpdateProduct(ctx, p)
	if err != nil && image != nil {
		discardUpload(ctx, ps.files, ps.log, "UpdateProduct", url)
	}
	return
}

func (ps *ProductService) DeleteProduct(ctx context.Context, id int) error {
	return ps.pr.DeleteProduct(ctx, id)
}
