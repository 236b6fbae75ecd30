package services

import (
	"context"

	"toyWholesale/entities"
	"toyWholesale/models"
	"toyWholesale/repository"
)

type CategoryService struct {
	cr repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return CategoryService{
		cr: categoryRepo,
	}
}

// Facets collects the filter values offered by the catalog.
func (cs *CategoryService) Facets(ctx context.Context, includeHidden bool) (facets entities.Facets, err error) {
	targets := []struct {
		column string
		dst    *[]string
	}{
		{repository.FacetCategory, &facets.Categories},
		{repository.FacetAgeGroup, &facets.AgeGroups},
		{repository.FacetMaterial, &facets.Materials},
		{repository.FacetCountry, &facets.Countries},
	}
	for _, t := range targets {
		*t.dst, err = cs.cr.GetFacetValues(ctx, t.column, includeHidden)
		if err != nil {
			return
		}
		if *t.dst == nil {
			*t.dst = []string{}
		}
	}
	facets.PriceRanges = models.PriceRangeNames()
	return
}
