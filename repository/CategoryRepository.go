package repository

import (
	"context"
	"database/sql"
	"errors"

	"toyWholesale/models"

	"go.uber.org/zap"
)

// Product attribute columns that can be used as catalog filters.
const (
	FacetCategory = "category"
	FacetAgeGroup = "age_group"
	FacetMaterial = "material"
	FacetCountry  = "country"
)

type CategoryRepository interface {
	// GetFacetValues lists the distinct non-empty values of one attribute column.
	GetFacetValues(ctx context.Context, column string, includeHidden bool) ([]string, error)
}

type CategoryRepo struct {
	db  *sql.DB
	log *zap.Logger
}

func NewCategoryRepository(conn *sql.DB, log *zap.Logger) (CategoryRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &CategoryRepo{
		db:  conn,
		log: log.Named("categories"),
	}, nil
}

func (c *CategoryRepo) GetFacetValues(ctx context.Context, column string, includeHidden bool) (values []string, err error) {
	switch column {
	case FacetCategory, FacetAgeGroup, FacetMaterial, FacetCountry:
	default:
		c.log.Error("GetFacetValues: unknown column", zap.String("column", column))
		err = models.ErrBadRequest
		return
	}

	var w whereBuilder
	w.add(column + " <> ''")
	if !includeHidden {
		w.add("in_stock = ?", true)
	}
	rows, err := c.db.QueryContext(ctx, "SELECT DISTINCT "+column+" FROM products"+w.String()+" ORDER BY "+column, w.params...)
	if err != nil {
		c.log.Error("GetFacetValues", zap.Error(err))
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	values = []string{}
	for rows.Next() {
		var v string
		if err = rows.Scan(&v); err != nil {
			c.log.Error("GetFacetValues", zap.Error(err))
			err = models.ErrServerError
			return
		}
		values = append(values, v)
	}
	if err = rows.Err(); err != nil {
		c.log.Error("GetFacetValues", zap.Error(err))
		err = models.ErrServerError
	}
	return
}
