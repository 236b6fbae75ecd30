package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"toyWholesale/models"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

type ProductRepository interface {
	GetProductById(ctx context.Context, id int) (pModel models.Product_db, exists bool, err error)
	GetProductsByIds(ctx context.Context, ids []int) (map[int]models.Product_db, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product_db, error)
	CreateProduct(ctx context.Context, pModel models.Product_db) (newId int, err error)
	UpdateProduct(ctx context.Context, pModel models.Product_db) (err error)
	DeleteProduct(ctx context.Context, id int) (err error)
}

type ProductRepo struct {
	db  *sql.DB
	log *zap.Logger
}

func NewProductRepository(conn *sql.DB, log *zap.Logger) (ProductRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &ProductRepo{
		db:  conn,
		log: log.Named("products"),
	}, nil
}

const productColumns = "id, name, description, category, age_group, material, country, price5, price20, price50, in_stock, image_url, created_at"

func scanProduct(row interface{ Scan(...any) error }, p *models.Product_db) error {
	return row.Scan(&p.Id, &p.Name, &p.Description, &p.Category, &p.AgeGroup, &p.Material, &p.Country,
		&p.Tiers.Price5, &p.Tiers.Price20, &p.Tiers.Price50, &p.InStock, &p.ImageURL, &p.CreatedAt)
}

func (p *ProductRepo) GetProductById(ctx context.Context, id int) (pModel models.Product_db, exists bool, err error) {
	row := p.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	err = scanProduct(row, &pModel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
		} else {
			p.log.Error("GetProductById", zap.Error(err))
			err = models.ErrServerError
		}
		return
	}
	exists = true
	return
}

// GetProductsByIds loads the given products in one query. Missing ids are
// absent from the result.
func (p *ProductRepo) GetProductsByIds(ctx context.Context, ids []int) (prods map[int]models.Product_db, err error) {
	prods = make(map[int]models.Product_db, len(ids))
	if len(ids) == 0 {
		return
	}
	var w whereBuilder
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	w.add("id IN ("+strings.Join(marks, ", ")+")", args...)

	list, err := p.query(ctx, "GetProductsByIds", "SELECT "+productColumns+" FROM products"+w.String(), w.params)
	if err != nil {
		return
	}
	for _, pr := range list {
		prods[pr.Id] = pr
	}
	return
}

// ListProducts returns products matching filter, newest first. Hidden
// (out of stock) products are only included when filter.IncludeHidden is set.
func (p *ProductRepo) ListProducts(ctx context.Context, filter models.ProductFilter) (prods []models.Product_db, err error) {
	var w whereBuilder
	if !filter.IncludeHidden {
		w.add("in_stock = ?", true)
	}
	w.in("category", filter.Categories)
	w.in("age_group", filter.AgeGroups)
	w.in("material", filter.Materials)
	w.in("country", filter.Countries)
	if min, max, ok := models.PriceRangeBounds(filter.PriceRange); ok {
		if min > 0 {
			w.add("CAST(price5 AS NUMERIC) >= ?", min)
		}
		if max > 0 {
			w.add("CAST(price5 AS NUMERIC) < ?", max)
		}
	}

	query := "SELECT " + productColumns + " FROM products" + w.String() + " ORDER BY created_at DESC, id DESC"
	all, err := p.query(ctx, "ListProducts", query, w.params)
	if err != nil {
		return
	}

	// text search runs here so that case folding covers Cyrillic on every driver
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(filter.Search))
	prods = make([]models.Product_db, 0, len(all))
	for _, pr := range all {
		if search != "" &&
			!strings.Contains(fold.String(pr.Name), search) &&
			!strings.Contains(fold.String(pr.Description), search) {
			continue
		}
		prods = append(prods, pr)
	}
	return
}

func (p *ProductRepo) query(ctx context.Context, op, query string, params []any) (prods []models.Product_db, err error) {
	rows, err := p.db.QueryContext(ctx, query, params...)
	if err != nil {
		p.log.Error(op, zap.Error(err))
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	for rows.Next() {
		var pr models.Product_db
		if err = scanProduct(rows, &pr); err != nil {
			p.log.Error(op, zap.Error(err))
			err = models.ErrServerError
			return
		}
		prods = append(prods, pr)
	}
	if err = rows.Err(); err != nil {
		p.log.Error(op, zap.Error(err))
		err = models.ErrServerError
	}
	return
}

func (p *ProductRepo) CreateProduct(ctx context.Context, pModel models.Product_db) (newId int, err error) {
	err = p.db.QueryRowContext(ctx, `INSERT INTO products
		(name, description, category, age_group, material, country, price5, price20, price50, in_stock, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		pModel.Name, pModel.Description, pModel.Category, pModel.AgeGroup, pModel.Material, pModel.Country,
		pModel.Tiers.Price5, pModel.Tiers.Price20, pModel.Tiers.Price50, pModel.InStock, pModel.ImageURL,
		pModel.CreatedAt).Scan(&newId)
	if err != nil {
		p.log.Error("CreateProduct", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

// UpdateProduct replaces every mutable attribute of the product.
func (p *ProductRepo) UpdateProduct(ctx context.Context, pModel models.Product_db) (err error) {
	res, err := p.db.ExecContext(ctx, `UPDATE products SET
		name = $1, description = $2, category = $3, age_group = $4, material = $5, country = $6,
		price5 = $7, price20 = $8, price50 = $9, in_stock = $10, image_url = $11
		WHERE id = $12`,
		pModel.Name, pModel.Description, pModel.Category, pModel.AgeGroup, pModel.Material, pModel.Country,
		pModel.Tiers.Price5, pModel.Tiers.Price20, pModel.Tiers.Price50, pModel.InStock, pModel.ImageURL,
		pModel.Id)
	if err != nil {
		p.log.Error("UpdateProduct", zap.Error(err))
		err = models.ErrServerError
		return
	}
	return p.requireAffected(res, "UpdateProduct")
}

func (p *ProductRepo) DeleteProduct(ctx context.Context, id int) (err error) {
	res, err := p.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		p.log.Error("DeleteProduct", zap.Error(err))
		err = models.ErrServerError
		return
	}
	return p.requireAffected(res, "DeleteProduct")
}

func (p *ProductRepo) requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		p.log.Error(op, zap.Error(err))
		return models.ErrServerError
	}
	if n == 0 {
		return models.ErrNotFoundError
	}
	return nil
}
