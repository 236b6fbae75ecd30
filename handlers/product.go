package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"toyWholesale/entities"
	"toyWholesale/models"
	"toyWholesale/pricing"
	"toyWholesale/services"
)

// queryList collects a multi-value filter given either as repeated
// parameters or as one comma-separated value.
func queryList(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// showHidden reports whether the caller asked for out-of-stock products.
// Only admins may.
func showHidden(r *http.Request) (bool, error) {
	all := r.URL.Query().Get("all")
	if all == "" {
		return false, nil
	}
	want, err := strconv.ParseBool(all)
	if err != nil {
		return false, fmt.Errorf("%w: all must be a boolean", models.ErrBadRequest)
	}
	if !want {
		return false, nil
	}
	caller, ok := CallerFrom(r.Context())
	if !ok || !caller.IsAdmin {
		return false, models.ErrForbidden
	}
	return true, nil
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	includeHidden, err := showHidden(r)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	q := r.URL.Query()
	filter := models.ProductFilter{
		Categories:    queryList(q, "category"),
		AgeGroups:     queryList(q, "ageGroup"),
		Materials:     queryList(q, "material"),
		Countries:     queryList(q, "country"),
		Search:        strings.TrimSpace(q.Get("search")),
		PriceRange:    strings.TrimSpace(q.Get("priceRange")),
		IncludeHidden: includeHidden,
	}
	prods, err := h.ps.ListProducts(r.Context(), filter)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	res := make([]entities.Product, 0, len(prods))
	for _, p := range prods {
		res = append(res, entities.NewProduct(p))
	}
	h.ok(w, res)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	p, err := h.ps.GetProduct(r.Context(), id, caller.IsAdmin)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, entities.NewProduct(p))
}

func (h *Handler) ProductFacets(w http.ResponseWriter, r *http.Request) {
	includeHidden, err := showHidden(r)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	facets, err := h.cas.Facets(r.Context(), includeHidden)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, facets)
}

// productInput reads a product form along with its optional image. The
// returned cleanup closes the upload.
func (h *Handler) productInput(w http.ResponseWriter, r *http.Request) (in services.ProductInput, image *services.Upload, cleanup func(), err error) {
	cleanup = func() {}
	if err = h.parseForm(w, r); err != nil {
		return
	}
	var form productForm
	if err = bindForm(r, &form); err != nil {
		return
	}
	tiers, e := pricing.NewTiers(form.Price5, form.Price20, form.Price50)
	if e != nil {
		err = fmt.Errorf("%w: %w", models.ErrBadRequest, e)
		return
	}
	inStock := true
	if form.InStock != "" {
		if inStock, e = strconv.ParseBool(form.InStock); e != nil {
			err = fmt.Errorf("%w: inStock must be a boolean", models.ErrBadRequest)
			return
		}
	}
	in = services.ProductInput{
		Name:        form.Name,
		Description: form.Description,
		Category:    form.Category,
		AgeGroup:    form.AgeGroup,
		Material:    form.Material,
		Country:     form.Country,
		Tiers:       tiers,
		InStock:     inStock,
		ImageURL:    form.ImageURL,
	}
	image, f, err := formFile(r, "image")
	if f != nil {
		cleanup = func() { f.Close() }
	}
	return
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	in, image, cleanup, err := h.productInput(w, r)
	defer cleanup()
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	p, err := h.ps.CreateProduct(r.Context(), in, image)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.created(w, entities.NewProduct(p))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	in, image, cleanup, err := h.productInput(w, r)
	defer cleanup()
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	p, err := h.ps.UpdateProduct(r.Context(), id, in, image)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, entities.NewProduct(p))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	if err = h.ps.DeleteProduct(r.Context(), id); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.ok(w, map[string]int{"deleted": id})
}
