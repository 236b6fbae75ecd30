package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"

	"toyWholesale/models"
	"toyWholesale/services"

	"go.uber.org/zap"
)

// parseForm accepts multipart and urlencoded bodies up to the upload limit.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	err := r.ParseMultipartForm(h.maxUpload)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: upload exceeds %d bytes", models.ErrBadRequest, tooLarge.Limit)
		}
		h.log.Debug("parse form", zap.Error(err))
		return models.ErrBadRequest
	}
	return nil
}

// bindForm copies form values into the string fields of dst tagged with
// `form`, then validates dst.
func bindForm(r *http.Request, dst any) error {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("form")
		if name == "" || v.Field(i).Kind() != reflect.String {
			continue
		}
		v.Field(i).SetString(strings.TrimSpace(r.FormValue(name)))
	}
	return validate(dst)
}

// formFile returns the uploaded file under field, or nil when none was sent.
// The caller closes the returned file.
func formFile(r *http.Request, field string) (*services.Upload, multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, models.ErrBadRequest
	}
	return &services.Upload{Filename: hdr.Filename, Body: f}, f, nil
}
