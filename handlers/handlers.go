package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"toyWholesale/models"
	"toyWholesale/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	us  services.UserService
	ps  services.ProductService
	cs  services.CartService
	cas services.CategoryService
	ors services.OrderService
	chs services.ChatService
	sts services.StatsService

	log          *zap.Logger
	login        *ipLimiter
	cookieSecure bool
	tokenTTL     time.Duration
	maxUpload    int64
	health       map[string]func(context.Context) error
}

type HandlerParams struct {
	UsrService   services.UserService
	PrdService   services.ProductService
	CrtService   services.CartService
	CatsService  services.CategoryService
	OrdService   services.OrderService
	ChtService   services.ChatService
	StatsService services.StatsService

	Logger         *zap.Logger
	LoginRate      float64
	LoginBurst     int
	CookieSecure   bool
	TokenTTL       time.Duration
	MaxUploadBytes int64
	// HealthChecks are run by /health; any failure turns it into a 503.
	HealthChecks map[string]func(context.Context) error
}

func NewHandler(params HandlerParams) *Handler {
	log := params.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxUpload := params.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 5 << 20
	}
	return &Handler{
		us:           params.UsrService,
		ps:           params.PrdService,
		cs:           params.CrtService,
		cas:          params.CatsService,
		ors:          params.OrdService,
		chs:          params.ChtService,
		sts:          params.StatsService,
		log:          log.Named("http"),
		login:        newIPLimiter(params.LoginRate, params.LoginBurst),
		cookieSecure: params.CookieSecure,
		tokenTTL:     params.TokenTTL,
		maxUpload:    maxUpload,
		health:       params.HealthChecks,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	failed := map[string]string{}
	for name, check := range h.health {
		if err := check(r.Context()); err != nil {
			h.log.Warn("health check failed", zap.String("check", name), zap.Error(err))
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, h.log, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, h.log, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, v any) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error("Marshal err", zap.Error(err))
		WriteErrorResponse(w, models.ErrServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(jsonData)
}

func (h *Handler) ok(w http.ResponseWriter, v any) {
	writeJSON(w, h.log, http.StatusOK, v)
}

func (h *Handler) created(w http.ResponseWriter, v any) {
	writeJSON(w, h.log, http.StatusCreated, v)
}

// maxJSONBody bounds every JSON request body.
const maxJSONBody = 1 << 20

// decodeJSON reads a JSON body into dst and validates it.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body exceeds %d bytes", models.ErrBadRequest, tooLarge.Limit)
		}
		h.log.Debug("Unmarshal err", zap.Error(err))
		return models.ErrBadRequest
	}
	return validate(dst)
}

func pathId(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, models.ErrBadRequest
	}
	return id, nil
}

type errorBody struct {
	Error string `json:"error"`
}

// WriteErrorResponse maps an error onto its HTTP status. Server errors never
// leak their cause.
func WriteErrorResponse(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := models.ErrServerError.Error()
	switch {
	case errors.Is(err, models.ErrServerError):
	case errors.Is(err, models.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, models.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, models.ErrNotFoundError):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrTooManyRequests):
		status, msg = http.StatusTooManyRequests, err.Error()
	case errors.Is(err, models.ErrBadRequest):
		status, msg = http.StatusBadRequest, err.Error()
	}
	jsonData, _ := json.Marshal(errorBody{Error: msg})
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(jsonData)
}
