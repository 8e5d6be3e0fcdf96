package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "edustats/internal/errors"
	"edustats/internal/services"
)

// EducationHandler serves the clean table and insights
type EducationHandler struct {
	service      QueryServiceInterface
	cleanCSV     string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewEducationHandler creates a handler; cleanCSV is the file served by the
// download route
func NewEducationHandler(service QueryServiceInterface, cleanCSV string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *EducationHandler {
	return &EducationHandler{
		service:      service,
		cleanCSV:     cleanCSV,
		logger:       logger.With(slog.String("component", "education_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the query routes, mounted under /api
func (h *EducationHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/meta", h.GetMeta)
		r.Get("/stats", h.GetStats)
		r.Get("/countries", h.GetCountries)
		r.Get("/country/{code}", h.GetCountry)
		r.Get("/insights", h.GetInsights)
		r.Get("/insights/live", h.GetLiveInsights)
	})

	r.Get("/download/clean", h.DownloadClean)

	return r
}

// GetMeta handles GET /api/meta
func (h *EducationHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Meta(r.Context()))
}

// GetStats handles GET /api/stats
func (h *EducationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	filter := services.ParseFilter(r.URL.Query())
	render.JSON(w, r, h.service.Stats(r.Context(), filter))
}

// GetCountries handles GET /api/countries
func (h *EducationHandler) GetCountries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := h.service.Countries(r.Context(),
		services.ParseFilter(q),
		services.ParseSort(q),
		services.ParsePage(q))

	h.logger.DebugContext(r.Context(), "countries listed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("total", resp.Total),
		slog.Int("page", resp.Page))

	render.JSON(w, r, resp)
}

// GetCountry handles GET /api/country/{code}
func (h *EducationHandler) GetCountry(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	row, err := h.service.Country(r.Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrCountryNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.CountryNotFoundError(code))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, row)
}

// GetInsights handles GET /api/insights
func (h *EducationHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Insights(r.Context()))
}

// GetLiveInsights handles GET /api/insights/live
func (h *EducationHandler) GetLiveInsights(w http.ResponseWriter, r *http.Request) {
	filter := services.ParseFilter(r.URL.Query())
	render.JSON(w, r, h.service.LiveInsights(r.Context(), filter))
}

// DownloadClean handles GET /api/download/clean
func (h *EducationHandler) DownloadClean(w http.ResponseWriter, r *http.Request) {
	file, err := os.Open(h.cleanCSV)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			h.errorHandler.HandleError(w, r, apierrors.ErrDataNotFound)
			return
		}
		h.errorHandler.HandleError(w, r, fmt.Errorf("open clean table: %w", err))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("stat clean table: %w", err))
		return
	}

	name := filepath.Base(h.cleanCSV)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	h.logger.InfoContext(r.Context(), "clean table downloaded",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int64("size", info.Size()))

	http.ServeContent(w, r, name, info.ModTime(), file)
}
