package http

import (
	"context"

	"edustats/internal/services"
	"edustats/pkg/contracts/domain"
)

// QueryServiceInterface defines the read-only queries served by EducationHandler
type QueryServiceInterface interface {
	Meta(ctx context.Context) services.MetaResponse
	Stats(ctx context.Context, f services.Filter) services.StatsResponse
	Countries(ctx context.Context, f services.Filter, order services.Sort, page services.Page) services.CountriesResponse
	Country(ctx context.Context, code string) (domain.CleanRow, error)
	Insights(ctx context.Context) domain.InsightsSnapshot
	LiveInsights(ctx context.Context, f services.Filter) domain.InsightsSnapshot
}
