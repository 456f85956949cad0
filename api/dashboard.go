package api

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-finance-client/dashboard"
)

const (
	dashboardStatsPath  = "/dashboard/stats"
	dashboardHourlyPath = "/dashboard/hourly-calculation"
)

type DashboardService struct {
	client *Client
}

func (s *DashboardService) Stats(ctx context.Context, period dashboard.Period) (*dashboard.Stats, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	req := NewRequest(http.MethodGet, dashboardStatsPath)
	req.Query = period.Values()

	var stats dashboard.Stats
	if err := s.client.doJSON(ctx, req, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *DashboardService) HourlyCalculation(ctx context.Context, in dashboard.HourlyCalculationRequest) (*dashboard.HourlyCalculationResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := NewJSONRequest(http.MethodPost, dashboardHourlyPath, in)
	if err != nil {
		return nil, err
	}

	var out dashboard.HourlyCalculationResponse
	if err := s.client.doJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
