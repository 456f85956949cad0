package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/reports"
)

const reportsPath = "/reports/"

type ReportsService struct {
	client *Client
}

// Report is a downloaded report. The caller closes Body.
type Report struct {
	Body        io.ReadCloser
	ContentType string
	FileName    string
}

func (s *ReportsService) PDF(ctx context.Context, q reports.Query) (*Report, error) {
	return s.Download(ctx, reports.PDF, q)
}

func (s *ReportsService) Excel(ctx context.Context, q reports.Query) (*Report, error) {
	return s.Download(ctx, reports.Excel, q)
}

func (s *ReportsService) Download(ctx context.Context, format reports.Format, q reports.Query) (*Report, error) {
	if !reports.ValidFormat(format) {
		return nil, fmt.Errorf("%w: unknown report format %q", ferrors.ErrInvalidArgument, format)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	req := NewRequest(http.MethodGet, reportsPath+string(format))
	req.Query = q.Values()
	req.Accept = "*/*"

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Report{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		FileName:    attachmentName(resp.Header.Get("Content-Disposition"), format.FileName()),
	}, nil
}

func attachmentName(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return fallback
	}
	return params["filename"]
}
