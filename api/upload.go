package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
)

const uploadExcelPath = "/upload/excel"

type UploadService struct {
	client *Client
}

// ImportResult reports how many transactions a spreadsheet produced.
type ImportResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Excel uploads a spreadsheet for import. The whole file is buffered so
// the request can be replayed after a token refresh.
func (s *UploadService) Excel(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" {
		return nil, fmt.Errorf("%w: file must be Excel format (.xlsx or .xls)", ferrors.ErrInvalidArgument)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req := &Request{
		Method:      http.MethodPost,
		Path:        uploadExcelPath,
		Body:        buf.Bytes(),
		ContentType: mw.FormDataContentType(),
		Accept:      contentTypeJSON,
	}

	var out ImportResult
	if err := s.client.doJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
