package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/token"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	maxErrorBody   = 64 << 10
	maxDetailRunes = 200
)

// Request is one API call. The body is held as bytes so the call can be
// replayed after a token refresh.
type Request struct {
	Method      string
	Path        string // relative to the base URL, e.g. "/transactions/"
	Query       url.Values
	Body        []byte
	ContentType string
	Accept      string

	// BearerToken is sent instead of the persisted access token when set.
	BearerToken string
	// Anonymous requests carry no Authorization header.
	Anonymous bool
	// NoRecover skips the refresh-and-replay step on 401.
	NoRecover bool
}

func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path, Accept: contentTypeJSON}
}

func NewJSONRequest(method, path string, body any) (*Request, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
	}
	return &Request{
		Method:      method,
		Path:        path,
		Body:        b,
		ContentType: contentTypeJSON,
		Accept:      contentTypeJSON,
	}, nil
}

func NewFormRequest(method, path string, form url.Values) *Request {
	return &Request{
		Method:      method,
		Path:        path,
		Body:        []byte(form.Encode()),
		ContentType: contentTypeForm,
		Accept:      contentTypeJSON,
	}
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request, bearer string) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.Method, req.Path, err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if req.Accept != "" {
		httpReq.Header.Set("Accept", req.Accept)
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", token.BearerHeader(bearer))
	}
	return httpReq, nil
}

// readAPIError turns a non-2xx response into an *APIError and closes the
// body. The server reports problems as {"detail": ...} where detail is a
// string or a list of field errors.
func readAPIError(req *Request, resp *http.Response) *ferrors.APIError {
	defer resp.Body.Close()

	apiErr := &ferrors.APIError{
		StatusCode: resp.StatusCode,
		Method:     req.Method,
		Path:       req.Path,
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(b)) == 0 {
		return apiErr
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(b, &envelope) == nil && len(envelope.Detail) > 0 {
		var detail string
		if json.Unmarshal(envelope.Detail, &detail) == nil {
			apiErr.Detail = detail
			return apiErr
		}
		var compact bytes.Buffer
		if json.Compact(&compact, envelope.Detail) == nil {
			apiErr.Detail = compact.String()
			return apiErr
		}
	}

	text := strings.TrimSpace(string(b))
	if runes := []rune(text); len(runes) > maxDetailRunes {
		text = string(runes[:maxDetailRunes])
	}
	apiErr.Detail = text
	return apiErr
}

func (c *Client) doJSON(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.Path, err)
	}
	return nil
}
