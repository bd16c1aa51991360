package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gitlab.com/dirk.krummacker/records-service/internal/model"
)

// recordsPath is the collection resource of the records service.
const recordsPath = "/v1/records"

// HTTPClient is a Store that talks to the records service over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout *time.Duration
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		h.http = c
	}
}

// WithTimeout limits the duration of every request. Zero means no limit beyond the context.
// It applies to the client of WithHTTPClient regardless of the order of the options, without
// changing that client.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		h.timeout = &d
	}
}

// NewHTTPClient returns a client for the service at baseURL, e.g. "http://localhost:8080".
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.timeout != nil {
		c := *h.http
		c.Timeout = *h.timeout
		h.http = &c
	}
	return h
}

// Verify at compile time that HTTPClient implements Store.
var _ Store = (*HTTPClient)(nil)

// ListRecords returns all records in insertion order.
func (h *HTTPClient) ListRecords(ctx context.Context) ([]model.Record, error) {
	var records []model.Record
	if err := h.do(ctx, http.MethodGet, recordsPath, nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}

// GetRecord returns the record with the given id.
func (h *HTTPClient) GetRecord(ctx context.Context, id int64) (model.Record, error) {
	var record model.Record
	err := h.do(ctx, http.MethodGet, recordPath(id), nil, &record)
	return record, err
}

// CreateRecord stores a new record and returns it with its assigned id.
func (h *HTTPClient) CreateRecord(ctx context.Context, fields model.Fields) (model.Record, error) {
	var record model.Record
	err := h.do(ctx, http.MethodPost, recordsPath, fields, &record)
	return record, err
}

// UpdateRecord replaces all fields of an existing record and returns the stored version.
func (h *HTTPClient) UpdateRecord(ctx context.Context, id int64, fields model.Fields) (model.Record, error) {
	var record model.Record
	err := h.do(ctx, http.MethodPut, recordPath(id), fields, &record)
	return record, err
}

func recordPath(id int64) string {
	return recordsPath + "/" + strconv.FormatInt(id, 10)
}

// errorBody is the JSON the service sends along with a failure status.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// do sends a request with an optional JSON body and decodes a successful JSON answer into
// out.
func (h *HTTPClient) do(ctx context.Context, method string, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encoding request: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := h.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrStoreUnavailable, method, path, err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: reading response: %w", ErrStoreUnavailable, method, path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(resBody, &eb)
		return &OperationError{
			Method:  method,
			Path:    path,
			Status:  res.StatusCode,
			Message: eb.Message,
			Code:    eb.Code,
		}
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		return fmt.Errorf("%w: %s %s: decoding response: %w", ErrStoreUnavailable, method, path, err)
	}
	return nil
}
