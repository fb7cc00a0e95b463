package transports

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/rzbill/cuidd/internal/ledger"
	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
)

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return strconv.Itoa(e.Code) + " " + http.StatusText(e.Code) + ": " + e.Message
}

// HTTPTransport implements Transport over the JSON HTTP API.
type HTTPTransport struct {
	baseURL func() string
	client  *http.Client
}

// NewHTTPTransport constructs an HTTPTransport. A nil client uses
// http.DefaultClient.
func NewHTTPTransport(baseURL func() string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{baseURL: baseURL, client: client}
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	u := t.baseURL() + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decode response")
}

// Mint mints identifiers via POST /v1/ids/mint.
func (t *HTTPTransport) Mint(ctx context.Context, req identifiersvc.MintRequest) ([]ledger.Record, error) {
	var out struct {
		IDs []ledger.Record `json:"ids"`
	}
	if err := t.do(ctx, http.MethodPost, "/v1/ids/mint", nil, req, &out); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

// Inspect calls GET /v1/ids/inspect.
func (t *HTTPTransport) Inspect(ctx context.Context, id string) (identifiersvc.Inspection, error) {
	var out identifiersvc.Inspection
	err := t.do(ctx, http.MethodGet, "/v1/ids/inspect", url.Values{"id": {id}}, nil, &out)
	return out, err
}

// List calls GET /v1/ids/list.
func (t *HTTPTransport) List(ctx context.Context, req identifiersvc.ListRequest) (identifiersvc.ListResult, error) {
	q := url.Values{}
	if req.Kind != "" {
		q.Set("kind", req.Kind)
	}
	if req.After != "" {
		q.Set("after", req.After)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Reverse {
		q.Set("reverse", "true")
	}
	if req.Filter != "" {
		q.Set("filter", req.Filter)
	}
	var out identifiersvc.ListResult
	err := t.do(ctx, http.MethodGet, "/v1/ids/list", q, nil, &out)
	return out, err
}

// Revoke calls DELETE /v1/ids/revoke.
func (t *HTTPTransport) Revoke(ctx context.Context, id string) error {
	return t.do(ctx, http.MethodDelete, "/v1/ids/revoke", url.Values{"id": {id}}, nil, nil)
}

// Kinds calls GET /v1/kinds.
func (t *HTTPTransport) Kinds(ctx context.Context) ([]ledger.KindMeta, error) {
	var out struct {
		Kinds []ledger.KindMeta `json:"kinds"`
	}
	if err := t.do(ctx, http.MethodGet, "/v1/kinds", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Kinds, nil
}

// Events calls GET /v1/events.
func (t *HTTPTransport) Events(ctx context.Context, req identifiersvc.EventsRequest) (identifiersvc.EventsResult, error) {
	q := url.Values{}
	if req.After > 0 {
		q.Set("after", strconv.FormatUint(req.After, 10))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Reverse {
		q.Set("reverse", "true")
	}
	if req.WaitMs > 0 {
		q.Set("wait_ms", strconv.Itoa(req.WaitMs))
	}
	var out identifiersvc.EventsResult
	err := t.do(ctx, http.MethodGet, "/v1/events", q, nil, &out)
	return out, err
}
