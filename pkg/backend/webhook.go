package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formdef/pkg/form"
	"github.com/goliatone/go-formdef/pkg/validate"
)

// Webhook forwards accepted records to an HTTP endpoint as a JSON body. The
// "url" config key is required; "method" defaults to POST. A 422 response
// carrying a {"errors": {field: [message]}} body is translated into a
// field-level failure so the caller reports it alongside local validation
// errors; any other non-2xx status is a generic failure.
type Webhook struct {
	client *http.Client
}

// NewWebhook constructs a webhook backend. A nil client falls back to
// http.DefaultClient.
func NewWebhook(client *http.Client) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Webhook{client: client}
}

// Submit delivers the record.
func (w *Webhook) Submit(ctx context.Context, ref form.BackendRef, record validate.Record) (Result, error) {
	url := ConfigString(ref, "url")
	if url == "" {
		return Result{}, fmt.Errorf("backend: webhook requires a url config entry")
	}
	method := strings.ToUpper(strings.TrimSpace(ConfigString(ref, "method")))
	if method == "" {
		method = http.MethodPost
	}

	body, err := json.Marshal(record)
	if err != nil {
		return Result{}, fmt.Errorf("backend: webhook encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("backend: webhook build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if header := ConfigString(ref, "header"); header != "" {
		if name, value, ok := strings.Cut(header, ":"); ok {
			req.Header.Set(strings.TrimSpace(name), strings.TrimSpace(value))
		}
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("backend: webhook deliver: %w", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		result := Result{Payload: map[string]any{"status": resp.StatusCode}}
		var decoded map[string]any
		if len(payload) > 0 && json.Unmarshal(payload, &decoded) == nil {
			result.Payload["body"] = decoded
		}
		return result, nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		if fieldErrors := decodeFieldErrors(payload); len(fieldErrors) > 0 {
			return Result{FieldErrors: fieldErrors}, nil
		}
		return Result{}, fmt.Errorf("backend: webhook rejected submission (status %d)", resp.StatusCode)
	default:
		return Result{}, fmt.Errorf("backend: webhook returned status %d", resp.StatusCode)
	}
}

func decodeFieldErrors(payload []byte) map[string][]string {
	if len(payload) == 0 {
		return nil
	}
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil
	}
	return body.Errors
}
