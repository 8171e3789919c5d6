// Package airtable provides the remote table gateway: typed CRUD against
// the named tables of a hosted Airtable base, over its record API.
// It is the only place that knows the wire format; everything above works
// on normalized domain.Records.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("airtable")

// Client wraps HTTP calls to the Airtable record API.
//
// Every mutation takes effect remotely as soon as the call returns; a
// sequence of calls against several tables is not atomic and is never
// rolled back here.
type Client struct {
	httpClient *http.Client
	baseURL    string
	baseID     string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	logger     *zap.Logger
}

// NewClient creates an Airtable client for one base.
func NewClient(httpClient *http.Client, baseURL, baseID, apiKey string, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		baseID:     baseID,
		apiKey:     apiKey,
		cb:         cb,
		bulkhead:   bulkhead,
		logger:     logger,
	}
}

// wireRecord is the record envelope used by the Airtable API.
type wireRecord struct {
	ID      string         `json:"id"`
	Fields  map[string]any `json:"fields"`
	Deleted bool           `json:"deleted,omitempty"`
}

// recordPage is one page of a table listing.
type recordPage struct {
	Records []wireRecord `json:"records"`
	Offset  string       `json:"offset,omitempty"`
}

// normalize merges the record id into its field map, the uniform shape the
// rest of the application works with.
func normalize(w wireRecord) domain.Record {
	r := make(domain.Record, len(w.Fields)+1)
	for k, v := range w.Fields {
		r[k] = v
	}
	if w.ID != "" {
		r["id"] = w.ID
	}
	return r
}

// tableURL builds the endpoint for a table, escaping names with spaces and
// accents ("Tipos de Cliente", "Preços").
func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
}

// do executes one authenticated request through the bulkhead and circuit
// breaker. No retry: a failure is terminal for the caller's interaction.
func (c *Client) do(ctx context.Context, method, rawURL string, payload map[string]any) ([]byte, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	result, err := c.cb.Execute(func() (any, error) {
		var body io.Reader
		if payload != nil {
			jsonBody, err := json.Marshal(payload)
			if err != nil {
				return nil, err
			}
			body = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("airtable: request failed",
				zap.String("method", method),
				zap.String("url", rawURL),
				zap.Error(err),
			)
			return nil, err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("airtable: non-2xx response",
				zap.String("method", method),
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(respBody)),
			)
			return nil, fmt.Errorf("airtable returned status %d: %s", resp.StatusCode, string(respBody))
		}

		c.logger.Debug("airtable: request OK",
			zap.String("method", method),
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
		return respBody, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "airtable"}
		}
		return nil, err
	}
	return result.([]byte), nil
}

// ReadAll returns every record of a table, following offset pagination
// until the listing is exhausted.
func (c *Client) ReadAll(ctx context.Context, table string) ([]domain.Record, error) {
	return c.readAll(ctx, table, "")
}

// ReadAllFiltered returns the records whose fields equal every entry of
// where, evaluated remotely.
func (c *Client) ReadAllFiltered(ctx context.Context, table string, where map[string]any) ([]domain.Record, error) {
	return c.readAll(ctx, table, buildFormula(where))
}

func (c *Client) readAll(ctx context.Context, table, formula string) ([]domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Airtable.ReadAll")
	defer span.End()
	span.SetAttributes(attribute.String("table", table))

	var records []domain.Record
	offset := ""
	for {
		query := url.Values{}
		if formula != "" {
			query.Set("filterByFormula", formula)
		}
		if offset != "" {
			query.Set("offset", offset)
		}
		rawURL := c.tableURL(table)
		if encoded := query.Encode(); encoded != "" {
			rawURL += "?" + encoded
		}

		body, err := c.do(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, c.wrap(table, err)
		}

		var page recordPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, c.wrap(table, fmt.Errorf("decode listing: %w", err))
		}
		for _, w := range page.Records {
			records = append(records, normalize(w))
		}

		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// FindFirst returns the first record matching where, or nil when nothing
// matches.
func (c *Client) FindFirst(ctx context.Context, table string, where map[string]any) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Airtable.FindFirst")
	defer span.End()
	span.SetAttributes(attribute.String("table", table))

	query := url.Values{}
	query.Set("maxRecords", "1")
	if formula := buildFormula(where); formula != "" {
		query.Set("filterByFormula", formula)
	}

	body, err := c.do(ctx, http.MethodGet, c.tableURL(table)+"?"+query.Encode(), nil)
	if err != nil {
		return nil, c.wrap(table, err)
	}

	var page recordPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, c.wrap(table, fmt.Errorf("decode listing: %w", err))
	}
	if len(page.Records) == 0 {
		return nil, nil
	}
	return normalize(page.Records[0]), nil
}

// Create inserts a record and returns it with its new id merged in.
func (c *Client) Create(ctx context.Context, table string, fields map[string]any) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Airtable.Create")
	defer span.End()
	span.SetAttributes(attribute.String("table", table))

	body, err := c.do(ctx, http.MethodPost, c.tableURL(table), map[string]any{"fields": fields})
	if err != nil {
		return nil, c.wrap(table, err)
	}

	var w wireRecord
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, c.wrap(table, fmt.Errorf("decode record: %w", err))
	}

	c.logger.Info("airtable: record created",
		zap.String("table", table),
		zap.String("record_id", w.ID),
	)
	return normalize(w), nil
}

// Update patches the given fields of a record and returns the result.
func (c *Client) Update(ctx context.Context, table, id string, fields map[string]any) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Airtable.Update")
	defer span.End()
	span.SetAttributes(attribute.String("table", table), attribute.String("record.id", id))

	body, err := c.do(ctx, http.MethodPatch, c.tableURL(table)+"/"+id, map[string]any{"fields": fields})
	if err != nil {
		return nil, c.wrap(table, err)
	}

	var w wireRecord
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, c.wrap(table, fmt.Errorf("decode record: %w", err))
	}
	return normalize(w), nil
}

// Delete removes a record. Exposed for contract completeness; only the
// administration endpoints use it.
func (c *Client) Delete(ctx context.Context, table, id string) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Airtable.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("table", table), attribute.String("record.id", id))

	body, err := c.do(ctx, http.MethodDelete, c.tableURL(table)+"/"+id, nil)
	if err != nil {
		return nil, c.wrap(table, err)
	}

	var w wireRecord
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, c.wrap(table, fmt.Errorf("decode record: %w", err))
	}

	c.logger.Info("airtable: record deleted",
		zap.String("table", table),
		zap.String("record_id", id),
	)
	return normalize(w), nil
}

// wrap tags gateway failures so call sites can surface a uniform
// "remote service unavailable/rejected" condition.
func (c *Client) wrap(table string, err error) error {
	var circuitOpen *domain.ErrCircuitOpen
	if errors.As(err, &circuitOpen) {
		return err
	}
	return &domain.ErrExternalService{Service: "airtable/" + table, Err: err}
}
