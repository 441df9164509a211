package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"milkdesk/internal/config"
	"milkdesk/internal/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

const (
	routeSuppliers        = "/api/suppliers"
	routeSupplier         = "/api/suppliers/{id}"
	routeSupplierReorder  = "/api/suppliers/reorder"
	routeDailyEntries     = "/api/daily-entries"
	routeBulkUpsert       = "/api/daily-entries/bulk-upsert"
	routeUpsert           = "/api/daily-entries/upsert"
	routeDailyEntry       = "/api/daily-entries/{id}"
	routeMonthly          = "/api/summaries/monthly"
	routeMonthlyExport    = "/api/summaries/monthly/export"
	routeMonthlyReceipts  = "/api/summaries/monthly/receipts"
	routeQuarterly        = "/api/summaries/quarterly"
	routeQuarterlyExport  = "/api/summaries/quarterly/export"
	defaultMonthlyPeriod  = "all"
	maxSupplierFieldBytes = 256
)

var (
	ErrUnauthorized   = errors.New("api unauthorized")
	ErrNotFound       = errors.New("api resource not found")
	ErrMissingID      = errors.New("id is required")
	ErrInvalidMonth   = errors.New("month must be between 1 and 12")
	ErrInvalidQuarter = errors.New("quarter must be between 1 and 4")
	ErrInvalidYear    = errors.New("year must be positive")
)

type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error: %s", e.Status)
	}
	return fmt.Sprintf("api error: %s: %s", e.Status, e.Body)
}

type Client struct {
	http    *resty.Client
	logger  *zap.Logger
	metrics *metrics.Recorder
}

func NewClient(cfg config.Config, logger *zap.Logger, recorder *metrics.Recorder) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultAPIBaseURL
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	if token := strings.TrimSpace(cfg.APIToken); token != "" {
		httpClient.SetAuthScheme("Bearer")
		httpClient.SetAuthToken(token)
	}

	return &Client{
		http:    httpClient,
		logger:  logger.Named("api"),
		metrics: recorder,
	}
}

func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

func (c *Client) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var suppliers []Supplier
	if err := c.getJSON(ctx, routeSuppliers, nil, &suppliers); err != nil {
		return nil, fmt.Errorf("fetch suppliers: %w", err)
	}
	return suppliers, nil
}

// CreateSupplier posts a supplier without an id; the server assigns it.
func (c *Client) CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error) {
	if err := validateSupplier(supplier); err != nil {
		return Supplier{}, err
	}
	supplier.ID = 0

	resp, err := c.execute(c.request(ctx).SetBody(supplier), http.MethodPost, routeSuppliers)
	if err != nil {
		return Supplier{}, fmt.Errorf("create supplier: %w", err)
	}

	created := supplier
	if err := decodeJSON(resp, &created); err != nil {
		return Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	return created, nil
}

func (c *Client) UpdateSupplier(ctx context.Context, supplier Supplier) (Supplier, error) {
	if supplier.ID == 0 {
		return Supplier{}, fmt.Errorf("update supplier: %w", ErrMissingID)
	}
	if err := validateSupplier(supplier); err != nil {
		return Supplier{}, err
	}

	req := c.request(ctx).
		SetPathParam("id", strconv.FormatInt(supplier.ID, 10)).
		SetBody(supplier)
	resp, err := c.execute(req, http.MethodPut, routeSupplier)
	if err != nil {
		return Supplier{}, fmt.Errorf("update supplier %d: %w", supplier.ID, err)
	}

	updated := supplier
	if err := decodeJSON(resp, &updated); err != nil {
		return Supplier{}, fmt.Errorf("update supplier %d: %w", supplier.ID, err)
	}
	return updated, nil
}

func (c *Client) DeleteSupplier(ctx context.Context, id int64) error {
	if id == 0 {
		return fmt.Errorf("delete supplier: %w", ErrMissingID)
	}
	req := c.request(ctx).SetPathParam("id", strconv.FormatInt(id, 10))
	if _, err := c.execute(req, http.MethodDelete, routeSupplier); err != nil {
		return fmt.Errorf("delete supplier %d: %w", id, err)
	}
	return nil
}

func (c *Client) ReorderSuppliers(ctx context.Context, order []SupplierOrder) error {
	if len(order) == 0 {
		return nil
	}
	if _, err := c.execute(c.request(ctx).SetBody(order), http.MethodPut, routeSupplierReorder); err != nil {
		return fmt.Errorf("reorder suppliers: %w", err)
	}
	return nil
}

func (c *Client) ListDailyEntries(ctx context.Context, year, month int) ([]DailyEntry, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}

	query := map[string]string{
		"year":  strconv.Itoa(year),
		"month": strconv.Itoa(month),
	}
	var entries []DailyEntry
	if err := c.getJSON(ctx, routeDailyEntries, query, &entries); err != nil {
		return nil, fmt.Errorf("fetch daily entries: %w", err)
	}
	return entries, nil
}

func (c *Client) BulkUpsertEntries(ctx context.Context, upserts []EntryUpsert) error {
	if len(upserts) == 0 {
		return nil
	}
	if _, err := c.execute(c.request(ctx).SetBody(upserts), http.MethodPut, routeBulkUpsert); err != nil {
		return fmt.Errorf("bulk upsert entries: %w", err)
	}
	return nil
}

func (c *Client) UpsertEntry(ctx context.Context, upsert QualityUpsert) error {
	if upsert.SupplierID == 0 {
		return fmt.Errorf("upsert entry: supplier %w", ErrMissingID)
	}
	if _, err := c.execute(c.request(ctx).SetBody(upsert), http.MethodPut, routeUpsert); err != nil {
		return fmt.Errorf("upsert entry %s: %w", upsert.Date, err)
	}
	return nil
}

func (c *Client) DeleteEntry(ctx context.Context, id int64) error {
	if id == 0 {
		return fmt.Errorf("delete entry: %w", ErrMissingID)
	}
	req := c.request(ctx).SetPathParam("id", strconv.FormatInt(id, 10))
	if _, err := c.execute(req, http.MethodDelete, routeDailyEntry); err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return nil
}

func (c *Client) MonthlySummaries(ctx context.Context, query MonthlyQuery) ([]MonthlySummary, error) {
	params, err := monthlyParams(query)
	if err != nil {
		return nil, err
	}
	var rows []MonthlySummary
	if err := c.getJSON(ctx, routeMonthly, params, &rows); err != nil {
		return nil, fmt.Errorf("fetch monthly summaries: %w", err)
	}
	return rows, nil
}

func (c *Client) ExportMonthly(ctx context.Context, query MonthlyQuery) ([]byte, error) {
	params, err := monthlyParams(query)
	if err != nil {
		return nil, err
	}
	return c.getBlob(ctx, routeMonthlyExport, params)
}

func (c *Client) MonthlyReceipts(ctx context.Context, query MonthlyQuery) ([]byte, error) {
	params, err := monthlyParams(query)
	if err != nil {
		return nil, err
	}
	return c.getBlob(ctx, routeMonthlyReceipts, params)
}

func (c *Client) QuarterlySummaries(ctx context.Context, query QuarterlyQuery) ([]QuarterlySummary, error) {
	params, err := quarterlyParams(query)
	if err != nil {
		return nil, err
	}
	var rows []QuarterlySummary
	if err := c.getJSON(ctx, routeQuarterly, params, &rows); err != nil {
		return nil, fmt.Errorf("fetch quarterly summaries: %w", err)
	}
	return rows, nil
}

func (c *Client) ExportQuarterly(ctx context.Context, query QuarterlyQuery) ([]byte, error) {
	params, err := quarterlyParams(query)
	if err != nil {
		return nil, err
	}
	return c.getBlob(ctx, routeQuarterlyExport, params)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, uuid.NewString())
}

func (c *Client) getJSON(ctx context.Context, route string, query map[string]string, result any) error {
	req := c.request(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := c.execute(req, http.MethodGet, route)
	if err != nil {
		return err
	}
	return decodeJSON(resp, result)
}

func (c *Client) getBlob(ctx context.Context, route string, query map[string]string) ([]byte, error) {
	req := c.request(ctx).SetHeader("Accept", "application/octet-stream")
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := c.execute(req, http.MethodGet, route)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", route, err)
	}
	return resp.Body(), nil
}

func (c *Client) execute(req *resty.Request, method, route string) (*resty.Response, error) {
	start := time.Now()
	resp, err := req.Execute(method, route)
	elapsed := time.Since(start)

	status := 0
	if err == nil && resp != nil {
		status = resp.StatusCode()
	}
	c.metrics.ObserveRequest(method, route, status, elapsed)
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("route", route),
		zap.Int("status", status),
		zap.String("request_id", req.Header.Get(requestIDHeader)),
		zap.Duration("elapsed", elapsed),
	)

	if err != nil {
		return nil, fmt.Errorf("api request: %w", err)
	}
	if resp.IsError() {
		return nil, apiErrorFromResponse(resp)
	}
	return resp, nil
}

func decodeJSON(resp *resty.Response, result any) error {
	body := resp.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiErrorFromResponse(resp *resty.Response) error {
	body := strings.TrimSpace(resp.String())
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       body,
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Error())
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Error())
	default:
		return apiErr
	}
}

func validateYearMonth(year, month int) error {
	if year <= 0 {
		return ErrInvalidYear
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func validateSupplier(s Supplier) error {
	if strings.TrimSpace(s.FirstName) == "" && strings.TrimSpace(s.LastName) == "" {
		return errors.New("supplier name is required")
	}
	for name, value := range map[string]string{"first name": s.FirstName, "last name": s.LastName, "city": s.City} {
		if len(value) > maxSupplierFieldBytes {
			return fmt.Errorf("supplier %s is too long", name)
		}
	}
	return nil
}

func monthlyParams(query MonthlyQuery) (map[string]string, error) {
	if err := validateYearMonth(query.Year, query.Month); err != nil {
		return nil, err
	}
	period := strings.TrimSpace(query.Period)
	if period == "" {
		period = defaultMonthlyPeriod
	}
	params := map[string]string{
		"year":   strconv.Itoa(query.Year),
		"month":  strconv.Itoa(query.Month),
		"period": period,
	}
	if city := strings.TrimSpace(query.City); city != "" {
		params["city"] = city
	}
	return params, nil
}

func quarterlyParams(query QuarterlyQuery) (map[string]string, error) {
	if query.Year <= 0 {
		return nil, ErrInvalidYear
	}
	if query.Quarter < 1 || query.Quarter > 4 {
		return nil, ErrInvalidQuarter
	}
	return map[string]string{
		"year":    strconv.Itoa(query.Year),
		"quarter": strconv.Itoa(query.Quarter),
	}, nil
}
