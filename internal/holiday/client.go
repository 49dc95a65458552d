package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Holiday struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date"`
	Types       []string `json:"type,omitempty"`
}

type ClientConfig struct {
	BaseURL string
	APIKey  string
	Country string
	Timeout time.Duration
}

// CalendarificClient fetches public holidays from the Calendarific REST API.
type CalendarificClient struct {
	baseURL    string
	apiKey     string
	country    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewCalendarificClient(cfg ClientConfig, logger *slog.Logger) *CalendarificClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	country := cfg.Country
	if country == "" {
		country = "IN"
	}
	return &CalendarificClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		country:    country,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type calendarificResponse struct {
	Meta struct {
		Code        int    `json:"code"`
		ErrorType   string `json:"error_type"`
		ErrorDetail string `json:"error_detail"`
	} `json:"meta"`
	Response struct {
		Holidays []struct {
			Name        string   `json:"name"`
			Description string   `json:"description"`
			Type        []string `json:"type"`
			Date        struct {
				ISO string `json:"iso"`
			} `json:"date"`
		} `json:"holidays"`
	} `json:"response"`
}

func (c *CalendarificClient) HolidaysForYear(ctx context.Context, year int) ([]Holiday, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("country", c.country)
	q.Set("year", strconv.Itoa(year))
	endpoint := c.baseURL + "/holidays?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendarific returned status %d", resp.StatusCode)
	}

	var body calendarificResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if body.Meta.Code != 0 && body.Meta.Code != http.StatusOK {
		return nil, fmt.Errorf("calendarific error %d: %s", body.Meta.Code, body.Meta.ErrorDetail)
	}

	holidays := make([]Holiday, 0, len(body.Response.Holidays))
	for _, h := range body.Response.Holidays {
		// iso may carry a time part for observances, e.g. 2024-03-20T08:36:19+05:30
		iso := h.Date.ISO
		if len(iso) < 10 {
			continue
		}
		holidays = append(holidays, Holiday{
			Name:        h.Name,
			Description: h.Description,
			Date:        iso[:10],
			Types:       h.Type,
		})
	}

	c.logger.Debug("fetched public holidays", "year", year, "country", c.country, "count", len(holidays))
	return holidays, nil
}
