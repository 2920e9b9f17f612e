package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shipping"
)

// maxResponseSize is the maximum allowed response size from the carrier API (1MB)
const maxResponseSize = 1 * 1024 * 1024

// ErrCarrierUnavailable indicates the carrier API could not be reached.
// It is transient: orders failing with it are retried in the background.
var ErrCarrierUnavailable = errors.New("carrier: service unavailable")

// Config holds the carrier selection API settings
type Config struct {
	Endpoint       string
	APIKey         string
	RequestTimeout time.Duration
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("carrier: endpoint is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("carrier: request timeout must be positive")
	}
	return nil
}

// HTTPSelector implements CarrierSelector against the carrier selection API.
// The API picks a carrier and service level for a shipment and books the
// label in the same call.
type HTTPSelector struct {
	config     Config
	httpClient *http.Client
}

var _ shipping.CarrierSelector = (*HTTPSelector)(nil)

// NewHTTPSelector creates a new HTTP-backed carrier selector
func NewHTTPSelector(config Config) (*HTTPSelector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &HTTPSelector{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
	}, nil
}

type selectionRequest struct {
	OrderID        string          `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	CountryCode    string          `json:"country_code"`
	PostalCode     string          `json:"postal_code"`
	City           string          `json:"city"`
	WeightKg       decimal.Decimal `json:"weight_kg"`
	DeclaredValue  decimal.Decimal `json:"declared_value"`
	Currency       string          `json:"currency"`
	SenderLabel    string          `json:"sender_label,omitempty"`
	SenderCountry  string          `json:"sender_country,omitempty"`
	SenderPostcode string          `json:"sender_postcode,omitempty"`
}

type selectionResponse struct {
	Carrier        string `json:"carrier"`
	ServiceLevel   string `json:"service_level"`
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
	LabelURL       string `json:"label_url"`
	Error          string `json:"error"`
}

// Select asks the carrier API for a carrier selection. A response without a
// carrier (204, 404 or an empty carrier field) means no carrier serves the
// shipment and is reported as ErrNoCarrierSelected.
func (s *HTTPSelector) Select(ctx context.Context, req shipping.ShipmentRequest) (*shipping.CarrierSelection, error) {
	payload := selectionRequest{
		OrderID:        req.OrderID.String(),
		OrderNumber:    req.OrderNumber,
		CountryCode:    req.CountryCode,
		PostalCode:     req.PostalCode,
		City:           req.City,
		WeightKg:       req.TotalWeightKg,
		DeclaredValue:  req.DeclaredValue,
		Currency:       req.Currency,
		SenderLabel:    req.SenderLabel,
		SenderCountry:  req.SenderCountry,
		SenderPostcode: req.SenderPostcode,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("carrier: failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint+"/selections", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("carrier: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("carrier: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
		return nil, shipping.ErrNoCarrierSelected
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", ErrCarrierUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("carrier: request rejected: HTTP %d: %s", resp.StatusCode, respBody)
	}

	var selection selectionResponse
	if err := json.Unmarshal(respBody, &selection); err != nil {
		return nil, fmt.Errorf("carrier: failed to decode response: %w", err)
	}
	if selection.Carrier == "" {
		return nil, shipping.ErrNoCarrierSelected
	}

	return &shipping.CarrierSelection{
		CarrierName:    selection.Carrier,
		ServiceLevel:   selection.ServiceLevel,
		TrackingNumber: selection.TrackingNumber,
		TrackingURL:    selection.TrackingURL,
		LabelURL:       selection.LabelURL,
	}, nil
}
