package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/shipping"
)

func newTestSelector(t *testing.T, handler http.HandlerFunc) (*HTTPSelector, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	selector, err := NewHTTPSelector(Config{
		Endpoint:       server.URL,
		APIKey:         "test-key",
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return selector, server
}

func shipmentRequest() shipping.ShipmentRequest {
	return shipping.ShipmentRequest{
		OrderID:       uuid.New(),
		OrderNumber:   "CMD-1",
		CountryCode:   "FR",
		PostalCode:    "75001",
		City:          "Paris",
		TotalWeightKg: decimal.NewFromFloat(1.5),
		DeclaredValue: decimal.NewFromInt(40),
		Currency:      "EUR",
	}
}

func TestHTTPSelector_Select(t *testing.T) {
	t.Run("returns the selection on success", func(t *testing.T) {
		shipment := shipmentRequest()

		selector, _ := newTestSelector(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/selections", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req selectionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, shipment.OrderID.String(), req.OrderID)
			assert.Equal(t, "CMD-1", req.OrderNumber)
			assert.Equal(t, "FR", req.CountryCode)

			json.NewEncoder(w).Encode(selectionResponse{
				Carrier:        "colissimo",
				ServiceLevel:   "home",
				TrackingNumber: "TRK-9",
				TrackingURL:    "https://track.example/TRK-9",
				LabelURL:       "https://labels.example/TRK-9.pdf",
			})
		})

		selection, err := selector.Select(context.Background(), shipment)
		require.NoError(t, err)
		assert.Equal(t, "colissimo", selection.CarrierName)
		assert.Equal(t, "home", selection.ServiceLevel)
		assert.Equal(t, "TRK-9", selection.TrackingNumber)
	})

	t.Run("no content means no carrier serves the shipment", func(t *testing.T) {
		selector, _ := newTestSelector(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		_, err := selector.Select(context.Background(), shipmentRequest())
		assert.ErrorIs(t, err, shipping.ErrNoCarrierSelected)
	})

	t.Run("empty carrier field means no carrier", func(t *testing.T) {
		selector, _ := newTestSelector(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(selectionResponse{Error: "no rates"})
		})

		_, err := selector.Select(context.Background(), shipmentRequest())
		assert.ErrorIs(t, err, shipping.ErrNoCarrierSelected)
	})

	t.Run("server errors are transient", func(t *testing.T) {
		selector, _ := newTestSelector(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := selector.Select(context.Background(), shipmentRequest())
		assert.ErrorIs(t, err, ErrCarrierUnavailable)
	})

	t.Run("unreachable endpoint is transient", func(t *testing.T) {
		selector, err := NewHTTPSelector(Config{
			Endpoint:       "http://127.0.0.1:1",
			RequestTimeout: 100 * time.Millisecond,
		})
		require.NoError(t, err)

		_, err = selector.Select(context.Background(), shipmentRequest())
		assert.ErrorIs(t, err, ErrCarrierUnavailable)
	})

	t.Run("bad request is not retried as transient", func(t *testing.T) {
		selector, _ := newTestSelector(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		_, err := selector.Select(context.Background(), shipmentRequest())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCarrierUnavailable)
		assert.NotErrorIs(t, err, shipping.ErrNoCarrierSelected)
	})
}

func TestConfig_Validate(t *testing.T) {
	err := (&Config{RequestTimeout: time.Second}).Validate()
	assert.Error(t, err)

	err = (&Config{Endpoint: "http://carrier.local"}).Validate()
	assert.Error(t, err)

	err = (&Config{Endpoint: "http://carrier.local", RequestTimeout: time.Second}).Validate()
	assert.NoError(t, err)
}
