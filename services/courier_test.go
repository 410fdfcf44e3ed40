package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"avado-backend/models"
)

func sampleOrder() models.Order {
	return models.Order{
		ID:    55,
		Total: 250,
		Items: []models.OrderItem{{ProductID: 1, Quantity: 2, Price: 100}, {ProductID: 2, Quantity: 1, Price: 50}},
		Customer: models.Customer{
			Name: "Rahim", Phone: "01812345678",
			Address: "House 1, Road 2", Thana: "Dhanmondi", District: "Dhaka",
		},
	}
}

func TestCreateOrderSubmitsAndParsesTracking(t *testing.T) {
	var got courierOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/create_order", r.URL.Path)
		require.Equal(t, "k", r.Header.Get("Api-Key"))
		require.Equal(t, "s", r.Header.Get("Secret-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"consignment": map[string]interface{}{
				"consignment_id": 9001,
				"tracking_code":  "TRK-9001",
			},
		})
	}))
	defer srv.Close()

	client := NewCourierClient(srv.URL, "k", "s")
	tracking, err := client.CreateOrder(context.Background(), sampleOrder())
	require.NoError(t, err)
	require.Equal(t, "TRK-9001", tracking)

	require.Equal(t, int64(55), got.Invoice)
	require.Equal(t, 250.0, got.CODAmount)
	require.Equal(t, 2, got.TotalLot)
	require.Equal(t, "House 1, Road 2, Dhanmondi, Dhaka", got.RecipientAddress)
}

func TestCreateOrderUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewCourierClient(srv.URL, "k", "s")
	_, err := client.CreateOrder(context.Background(), sampleOrder())
	require.ErrorIs(t, err, ErrUpstream)
}

func TestCreateOrderFallsBackToConsignmentID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"consignment": map[string]interface{}{"consignment_id": 777},
		})
	}))
	defer srv.Close()

	client := NewCourierClient(srv.URL, "k", "s")
	tracking, err := client.CreateOrder(context.Background(), sampleOrder())
	require.NoError(t, err)
	require.Equal(t, "777", tracking)
}
