// Package services holds clients for outbound HTTP collaborators: the
// courier API and the admin push endpoint. Neither touches the database.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"avado-backend/models"
)

// ErrUpstream marks a failed call to an external service. Local state
// already committed before the call is never rolled back because of it.
var ErrUpstream = errors.New("upstream service error")

// CourierClient submits orders to the Packzy-compatible courier API.
type CourierClient struct {
	BaseURL string
	APIKey  string
	Secret  string
	HTTP    *http.Client
}

func NewCourierClient(baseURL, apiKey, secret string) *CourierClient {
	return &CourierClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Secret:  secret,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type courierOrderRequest struct {
	Invoice          int64   `json:"invoice"`
	RecipientName    string  `json:"recipient_name"`
	RecipientPhone   string  `json:"recipient_phone"`
	RecipientAddress string  `json:"recipient_address"`
	CODAmount        float64 `json:"cod_amount"`
	Note             string  `json:"note"`
	ItemDescription  string  `json:"item_description"`
	TotalLot         int     `json:"total_lot"`
	DeliveryType     int     `json:"delivery_type"`
}

type courierOrderResponse struct {
	Consignment struct {
		ConsignmentID int64  `json:"consignment_id"`
		TrackingCode  string `json:"tracking_code"`
	} `json:"consignment"`
	Message string `json:"message"`
}

// CreateOrder submits one order for delivery and returns the courier's
// tracking code.
func (c *CourierClient) CreateOrder(ctx context.Context, order models.Order) (string, error) {
	payload := courierOrderRequest{
		Invoice:          order.ID,
		RecipientName:    order.Customer.Name,
		RecipientPhone:   order.Customer.Phone,
		RecipientAddress: fullAddress(order.Customer),
		CODAmount:        order.Total,
		ItemDescription:  "Order Items",
		TotalLot:         len(order.Items),
		DeliveryType:     0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/create_order", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Api-Key", c.APIKey)
	req.Header.Set("Secret-Key", c.Secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: courier returned %d", ErrUpstream, resp.StatusCode)
	}

	var out courierOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	tracking := out.Consignment.TrackingCode
	if tracking == "" && out.Consignment.ConsignmentID != 0 {
		tracking = fmt.Sprintf("%d", out.Consignment.ConsignmentID)
	}
	if tracking == "" {
		return "", fmt.Errorf("%w: no tracking code in response", ErrUpstream)
	}
	return tracking, nil
}

func fullAddress(c models.Customer) string {
	parts := []string{c.Address}
	for _, p := range []string{c.Thana, c.Upazila, c.District} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
