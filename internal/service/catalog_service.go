package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"exchange-order-service/internal/model"
)

// CatalogService queries the external product catalog for per-product
// exchange eligibility policies.
type CatalogService struct {
	catalogURL string
	client     *http.Client
}

func NewCatalogService(catalogURL string) *CatalogService {
	return &CatalogService{
		catalogURL: catalogURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// ExchangePolicy fetches {exchangeType, windowDays} for a product. A
// product the catalog does not know is reported as non-exchangeable.
func (c *CatalogService) ExchangePolicy(ctx context.Context, productID string) (model.ExchangePolicy, error) {
	url := fmt.Sprintf("%s/products/%s/exchange-policy", c.catalogURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.ExchangePolicy{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return model.ExchangePolicy{}, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.ExchangePolicy{ExchangeType: model.ExchangeTypeNone}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return model.ExchangePolicy{}, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var policy model.ExchangePolicy
	if err := json.NewDecoder(resp.Body).Decode(&policy); err != nil {
		return model.ExchangePolicy{}, err
	}
	return policy, nil
}

// AddressBookService queries the customer service for the user's default
// saved address.
type AddressBookService struct {
	customersURL string
	client       *http.Client
}

func NewAddressBookService(customersURL string) *AddressBookService {
	return &AddressBookService{
		customersURL: customersURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (a *AddressBookService) DefaultAddress(ctx context.Context, userID string) (model.Address, error) {
	url := fmt.Sprintf("%s/customers/%s/addresses/default", a.customersURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Address{}, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return model.Address{}, fmt.Errorf("customers request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Address{}, errors.New("no default address")
	}

	var addr model.Address
	if err := json.NewDecoder(resp.Body).Decode(&addr); err != nil {
		return model.Address{}, err
	}
	return addr, nil
}
