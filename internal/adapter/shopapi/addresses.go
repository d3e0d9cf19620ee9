package shopapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/polkiloo/storefront/internal/domain/model"
)

type placeDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// AddressClient reads the public administrative-division lookups.
type AddressClient struct {
	base
	httpClient *http.Client
}

// NewAddressClient creates the lookup client.
func NewAddressClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*AddressClient, error) {
	b, err := newBase(baseURL, logger)
	if err != nil {
		return nil, err
	}
	return &AddressClient{base: b, httpClient: httpClient}, nil
}

func (c *AddressClient) places(ctx context.Context, segments ...string) ([]placeDTO, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil, nil, segments...)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	var data []placeDTO
	if err := c.decode(resp, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Provinces lists every province.
func (c *AddressClient) Provinces(ctx context.Context) ([]model.Province, error) {
	data, err := c.places(ctx, "addresses", "provinces")
	if err != nil {
		return nil, err
	}
	out := make([]model.Province, 0, len(data))
	for _, p := range data {
		out = append(out, model.Province{Code: p.Code, Name: p.Name})
	}
	return out, nil
}

// Districts lists the districts of a province.
func (c *AddressClient) Districts(ctx context.Context, provinceCode string) ([]model.District, error) {
	data, err := c.places(ctx, "addresses", "provinces", provinceCode, "districts")
	if err != nil {
		return nil, err
	}
	out := make([]model.District, 0, len(data))
	for _, d := range data {
		out = append(out, model.District{Code: d.Code, Name: d.Name, ProvinceCode: provinceCode})
	}
	return out, nil
}

// Wards lists the wards of a district.
func (c *AddressClient) Wards(ctx context.Context, districtCode string) ([]model.Ward, error) {
	data, err := c.places(ctx, "addresses", "districts", districtCode, "wards")
	if err != nil {
		return nil, err
	}
	out := make([]model.Ward, 0, len(data))
	for _, w := range data {
		out = append(out, model.Ward{Code: w.Code, Name: w.Name, DistrictCode: districtCode})
	}
	return out, nil
}
