package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"prospecta/models"
	"prospecta/tools"
)

// CasafariAdapter consulta o agregador Casafari, que já consolida vários
// portais numa única pesquisa.
type CasafariAdapter struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewCasafariAdapter() *CasafariAdapter {
	return &CasafariAdapter{
		APIKey:     strings.TrimSpace(os.Getenv("CASAFARI_API_KEY")),
		BaseURL:    envOr("CASAFARI_API_URL", "https://api.casafari.com/v1/listings/search"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *CasafariAdapter) Name() string { return "casafari" }

func (a *CasafariAdapter) Configured() bool {
	return a.APIKey != ""
}

func (a *CasafariAdapter) Search(ctx context.Context, params SearchParams) ([]models.Listing, error) {
	limit := params.MaxItems
	if limit <= 0 {
		limit = 20
	}

	reqBody := map[string]any{
		"location":      params.Location,
		"property_type": params.PropertyType,
		"operation":     operationParam(params.Operation),
		"limit":         limit,
	}
	if params.PriceMin > 0 {
		reqBody["price_min"] = params.PriceMin
	}
	if params.PriceMax > 0 {
		reqBody["price_max"] = params.PriceMax
	}

	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("casafari api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Results []struct {
			Title        string   `json:"title"`
			Price        float64  `json:"price"`
			PropertyType string   `json:"property_type"`
			Location     string   `json:"location"`
			Bedrooms     *int     `json:"bedrooms"`
			Bathrooms    *int     `json:"bathrooms"`
			Area         *float64 `json:"total_area"`
			Phone        string   `json:"contact_phone"`
			Email        string   `json:"contact_email"`
			ListingURL   string   `json:"listing_url"`
			Description  string   `json:"description"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("casafari decode: %w", err)
	}

	listings := make([]models.Listing, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		listings = append(listings, models.Listing{
			Title:        r.Title,
			Price:        r.Price,
			PriceDisplay: tools.FormatEUR(r.Price),
			Location:     r.Location,
			PropertyType: models.NormalizePropertyType(r.PropertyType),
			Bedrooms:     r.Bedrooms,
			Bathrooms:    r.Bathrooms,
			Area:         r.Area,
			Phone:        r.Phone,
			Email:        r.Email,
			Source:       a.Name(),
			SourceURL:    r.ListingURL,
			Description:  r.Description,
		})
	}
	return listings, nil
}
