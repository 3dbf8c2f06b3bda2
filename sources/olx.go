package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"prospecta/models"
	"prospecta/tools"
)

// OLXAdapter consulta a API pública de anúncios do OLX.
type OLXAdapter struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewOLXAdapter() *OLXAdapter {
	return &OLXAdapter{
		APIKey:     strings.TrimSpace(os.Getenv("OLX_API_KEY")),
		BaseURL:    envOr("OLX_API_URL", "https://www.olx.pt/api/v1/offers"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *OLXAdapter) Name() string { return "olx" }

func (a *OLXAdapter) Configured() bool {
	return a.APIKey != ""
}

func (a *OLXAdapter) Search(ctx context.Context, params SearchParams) ([]models.Listing, error) {
	q := url.Values{}
	q.Set("category", olxCategory(params.PropertyType, params.Operation))
	if params.Location != "" {
		q.Set("city", params.Location)
	}
	if params.PriceMin > 0 {
		q.Set("filter_float_price:from", strconv.FormatFloat(params.PriceMin, 'f', 0, 64))
	}
	if params.PriceMax > 0 {
		q.Set("filter_float_price:to", strconv.FormatFloat(params.PriceMax, 'f', 0, 64))
	}
	limit := params.MaxItems
	if limit <= 0 {
		limit = 20
	}
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("olx api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Data []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			Location    struct {
				City struct {
					Name string `json:"name"`
				} `json:"city"`
			} `json:"location"`
			Contact struct {
				Phone string `json:"phone"`
			} `json:"contact"`
			Params []struct {
				Key   string `json:"key"`
				Value struct {
					Label string `json:"label"`
					Key   string `json:"key"`
				} `json:"value"`
			} `json:"params"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("olx decode: %w", err)
	}

	listings := make([]models.Listing, 0, len(parsed.Data))
	for _, ad := range parsed.Data {
		var price float64
		ptype := params.PropertyType
		for _, p := range ad.Params {
			switch p.Key {
			case "price":
				price = ParsePrice(p.Value.Label)
			case "property_type", "tipo":
				ptype = models.NormalizePropertyType(p.Value.Key)
			}
		}
		listings = append(listings, models.Listing{
			Title:        ad.Title,
			Price:        price,
			PriceDisplay: tools.FormatEUR(price),
			Location:     ad.Location.City.Name,
			PropertyType: models.NormalizePropertyType(ptype),
			Phone:        ad.Contact.Phone,
			Source:       a.Name(),
			SourceURL:    ad.URL,
			Description:  ad.Description,
		})
	}
	return listings, nil
}

func olxCategory(propertyType, operation string) string {
	op := "venda"
	if operation == models.OPERATION_RENT {
		op = "arrendamento"
	}
	switch propertyType {
	case models.PROPERTY_TYPE_HOUSE:
		return "imoveis/moradias-" + op
	case models.PROPERTY_TYPE_LAND:
		return "imoveis/terrenos-" + op
	case models.PROPERTY_TYPE_COMMERCIAL:
		return "imoveis/comercial-" + op
	case models.PROPERTY_TYPE_GARAGE:
		return "imoveis/garagens-" + op
	default:
		return "imoveis/apartamentos-" + op
	}
}
