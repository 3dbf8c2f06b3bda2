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

// IdealistaAdapter consulta a API de pesquisa do Idealista.
type IdealistaAdapter struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewIdealistaAdapter() *IdealistaAdapter {
	return &IdealistaAdapter{
		APIKey:     strings.TrimSpace(os.Getenv("IDEALISTA_API_KEY")),
		BaseURL:    envOr("IDEALISTA_API_URL", "https://api.idealista.com/3.5/pt/search"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *IdealistaAdapter) Name() string { return "idealista" }

func (a *IdealistaAdapter) Configured() bool {
	return a.APIKey != ""
}

func (a *IdealistaAdapter) Search(ctx context.Context, params SearchParams) ([]models.Listing, error) {
	q := url.Values{}
	q.Set("country", "pt")
	q.Set("operation", operationParam(params.Operation))
	if params.Location != "" {
		q.Set("locationName", params.Location)
	}
	if params.PropertyType != "" {
		q.Set("propertyType", idealistaTypeParam(params.PropertyType))
	}
	if params.PriceMin > 0 {
		q.Set("minPrice", strconv.FormatFloat(params.PriceMin, 'f', 0, 64))
	}
	if params.PriceMax > 0 {
		q.Set("maxPrice", strconv.FormatFloat(params.PriceMax, 'f', 0, 64))
	}
	maxItems := params.MaxItems
	if maxItems <= 0 {
		maxItems = 20
	}
	q.Set("maxItems", strconv.Itoa(maxItems))

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
		return nil, fmt.Errorf("idealista api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var parsed struct {
		ElementList []struct {
			SuggestedTexts struct {
				Title string `json:"title"`
			} `json:"suggestedTexts"`
			Price        float64 `json:"price"`
			PropertyType string  `json:"propertyType"`
			Address      string  `json:"address"`
			Municipality string  `json:"municipality"`
			Rooms        *int    `json:"rooms"`
			Bathrooms    *int    `json:"bathrooms"`
			Size         *float64 `json:"size"`
			ContactInfo  struct {
				Phone string `json:"phone1"`
				Email string `json:"email"`
			} `json:"contactInfo"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"elementList"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("idealista decode: %w", err)
	}

	listings := make([]models.Listing, 0, len(parsed.ElementList))
	for _, el := range parsed.ElementList {
		location := el.Municipality
		if location == "" {
			location = el.Address
		}
		listings = append(listings, models.Listing{
			Title:        el.SuggestedTexts.Title,
			Price:        el.Price,
			PriceDisplay: tools.FormatEUR(el.Price),
			Location:     location,
			PropertyType: models.NormalizePropertyType(el.PropertyType),
			Bedrooms:     el.Rooms,
			Bathrooms:    el.Bathrooms,
			Area:         el.Size,
			Phone:        el.ContactInfo.Phone,
			Email:        el.ContactInfo.Email,
			Source:       a.Name(),
			SourceURL:    el.URL,
			Description:  el.Description,
		})
	}
	return listings, nil
}

func idealistaTypeParam(canonical string) string {
	switch canonical {
	case models.PROPERTY_TYPE_APARTMENT:
		return "flat"
	case models.PROPERTY_TYPE_HOUSE:
		return "chalet"
	case models.PROPERTY_TYPE_LAND:
		return "land"
	case models.PROPERTY_TYPE_COMMERCIAL:
		return "premise"
	case models.PROPERTY_TYPE_GARAGE:
		return "garage"
	case models.PROPERTY_TYPE_STORAGE:
		return "storageRoom"
	default:
		return "flat"
	}
}

func operationParam(op string) string {
	if op == models.OPERATION_RENT {
		return "rent"
	}
	return "sale"
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
