package models

/************************************************
/**** MARK: PROPERTY TYPES ****/
/************************************************/
const PROPERTY_TYPE_APARTMENT = "apartment"
const PROPERTY_TYPE_HOUSE = "house"
const PROPERTY_TYPE_LAND = "land"
const PROPERTY_TYPE_COMMERCIAL = "commercial"
const PROPERTY_TYPE_GARAGE = "garage"
const PROPERTY_TYPE_STORAGE = "storage"
const PROPERTY_TYPE_OTHER = "other"

/************************************************
/**** MARK: OPERATIONS ****/
/************************************************/
const OPERATION_SALE = "sale"
const OPERATION_RENT = "rent"

// Listing é o resultado normalizado de um source adapter.
// Não é persistido diretamente: passa pelo dedup e pelo classifier
// e, se aceito, vira um Lead.
type Listing struct {
	Title        string   `json:"title"`
	Price        float64  `json:"price"`
	PriceDisplay string   `json:"price_display"`
	Location     string   `json:"location"`
	PropertyType string   `json:"property_type"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	Area         *float64 `json:"area,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Email        string   `json:"email,omitempty"`
	Source       string   `json:"source"`
	SourceURL    string   `json:"source_url"`
	Description  string   `json:"description"`
}

// HasContact reports whether the listing carries any direct contact method.
func (l Listing) HasContact() bool {
	return l.Phone != "" || l.Email != ""
}

// NormalizePropertyType mapeia o vocabulário heterogêneo dos portais
// (pt/en) para o enum canônico.
func NormalizePropertyType(raw string) string {
	switch normalizeTypeWord(raw) {
	case "apartment", "apartamento", "flat", "piso", "t0", "t1", "t2", "t3", "t4":
		return PROPERTY_TYPE_APARTMENT
	case "house", "moradia", "vivenda", "casa", "chalet":
		return PROPERTY_TYPE_HOUSE
	case "land", "terreno", "lote", "plot":
		return PROPERTY_TYPE_LAND
	case "commercial", "comercial", "loja", "escritorio", "escritório", "office", "shop":
		return PROPERTY_TYPE_COMMERCIAL
	case "garage", "garagem", "parking", "estacionamento":
		return PROPERTY_TYPE_GARAGE
	case "storage", "arrecadacao", "arrecadação", "armazem", "armazém", "warehouse":
		return PROPERTY_TYPE_STORAGE
	case "":
		return PROPERTY_TYPE_OTHER
	default:
		return PROPERTY_TYPE_OTHER
	}
}

func normalizeTypeWord(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if r == ' ' || r == '\t' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// IsValidPropertyType valida o enum canônico.
func IsValidPropertyType(t string) bool {
	switch t {
	case PROPERTY_TYPE_APARTMENT, PROPERTY_TYPE_HOUSE, PROPERTY_TYPE_LAND,
		PROPERTY_TYPE_COMMERCIAL, PROPERTY_TYPE_GARAGE, PROPERTY_TYPE_STORAGE,
		PROPERTY_TYPE_OTHER:
		return true
	}
	return false
}
