package sources

import (
	"context"
	"log"
	"strings"

	"prospecta/models"
)

// SearchParams são os critérios normalizados que todo adapter entende.
type SearchParams struct {
	Location     string
	PropertyType string
	Operation    string // models.OPERATION_SALE | models.OPERATION_RENT
	PriceMin     float64
	PriceMax     float64
	MaxItems     int
}

// SourceAdapter é a capacidade única que um portal precisa expor.
// Search nunca deve estourar para "sem resultados" ou "upstream fora":
// devolve lista vazia ou erro, e o Chain decide o próximo da fila.
type SourceAdapter interface {
	Name() string
	Configured() bool
	Search(ctx context.Context, params SearchParams) ([]models.Listing, error)
}

// Chain itera adapters em ordem de prioridade até um devolver dados.
// O último da fila é sempre o DemoAdapter, que nunca falha — downstream
// jamais recebe erro duro só porque falta credencial de terceiro.
type Chain struct {
	adapters []SourceAdapter
}

// NewChain monta a fila a partir dos nomes configurados no customer
// ("idealista,olx,casafari,scraper"). Nomes desconhecidos são ignorados
// com log. O demo entra sempre como cauda, mesmo que não seja pedido.
func NewChain(names []string) *Chain {
	var adapters []SourceAdapter
	for _, n := range names {
		switch strings.TrimSpace(strings.ToLower(n)) {
		case "idealista":
			adapters = append(adapters, NewIdealistaAdapter())
		case "olx":
			adapters = append(adapters, NewOLXAdapter())
		case "casafari":
			adapters = append(adapters, NewCasafariAdapter())
		case "scraper":
			adapters = append(adapters, NewScraperAdapter())
		case "demo", "":
			// cauda garantida, adicionada abaixo
		default:
			log.Printf("sources: unknown adapter %q, skipping", n)
		}
	}
	adapters = append(adapters, NewDemoAdapter())
	return &Chain{adapters: adapters}
}

// Search tenta cada adapter em ordem; o primeiro que devolver dados ganha.
func (c *Chain) Search(ctx context.Context, params SearchParams) []models.Listing {
	for _, a := range c.adapters {
		if !a.Configured() {
			log.Printf("sources: %s not configured, trying next", a.Name())
			continue
		}
		listings, err := a.Search(ctx, params)
		if err != nil {
			log.Printf("sources: %s search error (degraded): %v", a.Name(), err)
			continue
		}
		if len(listings) > 0 {
			return listings
		}
	}
	// inalcançável na prática: o demo sempre responde
	return nil
}

// Adapters expõe a fila montada (útil para inspeção e testes).
func (c *Chain) Adapters() []SourceAdapter {
	return c.adapters
}
