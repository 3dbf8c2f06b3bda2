package sources

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"

	"prospecta/models"
	"prospecta/tools"
)

// DemoAdapter gera listings sintéticos mas plausíveis, de forma
// determinística para os mesmos parâmetros. É a cauda garantida do Chain:
// automação e UI continuam funcionando sem nenhuma credencial externa.
type DemoAdapter struct{}

func NewDemoAdapter() *DemoAdapter {
	return &DemoAdapter{}
}

func (d *DemoAdapter) Name() string { return "demo" }

func (d *DemoAdapter) Configured() bool { return true }

var demoStreets = []string{
	"Rua das Flores", "Avenida da República", "Rua Augusta",
	"Travessa do Carmo", "Rua do Comércio", "Avenida Central",
}

var demoFirstNames = []string{"Maria", "João", "Ana", "Pedro", "Sofia", "Miguel"}
var demoLastNames = []string{"Silva", "Santos", "Ferreira", "Costa", "Oliveira", "Pereira"}

func (d *DemoAdapter) Search(_ context.Context, params SearchParams) ([]models.Listing, error) {
	location := params.Location
	if location == "" {
		location = "Lisboa"
	}
	ptype := params.PropertyType
	if !models.IsValidPropertyType(ptype) {
		ptype = models.PROPERTY_TYPE_APARTMENT
	}

	seed := demoSeed(location, ptype, params.Operation)
	rng := rand.New(rand.NewSource(int64(seed)))

	n := 3 + rng.Intn(3)
	if params.MaxItems > 0 && n > params.MaxItems {
		n = params.MaxItems
	}

	priceMin := params.PriceMin
	priceMax := params.PriceMax
	if priceMin <= 0 {
		priceMin = 120000
	}
	if priceMax <= priceMin {
		priceMax = priceMin + 380000
	}

	listings := make([]models.Listing, 0, n)
	for i := 0; i < n; i++ {
		price := priceMin + float64(rng.Int63n(int64(priceMax-priceMin)))
		price = float64(int64(price/1000) * 1000)

		bedrooms := 1 + rng.Intn(4)
		bathrooms := 1 + rng.Intn(2)
		area := 45.0 + float64(rng.Intn(160))
		name := demoFirstNames[rng.Intn(len(demoFirstNames))] + " " + demoLastNames[rng.Intn(len(demoLastNames))]
		street := demoStreets[rng.Intn(len(demoStreets))]
		phone := fmt.Sprintf("+3519%08d", rng.Int63n(100000000))

		ref := fmt.Sprintf("%08x-%d", seed, i)
		listing := models.Listing{
			Title:        fmt.Sprintf("T%d em %s, %s", bedrooms, street, location),
			Price:        price,
			PriceDisplay: tools.FormatEUR(price),
			Location:     location,
			PropertyType: ptype,
			Bedrooms:     &bedrooms,
			Bathrooms:    &bathrooms,
			Area:         &area,
			Phone:        phone,
			Source:       "demo",
			SourceURL:    "https://demo.prospecta.local/listing/" + ref,
			Description: fmt.Sprintf(
				"Imóvel de demonstração em %s, %s. Proprietário: %s. Dados sintéticos gerados por ausência de fonte externa configurada.",
				street, location, name,
			),
		}
		if rng.Intn(3) == 0 {
			listing.Phone = ""
			listing.Email = ""
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

func demoSeed(parts ...string) uint32 {
	h := fnv.New32a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return h.Sum32()
}
