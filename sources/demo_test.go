package sources

import (
	"context"
	"testing"

	"prospecta/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoAdapterDeterministic(t *testing.T) {
	d := NewDemoAdapter()
	params := SearchParams{Location: "Lisboa", PropertyType: models.PROPERTY_TYPE_APARTMENT, Operation: models.OPERATION_SALE}

	first, err := d.Search(context.Background(), params)
	require.NoError(t, err)
	second, err := d.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestDemoAdapterRespectsBounds(t *testing.T) {
	d := NewDemoAdapter()
	params := SearchParams{
		Location:     "Porto",
		PropertyType: models.PROPERTY_TYPE_HOUSE,
		PriceMin:     200000,
		PriceMax:     300000,
		MaxItems:     2,
	}

	listings, err := d.Search(context.Background(), params)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(listings), 2)
	for _, l := range listings {
		assert.GreaterOrEqual(t, l.Price, 200000.0)
		assert.Less(t, l.Price, 300001.0)
		assert.Equal(t, "demo", l.Source)
		assert.Equal(t, "Porto", l.Location)
		assert.Equal(t, models.PROPERTY_TYPE_HOUSE, l.PropertyType)
		assert.NotEmpty(t, l.SourceURL)
		assert.NotEmpty(t, l.PriceDisplay)
	}
}

func TestChainAlwaysHasDemoTail(t *testing.T) {
	chain := NewChain([]string{"idealista", "olx", "desconhecido"})
	adapters := chain.Adapters()
	require.NotEmpty(t, adapters)
	assert.Equal(t, "demo", adapters[len(adapters)-1].Name())

	// sem credenciais configuradas, a pesquisa degrada para o demo
	listings := chain.Search(context.Background(), SearchParams{Location: "Faro"})
	require.NotEmpty(t, listings)
	assert.Equal(t, "demo", listings[0].Source)
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 250000.0, ParsePrice("250.000 €"))
	assert.Equal(t, 1200.5, ParsePrice("€ 1.200,5"))
	assert.Equal(t, 230000.0, ParsePrice("230000"))
	assert.Equal(t, 0.0, ParsePrice("sob consulta"))
}
