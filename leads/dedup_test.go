package leads

import (
	"testing"

	"prospecta/models"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicatePhoneMatch(t *testing.T) {
	existing := []models.Lead{
		{Name: "Maria", Phone: "351912345678", Location: "Porto"},
	}

	// mesmo telefone com '+' e espaços, resto todo diferente
	listing := models.Listing{
		Title:    "T2 em Lisboa",
		Phone:    "+351 912 345 678",
		Location: "Lisboa",
		Email:    "outro@example.com",
	}
	assert.True(t, IsDuplicate(listing, existing))
}

func TestIsDuplicateEmailMatch(t *testing.T) {
	existing := []models.Lead{
		{Email: "dono@example.com"},
	}

	listing := models.Listing{Email: "  Dono@Example.com "}
	assert.True(t, IsDuplicate(listing, existing))
}

func TestIsDuplicateSourceURLMatch(t *testing.T) {
	existing := []models.Lead{
		{SourceURL: "https://portal.example/anuncio/42"},
	}

	listing := models.Listing{SourceURL: "https://portal.example/anuncio/42"}
	assert.True(t, IsDuplicate(listing, existing))
}

func TestIsDuplicateAnonymousSameLocation(t *testing.T) {
	existing := []models.Lead{
		{Location: "Cascais"},
	}

	// ambos sem contacto, mesma localização => duplicado (conservador)
	assert.True(t, IsDuplicate(models.Listing{Location: "cascais"}, existing))

	// listing com contacto não cai na heurística anónima
	assert.False(t, IsDuplicate(models.Listing{Location: "Cascais", Phone: "912000000"}, existing))
}

func TestIsDuplicateNoMatch(t *testing.T) {
	existing := []models.Lead{
		{Phone: "351911111111", Email: "a@example.com", Location: "Braga"},
	}

	listing := models.Listing{
		Phone:    "351922222222",
		Email:    "b@example.com",
		Location: "Faro",
	}
	assert.False(t, IsDuplicate(listing, existing))
	assert.False(t, IsDuplicate(listing, nil))
}
