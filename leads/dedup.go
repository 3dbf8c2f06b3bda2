package leads

import (
	"strings"

	"prospecta/models"
	"prospecta/tools"
)

// IsDuplicate decide se um listing já está representado nos leads do
// customer. Regras, em ordem:
//  1. telefone normalizado igual (sem espaços, sem '+')
//  2. email normalizado igual
//  3. heurística conservadora: mesma localização E nenhum dos dois lados
//     tem qualquer contacto — evita re-inserir anúncios anónimos da mesma
//     zona a cada tick do scheduler.
func IsDuplicate(listing models.Listing, existing []models.Lead) bool {
	phone := tools.PhoneDigits(listing.Phone)
	email := normalizeEmail(listing.Email)
	location := strings.TrimSpace(strings.ToLower(listing.Location))

	for _, lead := range existing {
		if phone != "" && phone == tools.PhoneDigits(lead.Phone) {
			return true
		}
		if email != "" && email == normalizeEmail(lead.Email) {
			return true
		}
		if listing.SourceURL != "" && listing.SourceURL == lead.SourceURL {
			return true
		}
		if !listing.HasContact() && lead.Phone == "" && lead.Email == "" {
			leadLoc := strings.TrimSpace(strings.ToLower(lead.Location))
			if location != "" && location == leadLoc {
				return true
			}
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
