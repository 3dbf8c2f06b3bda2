package sources

import (
	"strconv"
	"strings"
)

// ParsePrice extrai um valor numérico de um preço exibido pelos portais
// ("250.000 €", "€ 1.200", "230000"). Ponto é separador de milhar e
// vírgula é decimal, como nos portais pt.
func ParsePrice(display string) float64 {
	var b strings.Builder
	for _, r := range display {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}
	s := b.String()
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
