package tools

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizePhone normaliza um telefone para o formato aceito pelo WhatsApp
// Cloud API (apenas dígitos, formato internacional, sem '+').
//
// Heurística atual (Portugal):
// - remove tudo que não é dígito
// - se vier com 9 dígitos (móvel/fixo nacional), prefixa 351
// - se já vier com DDI (>= 11 dígitos), mantém
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty phone")
	}

	// mantém apenas dígitos
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	phone := b.String()
	phone = strings.TrimLeft(phone, "0")

	// número nacional PT: 9 dígitos -> prefixa 351
	if len(phone) == 9 {
		phone = "351" + phone
	}

	// validação bem leve: DDI + número
	if len(phone) < 11 {
		return "", fmt.Errorf("invalid phone length: %d", len(phone))
	}
	return phone, nil
}

// PhoneDigits devolve só os dígitos, sem validar tamanho. Útil para
// comparação de duplicados, onde um número curto ainda conta.
func PhoneDigits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
