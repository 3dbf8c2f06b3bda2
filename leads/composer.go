package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"prospecta/models"
	"prospecta/tools"
)

// Message é o conteúdo composto para um job de saída. Subject só é
// preenchido para email.
type Message struct {
	Content string `json:"message"`
	Subject string `json:"subject"`
}

// Composer gera mensagens personalizadas por IA, com template fixo de
// fallback — um job de mensagem nunca fica bloqueado por IA indisponível.
type Composer struct {
	Client *tools.OpenAIClient
}

func NewComposer(client *tools.OpenAIClient) *Composer {
	return &Composer{Client: client}
}

// Compose devolve sempre uma mensagem utilizável.
func (c *Composer) Compose(ctx context.Context, lead models.Lead, trigger, channel string) Message {
	if c == nil || !c.Client.Configured() {
		return templateMessage(lead, trigger, channel)
	}

	raw, err := c.Client.ChatJSON(ctx, composeSystemPrompt, buildComposePrompt(lead, trigger, channel))
	if err != nil {
		log.Printf("composer: ai error, using template: %v", err)
		return templateMessage(lead, trigger, channel)
	}

	var msg Message
	if err := json.Unmarshal([]byte(tools.StripCodeFence(raw)), &msg); err != nil || strings.TrimSpace(msg.Content) == "" {
		log.Printf("composer: invalid ai response, using template")
		return templateMessage(lead, trigger, channel)
	}
	if channel != models.CHANNEL_EMAIL {
		msg.Subject = ""
	} else if msg.Subject == "" {
		msg.Subject = templateSubject(trigger)
	}
	return msg
}

const composeSystemPrompt = "És um consultor imobiliário profissional em Portugal. " +
	"Responde SEMPRE e APENAS com um objeto JSON válido."

func buildComposePrompt(lead models.Lead, trigger, channel string) string {
	limit := 150
	if channel == models.CHANNEL_EMAIL {
		limit = 250
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Escreve uma mensagem curta e profissional (máximo %d palavras) em português de Portugal, ", limit)
	b.WriteString("sem emojis, com uma chamada à ação explícita (agendar avaliação gratuita do imóvel).\n")
	switch trigger {
	case models.JOB_TRIGGER_NEW_LEAD:
		b.WriteString("Contexto: primeiro contacto com proprietário que anunciou o imóvel recentemente.\n")
	case models.JOB_TRIGGER_FOLLOWUP_3D:
		b.WriteString("Contexto: follow-up educado, 3 dias depois do primeiro contacto sem resposta.\n")
	case models.JOB_TRIGGER_FOLLOWUP_7D:
		b.WriteString("Contexto: último follow-up, 7 dias depois, tom de despedida cordial deixando a porta aberta.\n")
	default:
		b.WriteString("Contexto: contacto comercial sobre o imóvel anunciado.\n")
	}
	if channel == models.CHANNEL_EMAIL {
		b.WriteString(`Responde no formato {"message":"...","subject":"..."}.` + "\n")
	} else {
		b.WriteString(`Responde no formato {"message":"..."}.` + "\n")
	}
	b.WriteString("\nDados do lead:\n")
	fmt.Fprintf(&b, "- Nome: %s\n", orDash(lead.Name))
	fmt.Fprintf(&b, "- Localização: %s\n", orDash(lead.Location))
	fmt.Fprintf(&b, "- Imóvel: %s (%s)\n", orDash(lead.Title), lead.PropertyType)
	fmt.Fprintf(&b, "- Preço anunciado: %s\n", orDash(lead.PriceDisplay))
	return b.String()
}

// templateMessage é o fallback fixo, interpolando os mesmos campos.
func templateMessage(lead models.Lead, trigger, channel string) Message {
	name := strings.TrimSpace(lead.Name)
	if name == "" {
		name = "proprietário(a)"
	}
	property := strings.TrimSpace(lead.Title)
	if property == "" {
		property = "o seu imóvel"
	}
	location := strings.TrimSpace(lead.Location)
	if location == "" {
		location = "a sua zona"
	}

	var content string
	switch trigger {
	case models.JOB_TRIGGER_FOLLOWUP_3D:
		content = fmt.Sprintf(
			"Olá %s, volto a contactar sobre %s em %s. Continuo disponível para uma avaliação gratuita e sem compromisso. Quando lhe daria jeito falarmos?",
			name, property, location)
	case models.JOB_TRIGGER_FOLLOWUP_7D:
		content = fmt.Sprintf(
			"Olá %s, este é o meu último contacto sobre %s em %s. Se mais tarde quiser uma avaliação gratuita do imóvel, terei todo o gosto em ajudar. Bons negócios!",
			name, property, location)
	default:
		content = fmt.Sprintf(
			"Olá %s, vi que anunciou %s em %s por %s. Trabalho com vendedores na zona e gostava de lhe oferecer uma avaliação gratuita do imóvel. Podemos falar?",
			name, property, location, displayOr(lead.PriceDisplay, "um valor competitivo"))
	}

	msg := Message{Content: content}
	if channel == models.CHANNEL_EMAIL {
		msg.Subject = templateSubject(trigger)
	}
	return msg
}

func templateSubject(trigger string) string {
	switch trigger {
	case models.JOB_TRIGGER_FOLLOWUP_3D, models.JOB_TRIGGER_FOLLOWUP_7D:
		return "Ainda disponível para avaliar o seu imóvel"
	default:
		return "Avaliação gratuita do seu imóvel"
	}
}

func displayOr(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
