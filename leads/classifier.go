package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"prospecta/models"
	"prospecta/tools"
)

// Verdict é o resultado da classificação, idêntico em forma nos caminhos
// AI e fallback — quem chama nunca precisa distinguir.
type Verdict struct {
	Status    string `json:"status"`
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

const fallbackReasoning = "Classificação por regras determinísticas (IA indisponível ou não configurada): " +
	"pontuação base ajustada por presença de contacto e localização premium."

// premiumCities é a allowlist fixa usada pelo fallback determinístico.
var premiumCities = []string{"lisboa", "porto", "cascais", "oeiras", "sintra", "estoril", "faro", "braga"}

// Classifier envia dados estruturados do lead para a IA e pede um
// veredito em JSON estrito. Retenta com backoff exponencial apenas em
// erros de rate limit/quota; qualquer outro erro cai direto no fallback.
type Classifier struct {
	Client     *tools.OpenAIClient
	MaxRetries int
	Backoff    time.Duration
	BackoffCap time.Duration

	// sleep é injetável para os testes não esperarem o backoff real.
	sleep func(time.Duration)
}

func NewClassifier(client *tools.OpenAIClient) *Classifier {
	return &Classifier{
		Client:     client,
		MaxRetries: 3,
		Backoff:    time.Second,
		BackoffCap: 10 * time.Second,
		sleep:      time.Sleep,
	}
}

// Classify devolve sempre um Verdict válido: status no enum, score 0-100.
func (c *Classifier) Classify(ctx context.Context, lead models.Lead) Verdict {
	if c == nil || !c.Client.Configured() {
		return c.fallback(lead)
	}

	prompt := buildClassifyPrompt(lead)

	var raw string
	var err error
	for attempt := 0; ; attempt++ {
		raw, err = c.Client.ChatJSON(ctx, classifySystemPrompt, prompt)
		if err == nil {
			break
		}
		if !isRateLimitError(err) || attempt >= c.maxRetries() {
			log.Printf("classifier: ai error, using fallback: %v", err)
			return c.fallback(lead)
		}
		d := c.backoffFor(attempt)
		log.Printf("classifier: rate limited (attempt %d), retrying in %s", attempt+1, d)
		c.sleepFor(d)
	}

	verdict, perr := parseVerdict(raw)
	if perr != nil {
		log.Printf("classifier: invalid ai response, using fallback: %v", perr)
		return c.fallback(lead)
	}
	return verdict
}

const classifySystemPrompt = "És um avaliador de leads imobiliários em Portugal. " +
	"Responde SEMPRE e APENAS com um objeto JSON válido, sem texto extra."

func buildClassifyPrompt(lead models.Lead) string {
	var b strings.Builder
	b.WriteString("Avalia este lead de venda de imóvel e responde só com JSON no formato ")
	b.WriteString(`{"status":"quente|morno|frio","score":0-100,"reasoning":"..."}.` + "\n\n")
	b.WriteString("Critérios ponderados:\n")
	b.WriteString("- qualidade da localização (25%)\n")
	b.WriteString("- competitividade do preço (25%)\n")
	b.WriteString("- completude do contacto (20%)\n")
	b.WriteString("- confiabilidade da fonte (15%)\n")
	b.WriteString("- completude da informação (15%)\n\n")
	b.WriteString("Mapeamento obrigatório de score para status: >=75 quente, 40-74 morno, <40 frio.\n\n")
	b.WriteString("Lead:\n")
	fmt.Fprintf(&b, "- Nome: %s\n", orDash(lead.Name))
	fmt.Fprintf(&b, "- Imóvel: %s\n", orDash(lead.Title))
	fmt.Fprintf(&b, "- Tipo: %s\n", lead.PropertyType)
	fmt.Fprintf(&b, "- Localização: %s\n", orDash(lead.Location))
	fmt.Fprintf(&b, "- Preço: %s\n", orDash(lead.PriceDisplay))
	fmt.Fprintf(&b, "- Telefone: %s\n", orDash(lead.Phone))
	fmt.Fprintf(&b, "- Email: %s\n", orDash(lead.Email))
	fmt.Fprintf(&b, "- Fonte: %s\n", orDash(lead.Source))
	fmt.Fprintf(&b, "- Descrição: %s\n", orDash(lead.Description))
	return b.String()
}

func parseVerdict(raw string) (Verdict, error) {
	var v Verdict
	if err := json.Unmarshal([]byte(tools.StripCodeFence(raw)), &v); err != nil {
		return Verdict{}, err
	}
	v.Status = normalizeStatus(v.Status)
	if v.Status == "" {
		return Verdict{}, fmt.Errorf("status fora do enum: %q", v.Status)
	}
	if v.Score < 0 || v.Score > 100 {
		return Verdict{}, fmt.Errorf("score fora da faixa: %d", v.Score)
	}
	return v, nil
}

// normalizeStatus aceita pt e en; devolve "" quando fora do enum.
func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.LEAD_STATUS_HOT, "hot":
		return models.LEAD_STATUS_HOT
	case models.LEAD_STATUS_WARM, "warm":
		return models.LEAD_STATUS_WARM
	case models.LEAD_STATUS_COLD, "cold":
		return models.LEAD_STATUS_COLD
	}
	return ""
}

// fallback é a regra determinística: base 50, +20 com contacto,
// +15 em cidade premium, status derivado da mesma tabela de thresholds.
func (c *Classifier) fallback(lead models.Lead) Verdict {
	score := 50
	if lead.Phone != "" || lead.Email != "" {
		score += 20
	}
	loc := strings.ToLower(lead.Location)
	for _, city := range premiumCities {
		if strings.Contains(loc, city) {
			score += 15
			break
		}
	}
	if score > 100 {
		score = 100
	}
	return Verdict{
		Status:    models.StatusForScore(score),
		Score:     score,
		Reasoning: fallbackReasoning,
	}
}

func isRateLimitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}

func (c *Classifier) maxRetries() int {
	if c.MaxRetries <= 0 {
		return 3
	}
	return c.MaxRetries
}

func (c *Classifier) backoffFor(attempt int) time.Duration {
	base := c.Backoff
	if base <= 0 {
		base = time.Second
	}
	d := base << uint(attempt)
	if c.BackoffCap > 0 && d > c.BackoffCap {
		d = c.BackoffCap
	}
	return d
}

func (c *Classifier) sleepFor(d time.Duration) {
	if c.sleep != nil {
		c.sleep(d)
		return
	}
	time.Sleep(d)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
