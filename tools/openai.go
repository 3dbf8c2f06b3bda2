package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// OpenAIClient fala com um endpoint estilo chat-completions pedindo resposta
// em JSON. BaseURL é configurável para apontar para ambientes de teste.
type OpenAIClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenAIClientFromEnv monta o client a partir das envs. A ausência de
// OPENAI_API_KEY não é erro: o client fica "não configurado" e os callers
// caem nos fallbacks determinísticos.
func NewOpenAIClientFromEnv() *OpenAIClient {
	return &OpenAIClient{
		APIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:      getenv("OPENAI_MODEL", "gpt-4.1-mini"),
		BaseURL:    getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *OpenAIClient) Configured() bool {
	return c != nil && c.APIKey != ""
}

// ChatJSON envia system+user e devolve o conteúdo da primeira choice.
// O response_format json_object é pedido explicitamente; ainda assim o
// caller deve passar o retorno por StripCodeFence antes de decodificar.
func (c *OpenAIClient) ChatJSON(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	reqBody := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"response_format": map[string]string{"type": "json_object"},
	}

	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimRight(c.BaseURL, "/")+"/chat/completions",
		bytes.NewReader(b),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// StripCodeFence remove cercas markdown (```json ... ```) que alguns
// modelos insistem em devolver mesmo com response_format json.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 && !strings.HasPrefix(s, "{") {
		// descarta o identificador de linguagem ("json")
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
