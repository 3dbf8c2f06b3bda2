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

// EmailClient fala com um provedor transacional de email por HTTP.
type EmailClient struct {
	APIKey     string
	From       string
	BaseURL    string
	HTTPClient *http.Client
}

// NewEmailClientFromEnv devolve nil quando EMAIL_API_KEY não está
// configurada — o dispatcher reporta sucesso simulado (modo demo).
func NewEmailClientFromEnv() *EmailClient {
	key := strings.TrimSpace(os.Getenv("EMAIL_API_KEY"))
	if key == "" {
		return nil
	}
	return &EmailClient{
		APIKey:     key,
		From:       getenv("EMAIL_FROM", "no-reply@prospecta.pt"),
		BaseURL:    getenv("EMAIL_API_URL", "https://api.resend.com/emails"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Send envia um email transacional.
func (e *EmailClient) Send(ctx context.Context, to, subject, text string) error {
	if e == nil || e.APIKey == "" {
		return fmt.Errorf("email client not configured")
	}

	reqBody := map[string]any{
		"from":    e.From,
		"to":      []string{to},
		"subject": subject,
		"text":    text,
	}

	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+e.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := e.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email api error: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
