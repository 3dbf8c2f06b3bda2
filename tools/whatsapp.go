package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// WhatsAppClient fala com a Cloud API (Meta) usando credenciais próprias.
type WhatsAppClient struct {
	AccessToken   string
	ApiVersion    string
	PhoneNumberID string
	HTTPClient    *http.Client
}

// NewWhatsAppClientFromEnv devolve nil quando as credenciais não estão
// configuradas — o dispatcher cai no link wa.me.
func NewWhatsAppClientFromEnv() *WhatsAppClient {
	token := strings.TrimSpace(os.Getenv("WHATSAPP_ACCESS_TOKEN"))
	phoneID := strings.TrimSpace(os.Getenv("WHATSAPP_PHONE_NUMBER_ID"))
	if token == "" || phoneID == "" {
		return nil
	}
	return &WhatsAppClient{
		AccessToken:   token,
		ApiVersion:    getenv("WHATSAPP_API_VERSION", "v20.0"),
		PhoneNumberID: phoneID,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SendText sends a text message via WhatsApp Cloud API.
func (w *WhatsAppClient) SendText(ctx context.Context, to string, text string) error {
	if w == nil || w.AccessToken == "" || w.PhoneNumberID == "" {
		return fmt.Errorf("whatsapp client not configured")
	}

	version := w.ApiVersion
	if version == "" {
		version = "v20.0"
	}
	apiURL := fmt.Sprintf("https://graph.facebook.com/%s/%s/messages", version, w.PhoneNumberID)

	reqBody := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]any{
			"body": text,
		},
	}

	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	client := w.HTTPClient
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
		return fmt.Errorf("whatsapp api error: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

// ClickToChatURL monta o link wa.me de fallback, sempre acionável por um
// humano quando a Cloud API não está disponível. Espaços saem como %20.
func ClickToChatURL(phone string, text string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + phone + "?text=" + encoded
}
