package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"encoding/json"

	"github.com/floktl/XploreED-sub002/internal/errors"
)

// DeepLClient wraps the DeepL REST API for word and sentence translation.
type DeepLClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewDeepLClient creates a new DeepL client. baseURL selects the free or pro
// endpoint (https://api-free.deepl.com / https://api.deepl.com).
func NewDeepLClient(apiKey, baseURL string) *DeepLClient {
	if baseURL == "" {
		baseURL = "https://api-free.deepl.com"
	}
	return &DeepLClient{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Translate translates text between languages. sourceLang may be empty for
// auto-detection; targetLang is required (e.g. "EN", "DE").
func (c *DeepLClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New(errors.ErrTranslationService, "DeepL credentials not configured")
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", strings.ToUpper(targetLang))
	if sourceLang != "" {
		form.Set("source_lang", strings.ToUpper(sourceLang))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("deepl api error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Translations) == 0 {
		return "", fmt.Errorf("deepl returned no translations")
	}

	return result.Translations[0].Text, nil
}
