package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// DefaultEndpoint is the DeepL free-tier translation endpoint.
const DefaultEndpoint = "https://api-free.deepl.com/v2/translate"

// ignoreTags are HTML tags passed through the provider untranslated.
const ignoreTags = "b, i, u, s, code, pre, a"

const requestTimeout = 10 * time.Second

// SupportedLanguages is the fixed set of target language codes the adapter accepts.
var SupportedLanguages = map[string]struct{}{
	"EN": {}, "DE": {}, "FR": {}, "ES": {}, "RU": {}, "IT": {},
	"NL": {}, "PL": {}, "PT": {}, "JA": {}, "ZH": {},
}

// IsSupported reports whether the language code (case-insensitive) is translatable.
func IsSupported(lang string) bool {
	_, ok := SupportedLanguages[strings.ToUpper(lang)]
	return ok
}

// SupportedLanguageList returns the supported codes as a display string.
func SupportedLanguageList() string {
	codes := []string{"EN", "DE", "FR", "ES", "RU", "IT", "NL", "PL", "PT", "JA", "ZH"}
	return strings.Join(codes, ", ")
}

// Client calls the DeepL HTTP API. A failed or unsupported translation
// degrades to a visible sentinel string instead of an error so that one bad
// destination never aborts fan-out to the others.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a DeepL client. An empty endpoint selects the free-tier API.
func NewClient(apiKey, endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// UnavailableSentinel is the text substituted for an unsupported target language.
func UnavailableSentinel(lang string) string {
	return fmt.Sprintf("⚠ Translation unavailable (%s)", strings.ToUpper(lang))
}

// ErrorSentinel is the text substituted when the provider call fails.
func ErrorSentinel(lang string) string {
	return fmt.Sprintf("⚠ Translation error (%s)", strings.ToUpper(lang))
}

// Translate translates text into the target language, preserving HTML markup
// and line breaks. One attempt, no retry. The result is always usable as
// message text: provider failures come back as sentinel strings.
func (c *Client) Translate(ctx context.Context, text, targetLang string) string {
	if !IsSupported(targetLang) {
		return UnavailableSentinel(targetLang)
	}

	translated, err := c.request(ctx, text, targetLang)
	if err != nil {
		log.Printf("[Translate Lang:%s] Provider error: %v", strings.ToUpper(targetLang), err)
		sentry.CaptureException(fmt.Errorf("translation to %s failed: %w", targetLang, err))
		return ErrorSentinel(targetLang)
	}
	return translated
}

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

func (c *Client) request(ctx context.Context, text, targetLang string) (string, error) {
	form := url.Values{}
	form.Set("text", PrepareForTranslation(text))
	form.Set("target_lang", strings.ToUpper(targetLang))
	form.Set("tag_handling", "html")
	form.Set("ignore_tags", ignoreTags)
	form.Set("preserve_formatting", "1")
	form.Set("split_sentences", "nonewlines")
	form.Set("formality", "default")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed deeplResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Translations) == 0 {
		return "", fmt.Errorf("response contains no translations")
	}

	return RestoreLineBreaks(parsed.Translations[0].Text), nil
}
