// Package classifier maps a sentiment prompt to a list of music genres via
// the OpenAI chat completions API. Classification is non-deterministic by
// nature; results for a given prompt are cached in Redis to spare quota on
// repeated prompts.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sentisounds/logger"

	"github.com/go-redis/redis/v8"
)

// Prompt validation failures, one stable message per rule.
var (
	ErrPromptEmpty    = errors.New("no prompt was entered")
	ErrPromptTooShort = errors.New("that prompt was too short, min 5 chars")
	ErrPromptTooLong  = errors.New("that prompt was too long, max 200 chars")
	ErrPromptBadChars = errors.New(`the prompt cannot contain the following characters: ^*_=+;\|`)
)

// ErrNoGenres is returned when a well-formed model response yields no genres.
var ErrNoGenres = errors.New("no genres could be found from the given input")

const disallowedChars = `^*_=+;\|`

const defaultBaseURL = "https://api.openai.com/v1"

// Client calls the chat completions endpoint with a fixed system prompt and
// parses the JSON genre list out of the reply.
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	systemPrompt string
	httpClient   *http.Client
	cache        *redis.Client
	cacheTTL     time.Duration
}

// NewClient creates a classifier client. cache may be nil to disable the
// Redis result cache.
func NewClient(apiKey, model, systemPrompt string, cache *redis.Client, cacheTTL time.Duration) *Client {
	return &Client{
		baseURL:      defaultBaseURL,
		apiKey:       apiKey,
		model:        model,
		systemPrompt: systemPrompt,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// SetBaseURL overrides the API base URL.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimSuffix(url, "/")
}

// Sanitize trims the raw prompt and checks it against every input rule,
// returning the cleaned prompt or the first violated rule.
func Sanitize(raw string) (string, error) {
	prompt := strings.TrimSpace(raw)

	if prompt == "" {
		return "", ErrPromptEmpty
	}
	if len(prompt) <= 5 {
		return "", ErrPromptTooShort
	}
	if len(prompt) >= 200 {
		return "", ErrPromptTooLong
	}
	if strings.ContainsAny(prompt, disallowedChars) {
		return "", ErrPromptBadChars
	}
	return prompt, nil
}

type chatRequest struct {
	Model          string        `json:"model"`
	ResponseFormat responseType  `json:"response_format"`
	Messages       []chatMessage `json:"messages"`
}

type responseType struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Genres returns the genre list for a sanitized prompt, consulting the
// Redis cache first.
func (c *Client) Genres(ctx context.Context, sanitizedPrompt string) ([]string, error) {
	cacheKey := "genres:" + strings.ToLower(sanitizedPrompt)

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey).Result(); err == nil {
			var genres []string
			if err := json.Unmarshal([]byte(cached), &genres); err == nil && len(genres) > 0 {
				logger.Debug("[Classifier] cache hit", logger.String("prompt", sanitizedPrompt))
				return genres, nil
			}
		}
	}

	genres, err := c.classify(ctx, sanitizedPrompt)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if payload, err := json.Marshal(genres); err == nil {
			if err := c.cache.Set(ctx, cacheKey, payload, c.cacheTTL).Err(); err != nil {
				logger.Warn("[Classifier] failed to cache genres", logger.ErrorField(err))
			}
		}
	}

	return genres, nil
}

func (c *Client) classify(ctx context.Context, prompt string) ([]string, error) {
	reqBody := chatRequest{
		Model:          c.model,
		ResponseFormat: responseType{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode classification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create classification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logger.Error("[Classifier] API returned error status",
			logger.Int("status", resp.StatusCode),
			logger.String("body", string(body)))
		return nil, fmt.Errorf("classification API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode classification response: %w", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, errors.New("the classifier provided no response")
	}

	return parseGenres(parsed.Choices[0].Message.Content)
}

// parseGenres extracts the genre list out of the model's JSON reply.
func parseGenres(content string) ([]string, error) {
	var body struct {
		Genres []interface{} `json:"genres"`
	}
	if err := json.Unmarshal([]byte(content), &body); err != nil {
		return nil, errors.New("the classifier response could not be parsed into JSON")
	}
	if body.Genres == nil {
		return nil, errors.New("the classifier response does not contain the genres key")
	}

	genres := make([]string, 0, len(body.Genres))
	for _, g := range body.Genres {
		genres = append(genres, strings.ToLower(fmt.Sprint(g)))
	}
	if len(genres) == 0 {
		return nil, ErrNoGenres
	}
	return genres, nil
}
