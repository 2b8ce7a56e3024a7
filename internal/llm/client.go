// Package llm is the client for an Ollama-compatible completion server. Both
// the text model and the vision model speak the same /api/generate endpoint;
// vision requests just carry base64 JPEG frames in the images field.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

type Options struct {
	Temperature float64
	TopP        float64
	NumPredict  int
}

type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

// New creates a client for one model. httpClient may be nil, in which case a
// default with a 60 second timeout is used.
func New(baseURL, model string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: baseURL, model: model, http: httpClient}
}

func (c *Client) Model() string { return c.model }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Images  []string        `json:"images,omitempty"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p,omitempty"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate runs one non-streaming completion and returns the trimmed
// response text.
func (c *Client) Generate(ctx context.Context, prompt string, opt Options) (string, error) {
	return c.generate(ctx, prompt, nil, opt)
}

// GenerateWithImages is Generate with JPEG frames attached for the vision
// model.
func (c *Client) GenerateWithImages(ctx context.Context, prompt string, images [][]byte, opt Options) (string, error) {
	encoded := make([]string, 0, len(images))
	for _, img := range images {
		encoded = append(encoded, base64.StdEncoding.EncodeToString(img))
	}
	return c.generate(ctx, prompt, encoded, opt)
}

func (c *Client) generate(ctx context.Context, prompt string, images []string, opt Options) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Images: images,
		Options: generateOptions{
			Temperature: opt.Temperature,
			TopP:        opt.TopP,
			NumPredict:  opt.NumPredict,
		},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal generate request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create generate request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "completion request failed", goerr.V("model", c.model))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", goerr.New("completion server returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("model", c.model),
			goerr.V("body", string(raw)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", goerr.Wrap(err, "failed to decode generate response")
	}

	return trim(out.Response), nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Tags lists the model names the server has available, used for the startup
// check.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create tags request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "tags request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("tags endpoint returned error", goerr.V("status", resp.StatusCode))
	}

	var out tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, goerr.Wrap(err, "failed to decode tags response")
	}

	names := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func trim(s string) string {
	start := 0
	end := len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
