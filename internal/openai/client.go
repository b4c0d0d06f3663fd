// Package openai implements the outbound interface to an OpenAI-compatible
// inference service: file registration and multimodal completion.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/leaseguard/leaseguard/internal/domain"
)

// Client talks to the inference service. It implements domain.AssetStore and
// domain.CompletionService.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	model         string
	uploadPurpose string
}

// Config holds client configuration.
type Config struct {
	APIKey        string
	BaseURL       string // Default: https://api.openai.com/v1
	Model         string // Default: chatgpt-4o-latest
	UploadPurpose string // Default: vision
	Timeout       time.Duration
}

// NewClient creates a new inference service client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigError("API key is required", nil)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}

	if cfg.Model == "" {
		cfg.Model = "chatgpt-4o-latest"
	}

	if cfg.UploadPurpose == "" {
		cfg.UploadPurpose = "vision"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		model:         cfg.Model,
		uploadPurpose: cfg.UploadPurpose,
	}, nil
}

// fileResponse is the file store's registration response.
type fileResponse struct {
	ID string `json:"id"`
}

// Register uploads one visual asset to the service's file store and returns
// the opaque handle it assigns.
func (c *Client) Register(ctx context.Context, filename string, data []byte) (domain.AssetReference, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("purpose", c.uploadPurpose); err != nil {
		return domain.AssetReference{}, domain.UpstreamError("failed to build upload request", err)
	}

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return domain.AssetReference{}, domain.UpstreamError("failed to build upload request", err)
	}
	if _, err := fw.Write(data); err != nil {
		return domain.AssetReference{}, domain.UpstreamError("failed to build upload request", err)
	}
	if err := mw.Close(); err != nil {
		return domain.AssetReference{}, domain.UpstreamError("failed to build upload request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return domain.AssetReference{}, domain.UpstreamError("failed to build upload request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.AssetReference{}, domain.UpstreamError(
			fmt.Sprintf("file upload failed (%s)", filename), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return domain.AssetReference{}, domain.UpstreamError(
			fmt.Sprintf("file upload failed (%s): status %d: %s", filename, resp.StatusCode, truncate(respBody, 512)), nil)
	}

	var fr fileResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return domain.AssetReference{}, domain.UpstreamError(
			fmt.Sprintf("file upload failed (%s): malformed response", filename), err)
	}
	if fr.ID == "" {
		return domain.AssetReference{}, domain.UpstreamError(
			fmt.Sprintf("file upload failed (%s): no file id in response", filename), nil)
	}

	return domain.AssetReference{FileID: fr.ID}, nil
}

// contentPart is one element of a multimodal input message.
type contentPart struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	FileID string `json:"file_id,omitempty"`
}

// inputMessage is one message in the completion request.
type inputMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

// completionRequest is the request body of the completion endpoint.
type completionRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
}

// completionResponse is the subset of the response body the pipeline needs.
type completionResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete submits the assembled multimodal request and returns the raw
// textual answer. There is no retry: the caller owns the deadline policy.
func (c *Client) Complete(ctx context.Context, req domain.InferenceRequest) (string, error) {
	content := make([]contentPart, 0, len(req.Assets)+1)
	content = append(content, contentPart{Type: "input_text", Text: req.Instruction})
	for _, asset := range req.Assets {
		content = append(content, contentPart{Type: "input_image", FileID: asset.FileID})
	}

	body, err := json.Marshal(completionRequest{
		Model: c.model,
		Input: []inputMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return "", domain.UpstreamError("failed to marshal completion request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", domain.UpstreamError("failed to build completion request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", domain.UpstreamError("completion request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", domain.UpstreamError(
			fmt.Sprintf("completion request failed: status %d: %s", resp.StatusCode, truncate(respBody, 512)), nil)
	}

	var cr completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", domain.UpstreamError("malformed completion response", err)
	}
	if cr.Error != nil {
		return "", domain.UpstreamError(
			fmt.Sprintf("completion rejected: %s (%s)", cr.Error.Message, cr.Error.Type), nil)
	}

	var sb strings.Builder
	for _, out := range cr.Output {
		if out.Type != "message" {
			continue
		}
		for _, part := range out.Content {
			if part.Type == "output_text" {
				sb.WriteString(part.Text)
			}
		}
	}

	text := sb.String()
	if text == "" {
		return "", domain.UpstreamError("completion response contains no output text", nil)
	}

	return text, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
