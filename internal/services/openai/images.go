package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"subburn/internal/services"
)

const maxImageBytes = 32 << 20

// ImageRequest describes a single image generation.
type ImageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	N       int    `json:"n"`
}

// ImageResult is the first image returned by the API.
type ImageResult struct {
	URL           string
	B64JSON       string
	RevisedPrompt string
}

type imageResponse struct {
	Data []struct {
		URL           string `json:"url"`
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// GenerateImage requests one image for req.Prompt. A response with neither a
// URL nor inline data is malformed.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (ImageResult, error) {
	const op = "image generation"
	if err := c.requireKey(op); err != nil {
		return ImageResult{}, err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return ImageResult{}, services.Wrap(services.ErrValidation, "openai", op, "prompt required", nil)
	}
	if req.N <= 0 {
		req.N = 1
	}
	var resp imageResponse
	if _, err := c.postJSON(ctx, op, "images/generations", req, &resp); err != nil {
		return ImageResult{}, err
	}
	if len(resp.Data) == 0 {
		return ImageResult{}, services.Wrap(services.ErrMalformed, "openai", op, "response contained no images", nil)
	}
	first := resp.Data[0]
	if strings.TrimSpace(first.URL) == "" && strings.TrimSpace(first.B64JSON) == "" {
		return ImageResult{}, services.Wrap(services.ErrMalformed, "openai", op, "response contained no image url", nil)
	}
	return ImageResult{URL: first.URL, B64JSON: first.B64JSON, RevisedPrompt: first.RevisedPrompt}, nil
}

// Download fetches url and returns its body. Any failure is reported as
// malformed: the generation already succeeded and is not retried.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	const op = "image download"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrMalformed, "openai", op, "invalid url", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		return nil, services.Wrap(services.ErrMalformed, "openai", op, "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrMalformed, "openai", op, fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrMalformed, "openai", op, "read body", err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrMalformed, "openai", op, "empty body", nil)
	}
	return data, nil
}

// ImageBytes returns the image payload, decoding inline data or downloading
// the URL.
func (c *Client) ImageBytes(ctx context.Context, result ImageResult) ([]byte, error) {
	if b64 := strings.TrimSpace(result.B64JSON); b64 != "" {
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, services.Wrap(services.ErrMalformed, "openai", "image decode", "invalid base64", err)
		}
		return data, nil
	}
	return c.Download(ctx, result.URL)
}
