package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// Client uploads image bytes to an imgbb-style host and returns the public
// URL the visual-identification collaborator needs.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	debug      bool
}

// NewClient creates a new image host client
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // uploads are slower than API calls
		},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// SetDebug enables verbose logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// uploadResponse is the wire shape of the upload endpoint
type uploadResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Success bool `json:"success"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload sends image bytes as a multipart form and returns the public URL
func (c *Client) Upload(ctx context.Context, data []byte, fileName string) (string, error) {
	if c.apiKey == "" {
		return "", domain.ErrMissingCredentials
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image payload", domain.ErrInvalidRequest)
	}
	if fileName == "" {
		fileName = "scan.jpg"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", fileName)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	reqURL := fmt.Sprintf("%s/1/upload?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", "PriceLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		if c.debug {
			log.Printf("[UPLOAD] Host error - Status: %d, Body: %s", resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("%w: status %d", domain.ErrUploadFailure, resp.StatusCode)
	}

	var uploadResp uploadResponse
	if err := json.Unmarshal(body, &uploadResp); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if !uploadResp.Success || uploadResp.Data.URL == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrUploadFailure, uploadResp.Error.Message)
	}

	if c.debug {
		log.Printf("[UPLOAD] Image hosted at %s", uploadResp.Data.URL)
	}

	return uploadResp.Data.URL, nil
}
