// Package imghost wraps the third-party image hosting API used for avatars.
package imghost

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Client wraps interactions with the image host upload API.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	folder     string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    "avatars",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

// Upload pushes image bytes to the host and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	publicID := fmt.Sprintf("%s/%s", c.folder, uuid.NewString())
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return "", err
	}
	fields := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
		"api_key":   c.apiKey,
		"signature": c.sign(publicID, timestamp),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/image/upload", c.baseURL), body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", err
	}
	if uploaded.SecureURL == "" {
		return "", fmt.Errorf("image host returned no url for %s", publicID)
	}
	return uploaded.SecureURL, nil
}

// sign computes the request signature the upload API expects: the sha1 of the
// sorted parameter string followed by the API secret.
func (c *Client) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.apiSecret)
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
