package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://vendor.airbillspay.com"

// Client wraps the airtime relayer's HTTP API
type Client struct {
	baseURL    string
	secretKey  string
	solscanKey string
	httpClient *http.Client
}

// New creates a relayer client authenticated with the airbills secret key
func New(baseURL, secretKey, solscanKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		secretKey:  secretKey,
		solscanKey: solscanKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendAirtime requests a transaction plan for an airtime gift
func (c *Client) SendAirtime(ctx context.Context, req *AirtimeRequest) (*Plan, error) {
	var plan Plan
	if err := c.do(ctx, http.MethodPost, "/bills/airtime", req, &plan); err != nil {
		return nil, fmt.Errorf("failed to request airtime transaction: %w", err)
	}

	if plan.ID == "" {
		return nil, fmt.Errorf("transaction ID not found in relayer response")
	}

	return &plan, nil
}

// ConfirmAirtimeTransaction asks the relayer whether the off-chain delivery
// for the given plan reference has completed
func (c *Client) ConfirmAirtimeTransaction(ctx context.Context, id string) (*ConfirmResult, error) {
	var result ConfirmResult
	path := fmt.Sprintf("/bills/airtime/%s/confirm", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to confirm airtime transaction: %w", err)
	}

	return &result, nil
}

// do performs an authenticated JSON request against the relayer
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.secretKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
	}
	if c.solscanKey != "" {
		req.Header.Set("X-Solscan-Api-Key", c.solscanKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// apiError extracts the actual error message from an error response body
func apiError(resp *http.Response) error {
	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr == nil && len(bodyBytes) > 0 {
		var errorResp map[string]interface{}
		if jsonErr := json.Unmarshal(bodyBytes, &errorResp); jsonErr == nil {
			if message, ok := errorResp["message"].(string); ok {
				return fmt.Errorf("API error (status %d): %s", resp.StatusCode, message)
			}
			if errors, ok := errorResp["errors"]; ok {
				return fmt.Errorf("API error (status %d): %v", resp.StatusCode, errors)
			}
		}
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return fmt.Errorf("API returned status code %d", resp.StatusCode)
}
