package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"glbview/internal/registry"
	"glbview/pkg/types"
)

// Lister is the discovery query consumed by the controller.
type Lister interface {
	ListModels(ctx context.Context) ([]types.ModelDescriptor, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(ctx context.Context) ([]types.ModelDescriptor, error)

func (f ListerFunc) ListModels(ctx context.Context) ([]types.ModelDescriptor, error) { return f(ctx) }

// RegistryLister queries the in-process directory service. It never fails.
type RegistryLister struct {
	Service *registry.Service
}

func (l RegistryLister) ListModels(ctx context.Context) ([]types.ModelDescriptor, error) {
	return l.Service.ListModels(), nil
}

// Client is a typed HTTP client for a remote glbview server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given server URL. A nil httpClient uses
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// ListModels fetches GET /api/models. Relative model URLs are returned as
// served; callers resolve them against the base URL when needed.
func (c *Client) ListModels(ctx context.Context) ([]types.ModelDescriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var out types.ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Models == nil {
		out.Models = []types.ModelDescriptor{}
	}
	return out.Models, nil
}
