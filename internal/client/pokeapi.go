package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pokedex/catalog/internal/config"
	"pokedex/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// CatalogClient is the remote resource client for the catalog API
type CatalogClient interface {
	// Get issues one GET against the API base and returns the raw body
	Get(ctx context.Context, path string, query map[string]string) ([]byte, error)
	ListItems(ctx context.Context, limit, offset int) (*domain.CatalogPage, error)
	GetDetail(ctx context.Context, idOrName string) (*domain.DetailRecord, error)
	GetSpecies(ctx context.Context, id int) (*domain.Species, error)
	Close() error
}

type pokeAPIClient struct {
	config     config.APIConfig
	baseURL    string
	httpClient *resty.Client
}

func NewCatalogClient(cfg config.APIConfig) CatalogClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	if cfg.Proxy != "" {
		client.SetProxy(cfg.Proxy)
		log.Infof("🔗 Using proxy: %s", cfg.Proxy)
	}

	return &pokeAPIClient{
		config:     cfg,
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (c *pokeAPIClient) Get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")

	req := c.httpClient.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(fullURL)
	if err != nil {
		return nil, &TransportError{URL: fullURL, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &ResponseError{
			URL:        fullURL,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
		}
	}

	log.Debugf("GET %s -> %d", fullURL, resp.StatusCode())
	return resp.Bytes(), nil
}

func (c *pokeAPIClient) ListItems(ctx context.Context, limit, offset int) (*domain.CatalogPage, error) {
	body, err := c.Get(ctx, c.config.ListPath, map[string]string{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog page: %w", err)
	}

	page, err := parseCatalogPage(body, limit, offset)
	if err != nil {
		return nil, err
	}

	log.Debugf("Successfully fetched catalog page limit=%d offset=%d with %d items", limit, offset, len(page.Items))
	return page, nil
}

func (c *pokeAPIClient) GetDetail(ctx context.Context, idOrName string) (*domain.DetailRecord, error) {
	key := strings.TrimSpace(idOrName)
	if key == "" {
		return nil, fmt.Errorf("detail lookup key is empty")
	}

	body, err := c.Get(ctx, c.config.ListPath+"/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch detail for %s: %w", key, err)
	}

	return parseDetail(body)
}

func (c *pokeAPIClient) GetSpecies(ctx context.Context, id int) (*domain.Species, error) {
	body, err := c.Get(ctx, c.config.SpeciesPath+"/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch species for %d: %w", id, err)
	}

	return parseSpecies(body)
}

func (c *pokeAPIClient) Close() error {
	return c.httpClient.Close()
}
