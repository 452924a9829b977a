// Package remote is the HTTP client for the hosted mirror of the ledger.
// The mirror is a plain REST store: upsert by id, list all. It is an
// availability convenience — the local sqlite store stays authoritative
// and every call here may fail without affecting local operation.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/syndic-app/syndic/internal/domain"
)

const requestTimeout = 15 * time.Second

// Client talks to the remote mirror.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a client for the mirror at baseURL. The api key is sent on
// every request; an empty key sends no auth header.
func New(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// ─── Transactions ───────────────────────────────────────────────────────────

// UpsertTransaction mirrors one ledger row, replacing any remote row with
// the same id.
func (c *Client) UpsertTransaction(ctx context.Context, tx domain.Transaction) error {
	return c.put(ctx, "/transactions/"+tx.ID, transactionToDTO(tx))
}

// ListTransactions fetches the full remote ledger.
func (c *Client) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var dtos []transactionDTO
	if err := c.get(ctx, "/transactions", &dtos); err != nil {
		return nil, err
	}
	txs := make([]domain.Transaction, 0, len(dtos))
	for _, dto := range dtos {
		txs = append(txs, dto.toDomain())
	}
	return txs, nil
}

// ─── Residents ──────────────────────────────────────────────────────────────

// UpsertResident mirrors one resident record.
func (c *Client) UpsertResident(ctx context.Context, r domain.Resident) error {
	return c.put(ctx, "/residents/"+r.ID, residentToDTO(r))
}

// ListResidents fetches all remote resident records.
func (c *Client) ListResidents(ctx context.Context) ([]domain.Resident, error) {
	var dtos []residentDTO
	if err := c.get(ctx, "/residents", &dtos); err != nil {
		return nil, err
	}
	residents := make([]domain.Resident, 0, len(dtos))
	for _, dto := range dtos {
		residents = append(residents, dto.toDomain())
	}
	return residents, nil
}

// ─── Config ─────────────────────────────────────────────────────────────────

// UpsertConfig mirrors the singleton residence config.
func (c *Client) UpsertConfig(ctx context.Context, cfg domain.ResidenceConfig) error {
	return c.put(ctx, "/config/"+cfg.ID, configToDTO(cfg))
}

// GetConfig fetches the remote config. A missing remote config maps to
// domain.ErrConfigNotFound.
func (c *Client) GetConfig(ctx context.Context) (*domain.ResidenceConfig, error) {
	var dto configDTO
	err := c.get(ctx, "/config/"+domain.ConfigID, &dto)
	if err == errNotFound {
		return nil, domain.ErrConfigNotFound
	}
	if err != nil {
		return nil, err
	}
	cfg := dto.toDomain()
	return &cfg, nil
}

// ─── Transport ──────────────────────────────────────────────────────────────

// errNotFound is internal to the transport layer; public methods translate
// it to the matching domain sentinel.
var errNotFound = fmt.Errorf("remote: not found")

func (c *Client) put(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s %s: %w: status %d", req.Method, req.URL.Path, domain.ErrRemoteUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %w: status %d: %s", req.Method, req.URL.Path, domain.ErrRemoteRejected, resp.StatusCode, detail)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
