package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fizzworks/internal/game"

	"github.com/google/uuid"
)

// Client talks to the fizzworks server API. Mutating calls carry a fresh
// idempotency key so an accidental retry cannot double-apply an intent.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IntentResult is the common envelope every intent endpoint returns.
type IntentResult struct {
	OK    bool           `json:"ok"`
	State game.StateView `json:"state"`
}

func (c *Client) State(ctx context.Context) (game.StateView, error) {
	var out game.StateView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/state", nil, &out, "")
	return out, err
}

func (c *Client) Market(ctx context.Context) (game.MarketView, error) {
	var out game.MarketView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/market", nil, &out, "")
	return out, err
}

func (c *Client) Journal(ctx context.Context, limit int) ([]game.JournalEntry, error) {
	var out struct {
		Entries []game.JournalEntry `json:"entries"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/journal?limit=%d", limit), nil, &out, "")
	return out.Entries, err
}

func (c *Client) BuySupplies(ctx context.Context, kind string, quantity int64) (IntentResult, error) {
	return c.intent(ctx, "/v1/supplies/buy", map[string]any{"kind": kind, "quantity": quantity})
}

func (c *Client) ActivateFlavor(ctx context.Context, flavorID string) (IntentResult, error) {
	return c.intent(ctx, "/v1/flavor/activate", map[string]any{"flavor_id": flavorID})
}

func (c *Client) SetPrice(ctx context.Context, priceMicros int64) (IntentResult, error) {
	return c.intent(ctx, "/v1/flavor/price", map[string]any{"price_micros": priceMicros})
}

func (c *Client) ActivateFormat(ctx context.Context, formatID string) (IntentResult, error) {
	return c.intent(ctx, "/v1/format/activate", map[string]any{"format_id": formatID})
}

func (c *Client) BuyUpgrade(ctx context.Context, upgradeID string) (IntentResult, error) {
	return c.intent(ctx, "/v1/upgrades/buy", map[string]any{"upgrade_id": upgradeID})
}

func (c *Client) BuyEquipment(ctx context.Context, equipmentID string) (IntentResult, error) {
	return c.intent(ctx, "/v1/equipment/buy", map[string]any{"equipment_id": equipmentID})
}

func (c *Client) StartMission(ctx context.Context, missionID string) (IntentResult, error) {
	return c.intent(ctx, "/v1/missions/start", map[string]any{"mission_id": missionID})
}

func (c *Client) ClaimMission(ctx context.Context) (IntentResult, error) {
	return c.intent(ctx, "/v1/missions/claim", map[string]any{})
}

func (c *Client) BuyPrestigeNode(ctx context.Context, nodeID string) (IntentResult, error) {
	return c.intent(ctx, "/v1/prestige/nodes/buy", map[string]any{"node_id": nodeID})
}

func (c *Client) PrestigeReset(ctx context.Context) (IntentResult, error) {
	return c.intent(ctx, "/v1/prestige/reset", map[string]any{})
}

func (c *Client) HardReset(ctx context.Context) (IntentResult, error) {
	return c.intent(ctx, "/v1/reset", map[string]any{})
}

func (c *Client) intent(ctx context.Context, path string, body map[string]any) (IntentResult, error) {
	var out IntentResult
	err := c.jsonRequest(ctx, http.MethodPost, path, body, &out, uuid.NewString())
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return fmt.Errorf("api status %d: %s", resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
