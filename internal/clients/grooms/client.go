// Package grooms provides a client for the external groom roster service.
// The breeding engine only needs a groom's skill bonus and speciality; both
// live in the groom subsystem and are fetched over REST on demand.
package grooms

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Groom is the subset of the roster record the engine consumes
type Groom struct {
	ID         string `json:"id"`
	Bonus      int    `json:"bonus"`
	Speciality string `json:"speciality"`
}

// Client for the groom roster service
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new groom roster client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		log:     log.With().Str("client", "grooms").Logger(),
	}
}

// GetGroom fetches a groom by id
func (c *Client) GetGroom(groomID string) (*Groom, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("groom service URL not configured")
	}

	url := fmt.Sprintf("%s/grooms/%s", c.baseURL, groomID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("groom service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groom service returned status %d", resp.StatusCode)
	}

	var groom Groom
	if err := json.NewDecoder(resp.Body).Decode(&groom); err != nil {
		return nil, fmt.Errorf("failed to decode groom response: %w", err)
	}
	return &groom, nil
}

// GetBonus fetches a groom's bonus, degrading to 0 when the roster service is
// unreachable. Ultra-rare evaluation still works without a bonus, so a dead
// roster service must not block it.
func (c *Client) GetBonus(groomID string) int {
	if groomID == "" {
		return 0
	}

	groom, err := c.GetGroom(groomID)
	if err != nil {
		c.log.Warn().Err(err).Str("groom_id", groomID).Msg("Groom lookup failed, using bonus 0")
		return 0
	}
	return groom.Bonus
}
