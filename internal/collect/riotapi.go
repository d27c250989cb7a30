package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RiotAPICollector fetches live data from the official Riot API. It currently
// collects the weekly free champion rotation. Requires an API key.
type RiotAPICollector struct {
	apiKey string
	region string
	client *http.Client
	logger *zap.Logger
}

// NewRiotAPICollector creates a collector for the given platform region,
// e.g. "na1" or "euw1".
func NewRiotAPICollector(apiKey, region string, logger *zap.Logger) *RiotAPICollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if region == "" {
		region = "na1"
	}
	return &RiotAPICollector{
		apiKey: apiKey,
		region: region,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Name identifies the source.
func (c *RiotAPICollector) Name() string { return "RiotAPI" }

// Validate checks that an API key is present.
func (c *RiotAPICollector) Validate() error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: riot API key is missing", ErrNotConfigured)
	}
	return nil
}

// Collect fetches the current free champion rotation.
func (c *RiotAPICollector) Collect(ctx context.Context) ([]Document, error) {
	url := fmt.Sprintf("https://%s.api.riotgames.com/lol/platform/v3/champion-rotations", c.region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rotation request: %w", err)
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch champion rotation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch champion rotation: unexpected status %d", resp.StatusCode)
	}

	var rotation struct {
		FreeChampionIDs              []int `json:"freeChampionIds"`
		FreeChampionIDsForNewPlayers []int `json:"freeChampionIdsForNewPlayers"`
		MaxNewPlayerLevel            int   `json:"maxNewPlayerLevel"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rotation); err != nil {
		return nil, fmt.Errorf("decode champion rotation: %w", err)
	}

	content := fmt.Sprintf(`Free Champion Rotation:

This week's free champion IDs: %s
Free champion IDs for new players (up to level %d): %s

Free rotation champions can be played without owning them. The rotation
changes weekly.`,
		joinInts(rotation.FreeChampionIDs),
		rotation.MaxNewPlayerLevel,
		joinInts(rotation.FreeChampionIDsForNewPlayers))

	c.logger.Info("collected free rotation",
		zap.Int("champions", len(rotation.FreeChampionIDs)))

	return []Document{{
		Content: content,
		Metadata: map[string]any{
			MetaType:   "rotation",
			MetaSource: "riot_api",
			"region":   c.region,
		},
	}}, nil
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
