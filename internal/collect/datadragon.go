package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ddragonVersionsURL = "https://ddragon.leagueoflegends.com/api/versions.json"
	ddragonDataURL     = "https://ddragon.leagueoflegends.com/cdn/%s/data/%s/champion.json"

	// fallbackVersion is used when the versions endpoint is unreachable.
	fallbackVersion = "14.1.1"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// DataDragonCollector fetches champion data from Riot's Data Dragon CDN.
// Data Dragon requires no API key.
type DataDragonCollector struct {
	version  string
	language string
	client   *http.Client
	logger   *zap.Logger
}

// NewDataDragonCollector creates a collector for the given patch version and
// locale. An empty version means "latest", resolved at collect time.
func NewDataDragonCollector(version, language string, logger *zap.Logger) *DataDragonCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if language == "" {
		language = "en_US"
	}
	return &DataDragonCollector{
		version:  version,
		language: language,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

// Name identifies the source.
func (c *DataDragonCollector) Name() string { return "DataDragon" }

// Validate always succeeds; Data Dragon is a public CDN.
func (c *DataDragonCollector) Validate() error { return nil }

// resolveVersion returns the configured version, or the latest published
// version. Falls back to a known-good version when the lookup fails.
func (c *DataDragonCollector) resolveVersion(ctx context.Context) string {
	if c.version != "" && c.version != "latest" {
		return c.version
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ddragonVersionsURL, nil)
	if err != nil {
		return fallbackVersion
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("failed to fetch ddragon versions, using fallback",
			zap.String("fallback", fallbackVersion), zap.Error(err))
		return fallbackVersion
	}
	defer resp.Body.Close()

	var versions []string
	if err := json.NewDecoder(resp.Body).Decode(&versions); err != nil || len(versions) == 0 {
		c.logger.Warn("failed to decode ddragon versions, using fallback",
			zap.String("fallback", fallbackVersion), zap.Error(err))
		return fallbackVersion
	}
	return versions[0]
}

// Collect fetches the full champion roster for the resolved patch and renders
// one document per champion.
func (c *DataDragonCollector) Collect(ctx context.Context) ([]Document, error) {
	version := c.resolveVersion(ctx)
	url := fmt.Sprintf(ddragonDataURL, version, c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build champion request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch champion data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch champion data: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode champion data: %w", err)
	}

	docs := make([]Document, 0, len(payload.Data))
	for _, raw := range payload.Data {
		var champ struct {
			Name  string   `json:"name"`
			Title string   `json:"title"`
			Blurb string   `json:"blurb"`
			Tags  []string `json:"tags"`
			Info  struct {
				Attack     int `json:"attack"`
				Defense    int `json:"defense"`
				Magic      int `json:"magic"`
				Difficulty int `json:"difficulty"`
			} `json:"info"`
			Partype string `json:"partype"`
		}
		if err := json.Unmarshal(raw, &champ); err != nil {
			c.logger.Warn("skipping malformed champion entry", zap.Error(err))
			continue
		}

		role := strings.Join(champ.Tags, "/")
		content := fmt.Sprintf(`Champion: %s
Title: %s
Role: %s
Resource: %s

Lore: %s

Ratings: Attack %d/10, Defense %d/10, Magic %d/10, Difficulty %d/10`,
			champ.Name, champ.Title, role, champ.Partype,
			stripHTML(champ.Blurb),
			champ.Info.Attack, champ.Info.Defense, champ.Info.Magic, champ.Info.Difficulty)

		docs = append(docs, Document{
			Content: content,
			Metadata: map[string]any{
				MetaChampion: champ.Name,
				MetaRole:     role,
				MetaType:     "champion",
				MetaSource:   "data_dragon",
				MetaVersion:  version,
			},
		})
	}

	c.logger.Info("collected champion data",
		zap.String("version", version), zap.Int("champions", len(docs)))
	return docs, nil
}

// stripHTML removes markup tags that Data Dragon embeds in descriptions.
func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}
