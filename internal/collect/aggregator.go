package collect

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/config"
)

// Aggregator runs a set of collectors and merges their output. It guarantees
// a non-empty result by falling back to the built-in sample corpus when every
// configured source fails or is disabled.
type Aggregator struct {
	collectors []Collector
	fallback   Collector
	logger     *zap.Logger
}

// NewAggregator builds an aggregator from configuration, wiring up one
// collector per enabled source.
func NewAggregator(cfg *config.CollectorsConfig, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	var collectors []Collector
	if cfg.UseDataDragon {
		collectors = append(collectors,
			NewDataDragonCollector(cfg.DataDragonVersion, cfg.DataDragonLanguage, logger))
	}
	if cfg.UseWikiScrape {
		collectors = append(collectors, NewWikiCollector(cfg.WikiBaseURL, logger))
	}
	if cfg.UseRiotAPI {
		collectors = append(collectors,
			NewRiotAPICollector(cfg.RiotAPIKey.Value(), cfg.RiotAPIRegion, logger))
	}
	if cfg.UseSampleData {
		collectors = append(collectors, NewSampleCollector())
	}

	return &Aggregator{
		collectors: collectors,
		fallback:   NewSampleCollector(),
		logger:     logger,
	}
}

// NewAggregatorFrom builds an aggregator over explicit collectors. Used in
// tests and by callers that construct collectors themselves.
func NewAggregatorFrom(logger *zap.Logger, collectors ...Collector) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		collectors: collectors,
		fallback:   NewSampleCollector(),
		logger:     logger,
	}
}

// Sources returns the names of the configured collectors.
func (a *Aggregator) Sources() []string {
	names := make([]string, len(a.collectors))
	for i, c := range a.collectors {
		names[i] = c.Name()
	}
	return names
}

// Collect runs every configured collector whose name matches the filter and
// merges the results. An empty filter selects all collectors. Collectors that
// fail validation or collection are logged and skipped. The result is never
// empty: when nothing is collected, the sample corpus is returned.
func (a *Aggregator) Collect(ctx context.Context, sources []string) ([]Document, error) {
	var docs []Document

	for _, c := range a.collectors {
		if !sourceSelected(c.Name(), sources) {
			continue
		}
		if err := c.Validate(); err != nil {
			a.logger.Warn("skipping unconfigured collector",
				zap.String("collector", c.Name()), zap.Error(err))
			continue
		}

		collected, err := c.Collect(ctx)
		if err != nil {
			a.logger.Warn("collector failed",
				zap.String("collector", c.Name()), zap.Error(err))
			continue
		}

		a.logger.Info("collected documents",
			zap.String("collector", c.Name()), zap.Int("documents", len(collected)))
		docs = append(docs, collected...)
	}

	if len(docs) == 0 {
		a.logger.Warn("no documents collected, falling back to sample data")
		return a.fallback.Collect(ctx)
	}
	return docs, nil
}

func sourceSelected(name string, sources []string) bool {
	if len(sources) == 0 {
		return true
	}
	for _, s := range sources {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}
