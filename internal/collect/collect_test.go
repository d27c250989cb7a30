package collect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCollector struct {
	name        string
	docs        []Document
	collectErr  error
	validateErr error
}

func (s *stubCollector) Name() string    { return s.name }
func (s *stubCollector) Validate() error { return s.validateErr }
func (s *stubCollector) Collect(context.Context) ([]Document, error) {
	return s.docs, s.collectErr
}

func TestSampleCollector(t *testing.T) {
	c := NewSampleCollector()
	require.NoError(t, c.Validate())

	docs, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 8)

	champions := map[string]bool{}
	for _, d := range docs {
		assert.NotEmpty(t, d.Content)
		assert.Equal(t, "sample", d.Metadata[MetaSource])
		if name, ok := d.Metadata[MetaChampion].(string); ok {
			champions[name] = true
			assert.Equal(t, "champion", d.Metadata[MetaType])
		}
	}
	for _, want := range []string{"Ahri", "Yasuo", "Jinx", "Thresh", "Lee Sin"} {
		assert.True(t, champions[want], "missing champion %s", want)
	}
}

func TestAggregatorFallsBackToSampleData(t *testing.T) {
	failing := &stubCollector{name: "DataDragon", collectErr: errors.New("network down")}
	agg := NewAggregatorFrom(zap.NewNop(), failing)

	docs, err := agg.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, docs, "aggregator must never return an empty corpus")
	assert.Equal(t, "sample", docs[0].Metadata[MetaSource])
}

func TestAggregatorSkipsUnconfiguredCollectors(t *testing.T) {
	unconfigured := &stubCollector{
		name:        "RiotAPI",
		validateErr: fmt.Errorf("%w: missing key", ErrNotConfigured),
	}
	healthy := &stubCollector{
		name: "WikiScrape",
		docs: []Document{{Content: "mechanics", Metadata: map[string]any{MetaSource: "wiki"}}},
	}
	agg := NewAggregatorFrom(zap.NewNop(), unconfigured, healthy)

	docs, err := agg.Collect(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "wiki", docs[0].Metadata[MetaSource])
}

func TestAggregatorSourceFilter(t *testing.T) {
	a := &stubCollector{name: "DataDragon", docs: []Document{{Content: "a"}}}
	b := &stubCollector{name: "WikiScrape", docs: []Document{{Content: "b"}}}
	agg := NewAggregatorFrom(zap.NewNop(), a, b)

	docs, err := agg.Collect(context.Background(), []string{"wikiscrape"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0].Content)

	assert.Equal(t, []string{"DataDragon", "WikiScrape"}, agg.Sources())
}

func TestWikiCollectorScrapesContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><script>ignored()</script></head><body>
			<nav>skip this</nav>
			<div class="mw-parser-output">
				<h2>Objectives</h2>
				<p>Dragon grants team-wide buffs.</p>
				<ul><li>Baron Nashor</li></ul>
			</div>
			<footer>skip this too</footer>
		</body></html>`)
	}))
	defer srv.Close()

	c := NewWikiCollector(srv.URL, zap.NewNop())
	require.NoError(t, c.Validate())

	docs, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2) // both pages served by the stub

	assert.Contains(t, docs[0].Content, "Objectives")
	assert.Contains(t, docs[0].Content, "Dragon grants team-wide buffs.")
	assert.Contains(t, docs[0].Content, "Baron Nashor")
	assert.NotContains(t, docs[0].Content, "skip this")
	assert.NotContains(t, docs[0].Content, "ignored()")
	assert.Equal(t, "wiki", docs[0].Metadata[MetaSource])
}

func TestWikiCollectorValidate(t *testing.T) {
	c := NewWikiCollector("", zap.NewNop())
	assert.ErrorIs(t, c.Validate(), ErrNotConfigured)
}

func TestRiotAPICollectorValidate(t *testing.T) {
	c := NewRiotAPICollector("", "na1", zap.NewNop())
	assert.ErrorIs(t, c.Validate(), ErrNotConfigured)

	c = NewRiotAPICollector("RGAPI-test", "na1", zap.NewNop())
	assert.NoError(t, c.Validate())
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Nine-Tailed Fox",
		stripHTML("<b>Nine-Tailed</b> <i>Fox</i>"))
	assert.Equal(t, "plain", stripHTML("plain"))
}
