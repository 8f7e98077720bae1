package charts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtgbinder/mtgbinder/internal/deck"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

func TestRenderDeckCharts(t *testing.T) {
	d := deck.New("user-1", "Burn", "modern")
	d.AddCard(scryfall.Card{ID: "bolt-1", Name: "Lightning Bolt", ManaCost: "{R}", CMC: 1, TypeLine: "Instant"}, 4)
	d.AddCard(scryfall.Card{ID: "mountain-1", Name: "Mountain", TypeLine: "Basic Land"}, 20)

	var buf bytes.Buffer
	require.NoError(t, RenderDeckCharts(&buf, d))

	html := buf.String()
	assert.True(t, strings.Contains(html, "Burn"))
	assert.True(t, strings.Contains(html, "Mana Curve"))
	assert.True(t, strings.Contains(html, "Color Distribution"))
}

func TestColorDistributionSkipsAbsentColors(t *testing.T) {
	stats := deck.Stats{ColorDistribution: map[string]int{"R": 4}}

	pie := ColorDistributionChart(stats, DefaultChartConfig())

	var buf bytes.Buffer
	require.NoError(t, pie.Render(&buf))
	assert.True(t, strings.Contains(buf.String(), "Red"))
	assert.False(t, strings.Contains(buf.String(), "White"))
}
