package insight

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/pricecorr-cli/internal/correlate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		pct  float64
		want Bucket
	}{
		{100, StrongPositive},
		{70.0001, StrongPositive},
		{70, ModeratePositive},
		{30.0001, ModeratePositive},
		{30, Neutral},
		{0, Neutral},
		{-30, Neutral},
		{-30.0001, ModerateNegative},
		{-70, ModerateNegative},
		{-70.0001, StrongNegative},
		{-100, StrongNegative},
		{math.NaN(), Neutral},
		{math.Inf(1), StrongPositive},
		{math.Inf(-1), StrongNegative},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.pct), "Classify(%v)", tc.pct)
	}
}

// Every value falls in exactly one bucket and buckets are ordered along the line.
func TestClassifyPartitionsLine(t *testing.T) {
	order := map[Bucket]int{StrongNegative: 0, ModerateNegative: 1, Neutral: 2, ModeratePositive: 3, StrongPositive: 4}
	prev := order[Classify(-150)]
	for x := -150.0; x <= 150; x += 0.01 {
		cur := order[Classify(x)]
		require.GreaterOrEqual(t, cur, prev, "bucket order broken at %v", x)
		require.LessOrEqual(t, cur-prev, 1, "bucket skipped at %v", x)
		prev = cur
	}
}

func TestBucketText(t *testing.T) {
	assert.Equal(t, "strong_negative", StrongNegative.String())
	assert.Equal(t, "neutral", Neutral.String())
	assert.Equal(t, "Moderate positive correlation.", ModeratePositive.Label())
	assert.Equal(t, "Little to no correlation.", Neutral.Label())
}

func TestSummarizeEmpty(t *testing.T) {
	rep := Summarize(nil)
	assert.Equal(t, NoPriceColumnsText, rep.Insights)
	assert.Equal(t, &Report{Insights: NoPriceColumnsText}, rep, "all other fields are zero")
	assert.Equal(t, rep, Summarize(correlate.Result{}))
}

func TestSummarizeCounts(t *testing.T) {
	res := correlate.Result{
		{Key: "A-B", Value: 85},
		{Key: "A-C", Value: 45.5},
		{Key: "A-D", Value: 0},
		{Key: "A-E", Value: -50},
		{Key: "A-F", Value: -99.999},
	}
	rep := Summarize(res)
	assert.Equal(t, 5, rep.TotalCorrelations)
	assert.Equal(t, 1, rep.StrongPositive)
	assert.Equal(t, 1, rep.ModeratePositive)
	assert.Equal(t, 1, rep.NoCorrelation)
	assert.Equal(t, 1, rep.ModerateNegative)
	assert.Equal(t, 1, rep.StrongNegative)
	assert.Equal(t, rep.TotalCorrelations,
		rep.StrongPositive+rep.ModeratePositive+rep.NoCorrelation+rep.ModerateNegative+rep.StrongNegative)
	assert.InDelta(t, 40, rep.PositivePercentage, 1e-9)
	assert.InDelta(t, 40, rep.NegativePercentage, 1e-9)
	assert.Empty(t, rep.GraphURL)

	for _, s := range []string{
		"**Correlation Insights:**\n\n",
		"- **Positive Correlations**: 2 fields (40.00%)\n",
		"- **Negative Correlations**: 2 fields (40.00%)\n\n",
		"- **A-B**: 85.00% (Strong positive correlation.)\n",
		"- **A-F**: -100.00% (Strong negative correlation.)\n",
		"- **A-D**: 0.00% (Little to no correlation.)\n",
		"**Summary:**\n- Total Correlations: 5\n",
		"- Little to No Correlations: 1\n",
	} {
		assert.Contains(t, rep.Insights, s)
	}
}

func TestMarkdown(t *testing.T) {
	rep := Summarize(correlate.Result{{Key: "X-Y", Value: -80}})
	md := rep.Markdown()
	assert.True(t, strings.HasPrefix(md, "[CORRELATION REPORT]\n**Correlation Insights:**"))
	assert.NotContains(t, md, "Graph:")

	rep.GraphURL = "/graphs/correlations.html"
	assert.Contains(t, rep.Markdown(), "\nGraph: /graphs/correlations.html\n")
}
