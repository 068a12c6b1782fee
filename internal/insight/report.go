package insight

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/pricecorr-cli/internal/correlate"
)

// NoPriceColumnsText is the insight returned when nothing could be correlated.
const NoPriceColumnsText = "No price columns detected. Please ensure your data contains relevant pricing fields."

// Report is the outcome of one analysis.
type Report struct {
	Insights           string  `json:"insights" yaml:"insights"`
	GraphURL           string  `json:"graphUrl" yaml:"graph_url"`
	TotalCorrelations  int     `json:"totalCorrelations" yaml:"total_correlations"`
	StrongPositive     int     `json:"strongPositive" yaml:"strong_positive"`
	ModeratePositive   int     `json:"moderatePositive" yaml:"moderate_positive"`
	ModerateNegative   int     `json:"moderateNegative" yaml:"moderate_negative"`
	StrongNegative     int     `json:"strongNegative" yaml:"strong_negative"`
	NoCorrelation      int     `json:"noCorrelation" yaml:"no_correlation"`
	PositivePercentage float64 `json:"positivePercentage" yaml:"positive_percentage"`
	NegativePercentage float64 `json:"negativePercentage" yaml:"negative_percentage"`
}

// Empty returns the degraded report used when no pair could be correlated.
func Empty() *Report {
	return &Report{Insights: NoPriceColumnsText}
}

// Summarize counts buckets and writes the narrative for results. GraphURL is
// left for the caller to fill in.
func Summarize(results correlate.Result) *Report {
	if len(results) == 0 {
		return Empty()
	}
	rep := &Report{TotalCorrelations: len(results)}
	var pos, neg int
	for _, c := range results {
		switch Classify(c.Value) {
		case StrongPositive:
			rep.StrongPositive++
		case ModeratePositive:
			rep.ModeratePositive++
		case ModerateNegative:
			rep.ModerateNegative++
		case StrongNegative:
			rep.StrongNegative++
		default:
			rep.NoCorrelation++
		}
		if c.Value > 0 {
			pos++
		} else if c.Value < 0 {
			neg++
		}
	}
	rep.PositivePercentage = share(pos, rep.TotalCorrelations)
	rep.NegativePercentage = share(neg, rep.TotalCorrelations)
	rep.Insights = narrative(results, rep, pos, neg)
	return rep
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func narrative(results correlate.Result, rep *Report, pos, neg int) string {
	var b strings.Builder
	b.WriteString("**Correlation Insights:**\n\n")
	b.WriteString(fmt.Sprintf("- **Positive Correlations**: %d fields (%.2f%%)\n", pos, rep.PositivePercentage))
	b.WriteString(fmt.Sprintf("- **Negative Correlations**: %d fields (%.2f%%)\n\n", neg, rep.NegativePercentage))
	for _, c := range results {
		b.WriteString(fmt.Sprintf("- **%s**: %.2f%% (%s)\n", c.Key, c.Value, Classify(c.Value).Label()))
	}
	b.WriteString("\n**Summary:**\n")
	b.WriteString(fmt.Sprintf("- Total Correlations: %d\n", rep.TotalCorrelations))
	b.WriteString(fmt.Sprintf("- Strong Positive Correlations: %d\n", rep.StrongPositive))
	b.WriteString(fmt.Sprintf("- Moderate Positive Correlations: %d\n", rep.ModeratePositive))
	b.WriteString(fmt.Sprintf("- Moderate Negative Correlations: %d\n", rep.ModerateNegative))
	b.WriteString(fmt.Sprintf("- Strong Negative Correlations: %d\n", rep.StrongNegative))
	b.WriteString(fmt.Sprintf("- Little to No Correlations: %d\n", rep.NoCorrelation))
	return b.String()
}

// Markdown renders the report for terminals and files.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[CORRELATION REPORT]\n")
	b.WriteString(strings.TrimRight(r.Insights, "\n"))
	b.WriteString("\n")
	if r.GraphURL != "" {
		b.WriteString(fmt.Sprintf("\nGraph: %s\n", r.GraphURL))
	}
	return b.String()
}
