// Package chart renders correlation results as a bar chart document.
package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"text/template"

	"github.com/KaramelBytes/pricecorr-cli/internal/utils"
)

// Point is one bar group: a pair and its correlation percentage.
type Point struct {
	PairKey        string  `json:"pairKey"`
	CorrelationPct float64 `json:"correlationPct"`
}

// Renderer turns points into a document and returns where it can be fetched.
type Renderer interface {
	Render(ctx context.Context, points []Point) (string, error)
}

// NopRenderer renders nothing and returns an empty URL.
type NopRenderer struct{}

func (NopRenderer) Render(context.Context, []Point) (string, error) { return "", nil }

const (
	// GraphsPath is the URL prefix graphs are served under.
	GraphsPath = "/graphs"
	// FileName is the well-known chart document name.
	FileName = "correlations.html"
)

// HTMLRenderer writes a Plotly grouped bar chart to Dir/graphs/correlations.html.
type HTMLRenderer struct {
	Dir string
}

// Path returns the on-disk location of the chart document.
func (h HTMLRenderer) Path() string {
	return filepath.Join(h.Dir, "graphs", FileName)
}

func (h HTMLRenderer) Render(ctx context.Context, points []Point) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	doc, err := Document(points)
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(filepath.Dir(h.Path())); err != nil {
		return "", fmt.Errorf("create graphs dir: %w", err)
	}
	if err := utils.SafeWriteFile(h.Path(), doc); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	return GraphsPath + "/" + FileName, nil
}

type trace struct {
	X      []string          `json:"x"`
	Y      []float64         `json:"y"`
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Marker map[string]string `json:"marker"`
}

type axis struct {
	Title string `json:"title"`
}

// Figure is the Plotly data/layout pair embedded in the chart page.
type Figure struct {
	Data   []trace `json:"data"`
	Layout struct {
		Title   string `json:"title"`
		BarMode string `json:"barmode"`
		XAxis   axis   `json:"xaxis"`
		YAxis   axis   `json:"yaxis"`
	} `json:"layout"`
}

// BuildFigure lays out positive magnitudes and negative magnitudes as two
// bar series over the pair keys.
func BuildFigure(points []Point) Figure {
	keys := make([]string, len(points))
	pos := make([]float64, len(points))
	neg := make([]float64, len(points))
	for i, p := range points {
		keys[i] = p.PairKey
		if p.CorrelationPct > 0 {
			pos[i] = p.CorrelationPct
		} else if p.CorrelationPct < 0 {
			neg[i] = math.Abs(p.CorrelationPct)
		}
	}
	var f Figure
	f.Data = []trace{
		{X: keys, Y: pos, Name: "Positive Correlation", Type: "bar", Marker: map[string]string{"color": "green"}},
		{X: keys, Y: neg, Name: "Negative Correlation", Type: "bar", Marker: map[string]string{"color": "red"}},
	}
	f.Layout.Title = "Correlation Percentage"
	f.Layout.BarMode = "group"
	f.Layout.XAxis.Title = "Fields"
	f.Layout.YAxis.Title = "Correlation Percentage (%)"
	return f
}

var page = template.Must(template.New("chart").Parse(`<html>
<head>
    <script src='https://cdn.plot.ly/plotly-latest.min.js'></script>
</head>
<body>
    <div id='chart'></div>
    <script>
        var graphData = {{.}};
        Plotly.newPlot('chart', graphData.data, graphData.layout);
    </script>
</body>
</html>
`))

// Document renders the HTML page for points.
func Document(points []Point) ([]byte, error) {
	js, err := json.Marshal(BuildFigure(points))
	if err != nil {
		return nil, fmt.Errorf("marshal chart: %w", err)
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, string(js)); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
