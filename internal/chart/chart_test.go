package chart

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFigureSplitsBySign(t *testing.T) {
	f := BuildFigure([]Point{
		{PairKey: "A-B", CorrelationPct: 80},
		{PairKey: "A-C", CorrelationPct: -40},
		{PairKey: "A-D", CorrelationPct: 0},
	})
	require.Len(t, f.Data, 2)
	pos, neg := f.Data[0], f.Data[1]
	assert.Equal(t, []string{"A-B", "A-C", "A-D"}, pos.X)
	assert.Equal(t, []float64{80, 0, 0}, pos.Y)
	assert.Equal(t, []float64{0, 40, 0}, neg.Y)
	assert.Equal(t, "green", pos.Marker["color"])
	assert.Equal(t, "red", neg.Marker["color"])
	assert.Equal(t, "group", f.Layout.BarMode)
}

func TestDocumentEscapesKeys(t *testing.T) {
	doc, err := Document([]Point{{PairKey: "</script><b>", CorrelationPct: 10}})
	require.NoError(t, err)
	s := string(doc)
	assert.Contains(t, s, "Plotly.newPlot")
	assert.NotContains(t, s, "</script><b>")
}

func TestHTMLRendererWritesDocument(t *testing.T) {
	dir := t.TempDir()
	r := HTMLRenderer{Dir: dir}
	url, err := r.Render(context.Background(), []Point{{PairKey: "BTC-ETH", CorrelationPct: 55}})
	require.NoError(t, err)
	assert.Equal(t, "/graphs/correlations.html", url)
	assert.Equal(t, filepath.Join(dir, "graphs", "correlations.html"), r.Path())

	b, err := os.ReadFile(r.Path())
	require.NoError(t, err)
	assert.Contains(t, string(b), "BTC-ETH")

	entries, err := os.ReadDir(filepath.Dir(r.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestHTMLRendererConcurrent(t *testing.T) {
	r := HTMLRenderer{Dir: t.TempDir()}
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Render(context.Background(), []Point{{PairKey: "A-B", CorrelationPct: 1}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	b, err := os.ReadFile(r.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(b)), "</html>"))
}

func TestRenderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := HTMLRenderer{Dir: t.TempDir()}.Render(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)

	url, err := NopRenderer{}.Render(context.Background(), []Point{{PairKey: "x"}})
	assert.NoError(t, err)
	assert.Empty(t, url)
}
