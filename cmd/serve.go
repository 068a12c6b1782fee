package cmd

import (
	"github.com/KaramelBytes/pricecorr-cli/internal/chart"
	"github.com/KaramelBytes/pricecorr-cli/internal/server"
	"github.com/KaramelBytes/pricecorr-cli/internal/service"
	"github.com/spf13/cobra"
)

var (
	srvAddr      string
	srvGraphsDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload API, health, metrics and rendered graphs over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := current()
		addr := c.ListenAddr
		if srvAddr != "" {
			addr = srvAddr
		}
		graphsDir := c.GraphsDir
		if srvGraphsDir != "" {
			graphsDir = srvGraphsDir
		}

		opts := service.Options{StagingDir: c.StagingDir}
		if c.RenderGraphs {
			opts.Renderer = chart.HTMLRenderer{Dir: graphsDir}
		}
		srv := server.New(service.New(opts), server.Options{
			GraphsDir:      graphsDir,
			MaxUploadBytes: int64(c.MaxUploadMB) << 20,
		})
		return server.ListenAndServe(cmd.Context(), addr, srv.Routes())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (overrides config listen_addr)")
	serveCmd.Flags().StringVar(&srvGraphsDir, "graphs-dir", "", "directory that holds graphs/ (overrides config)")
}
