package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/council/internal/server"
	"github.com/Iron-Ham/council/internal/stats"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the contract analysis HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.logger.Close()

	store := stats.NewStore(a.cfg.Server.StatsFile)
	srv := server.New(a.segmenter, a.driver, store, a.logger)
	return srv.Run(a.cfg.Server.Addr)
}
