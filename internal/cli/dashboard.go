package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"secagent/internal/dashboard"
	"secagent/internal/logging"
	"secagent/internal/store"
)

func newDashboardCmd() *cobra.Command {
	var (
		addr   string
		dbPath string
		debug  bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the scan history dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logging.New(debug, false)
			if err != nil {
				return err
			}
			defer log.Sync()

			st, err := store.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := dashboard.New(st, log)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	cmd.Flags().StringVar(&dbPath, "db", "secagent.db", "Scan history database path")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}
