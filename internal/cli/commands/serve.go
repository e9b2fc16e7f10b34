package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dqcheck/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		Long: `Start the HTTP service exposing the rule evaluator.

Endpoints:
  POST /api/v1/check   multipart upload (file, optional rules), returns the report
  GET  /api/v1/checks  registered check metadata
  GET  /api/v1/runs    recent check runs
  GET  /healthz        health probe`,
		Example: `  # Serve on the configured port
  dqcheck serve

  # Serve on port 9000 with a server-side default rules file
  dqcheck serve --port 9000 --rules rules.yaml`,
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringP("rules", "r", "", "Server-side default rules file")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)

	st, err := openStore(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer func() { _ = st.Close() }()

	port := cmdCtx.Cfg.Server.Port
	if p, _ := cmd.Flags().GetInt("port"); p != 0 {
		port = p
	}
	rulesPath := cmdCtx.Cfg.Server.Rules
	if rulesPath == "" {
		rulesPath = cmdCtx.Cfg.Rules
	}
	if rp, _ := cmd.Flags().GetString("rules"); rp != "" {
		rulesPath = rp
	}

	srv := server.New(server.Config{
		Port:           port,
		MaxUploadBytes: cmdCtx.Cfg.Server.MaxUploadBytes,
		RulesPath:      rulesPath,
		Store:          st,
		Logger:         cmdCtx.Logger,
	})

	return srv.Serve(cmd.Context())
}
