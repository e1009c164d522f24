package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tutorfeed/internal/feedback"
	"tutorfeed/internal/llm"
	"tutorfeed/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for the web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		provider, err := llm.NewProviderFromEnv(cmd.Context(), st.LLMEvents())
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}
		svc := feedback.NewService(provider, feedback.DefaultConfig())

		srv := server.New(st, svc)
		fmt.Printf("Listening on %s\n", addr)
		return srv.Router().Run(addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
}
