package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tutorfeed/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "tutorfeed",
	Short: "AI feedback reports for tutoring sessions",
	Long:  "Tutorfeed records per-class evaluation scores and drafts parent-facing progress reports with an LLM.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TUTORFEED_DB env var)")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(studentsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then TUTORFEED_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore resolves the database path and opens the store.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath)
}
