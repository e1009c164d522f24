package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tutorfeed/internal/csvdata"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import sessions from a legacy CSV export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		res, err := csvdata.ImportFile(cmd.Context(), st, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d session(s), registered %d new student(s).\n",
			res.SessionsImported, res.StudentsCreated)
		for _, s := range res.Skipped {
			fmt.Printf("Skipped %v\n", s)
		}
		return nil
	},
}
