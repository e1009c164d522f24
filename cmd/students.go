package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Manage registered students",
}

var studentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered students",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		students, err := st.Students().List(ctx)
		if err != nil {
			return fmt.Errorf("list students: %w", err)
		}
		if len(students) == 0 {
			fmt.Println("No students registered yet.")
			return nil
		}

		fmt.Printf("%-20s  %-10s  %s\n", "Name", "Grade", "Sessions")
		for _, s := range students {
			n, err := st.Sessions().Count(ctx, s.ID)
			if err != nil {
				return fmt.Errorf("count sessions: %w", err)
			}
			fmt.Printf("%-20s  %-10s  %d\n", s.Name, s.Grade, n)
		}
		return nil
	},
}

var studentsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a new student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetString("grade")
		if grade == "" {
			return fmt.Errorf("--grade is required")
		}

		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		if _, err := st.Students().Create(cmd.Context(), "", args[0], grade); err != nil {
			return fmt.Errorf("register student: %w", err)
		}
		fmt.Printf("Registered %s (%s).\n", args[0], grade)
		return nil
	},
}

func init() {
	studentsAddCmd.Flags().String("grade", "", "Student grade, e.g. \"Middle 2\"")

	studentsCmd.AddCommand(studentsListCmd)
	studentsCmd.AddCommand(studentsAddCmd)
}
