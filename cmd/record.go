package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tutorfeed/internal/feedback"
	"tutorfeed/internal/llm"
	"tutorfeed/internal/store"
)

var recordCmd = &cobra.Command{
	Use:   "record <student name>",
	Short: "Record a class evaluation and generate a feedback report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		student, err := st.Students().FindByName(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintf(out, "Student %q not registered yet.\n", name)
			grade, perr := promptLine(in, out, "Grade (e.g. Middle 2): ")
			if perr != nil {
				return perr
			}
			id, cerr := st.Students().Create(ctx, "", name, grade)
			if cerr != nil {
				return fmt.Errorf("register student: %w", cerr)
			}
			student, err = st.Students().Get(ctx, id)
		}
		if err != nil {
			return fmt.Errorf("look up student: %w", err)
		}

		date, err := resolveDate(cmd)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nClass evaluation for %s (scores 1-5, homework 99 when no assignment)\n\n", student.Name)

		attitude, err := promptScore(in, out, "Class attitude (participation and focus): ", false)
		if err != nil {
			return err
		}
		understanding, err := promptScore(in, out, "Understanding: ", false)
		if err != nil {
			return err
		}
		homework, err := promptScore(in, out, "Homework (99 when no assignment): ", true)
		if err != nil {
			return err
		}
		qa, err := promptScore(in, out, "Q&A interaction: ", false)
		if err != nil {
			return err
		}
		progress, err := promptLine(in, out, "Class material covered: ")
		if err != nil {
			return err
		}
		memo, err := promptLine(in, out, "Notes: ")
		if err != nil {
			return err
		}

		session := feedback.Session{
			Date:          date,
			Attitude:      attitude,
			Understanding: understanding,
			Homework:      homework,
			QA:            qa,
			Progress:      progress,
			Memo:          memo,
		}

		// History before the append is exactly the past records the
		// report compares against.
		past, err := st.Sessions().History(ctx, student.ID)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		sessionID, err := st.Sessions().Append(ctx, student.ID, session)
		if err != nil {
			return fmt.Errorf("record session: %w", err)
		}

		provider, err := llm.NewProviderFromEnv(ctx, st.LLMEvents())
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}
		svc := feedback.NewService(provider, feedback.DefaultConfig())

		fmt.Fprintln(out, "\nGenerating feedback...")
		raw, err := svc.Generate(ctx, student.Info(), session, past)
		if err != nil {
			return err
		}
		sections := feedback.ParseSections(raw)

		if _, err := st.Feedbacks().Save(ctx, sessionID, raw, sections); err != nil {
			return fmt.Errorf("save feedback: %w", err)
		}

		printSections(out, sections)
		return nil
	},
}

func init() {
	recordCmd.Flags().String("date", "", "Class date as YYYY-MM-DD (default: today)")
}

func resolveDate(cmd *cobra.Command) (time.Time, error) {
	s, _ := cmd.Flags().GetString("date")
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return date, nil
}

func promptLine(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err == io.EOF {
		// A final unterminated line is still usable; exhausted input is
		// not, and callers that re-prompt must see it as fatal.
		if line == "" {
			return "", fmt.Errorf("input closed")
		}
		return line, nil
	}
	if err != nil {
		return "", err
	}
	return line, nil
}

// promptScore asks until it gets a score between 1 and 5. With
// allowSentinel the no-assignment value is also accepted.
func promptScore(in *bufio.Reader, out io.Writer, label string, allowSentinel bool) (int, error) {
	for {
		line, err := promptLine(in, out, label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(out, "Please enter a number.")
			continue
		}
		if v >= 1 && v <= 5 {
			return v, nil
		}
		if allowSentinel && v == feedback.ScoreNotApplicable {
			return v, nil
		}
		if allowSentinel {
			fmt.Fprintln(out, "Please enter 1-5, or 99 when there was no assignment.")
		} else {
			fmt.Fprintln(out, "Please enter a score between 1 and 5.")
		}
	}
}

func printSections(out io.Writer, s feedback.Sections) {
	sep := strings.Repeat("─", 50)
	fmt.Fprintln(out)
	if s.Degraded {
		fmt.Fprintln(out, "Warning: the response did not follow the three-section format; showing it as-is.")
	}

	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, "Class improvement")
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, s.Improvement)
	fmt.Fprintln(out)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, "Class attitude")
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, s.Attitude)
	fmt.Fprintln(out)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, "Overall comment")
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, s.Overall)
}
