package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keytutor/internal/certificate"
	"github.com/verte-zerg/keytutor/internal/config"
	"github.com/verte-zerg/keytutor/internal/lessons"
	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/stats"
	"github.com/verte-zerg/keytutor/internal/statsui"
)

const defaultCurveWindow = 5

var (
	lessonsFind string

	statsKind        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	resetYes bool

	certName string
	certOut  string
)

func newLessonsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "List lessons and completion",
		Args:  cobra.NoArgs,
		RunE:  runLessonsCmd,
	}
	cmd.Flags().StringVar(&lessonsFind, "find", "", "fuzzy search lesson titles")
	return cmd
}

func runLessonsCmd(cmd *cobra.Command, _ []string) error {
	catalog, err := lessons.Load()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	completed, err := st.CompletedLessons(context.Background())
	if err != nil {
		return err
	}
	if lessonsFind != "" {
		return writeMatches(cmd.OutOrStdout(), catalog.Search(lessonsFind), completed)
	}
	return writeLessonList(cmd.OutOrStdout(), catalog, completed)
}

func completionMark(sub lessons.SubLesson, completed map[string]bool) string {
	switch {
	case !sub.Typeable():
		return " "
	case completed[sub.ID]:
		return "✓"
	default:
		return "·"
	}
}

func writeLessonList(w io.Writer, catalog *lessons.Catalog, completed map[string]bool) error {
	bw := bufio.NewWriter(w)
	for i, l := range catalog.Lessons {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "%d. %s (%d%%)\n", l.ID, l.Title, l.Progress(completed))
		for _, s := range l.Subs {
			fmt.Fprintf(bw, "  %s %-5s %-32s %-10s %s\n", completionMark(s, completed), s.ID, s.Title, s.Kind, s.DurationLabel())
		}
	}
	done, total, percent := stats.CourseProgress(catalog, completed)
	fmt.Fprintf(bw, "\nCourse progress: %d/%d (%d%%)\n", done, total, percent)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeMatches(w io.Writer, matches []lessons.Match, completed map[string]bool) error {
	if len(matches) == 0 {
		if _, err := fmt.Fprintln(w, "No matching lessons."); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	bw := bufio.NewWriter(w)
	for _, m := range matches {
		fmt.Fprintf(bw, "%s %-5s %s / %s\n", completionMark(m.Sub, completed), m.Sub.ID, m.Lesson.Title, m.Sub.Title)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsKind, "type", "", "result type filter (lesson, test or custom)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N results")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func statsFilter() (model.ResultFilter, error) {
	filter := model.ResultFilter{Last: statsLast}
	switch kind := strings.ToLower(strings.TrimSpace(statsKind)); kind {
	case "", model.KindLesson, model.KindTest, model.KindCustom:
		filter.Kind = kind
	default:
		return filter, fmt.Errorf("--type must be lesson, test or custom")
	}
	if statsLast < 0 {
		return filter, fmt.Errorf("--last must be >= 0")
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid --since value: %w", err)
		}
		filter.Since = &parsed
	}
	return filter, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	filter, err := statsFilter()
	if err != nil {
		return err
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be > 0")
	}
	catalog, err := lessons.Load()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if statsPlain {
		report, err := stats.BuildReport(context.Background(), st, filter)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return stats.RenderPlain(cmd.OutOrStdout(), report, catalog, stats.CurveOptions{Window: statsCurveWindow})
	}

	m := statsui.NewModel(st, catalog, statsui.Options{Filter: filter, Window: statsCurveWindow})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear results and completed lessons",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes && !confirm(cmd.InOrStdin(), "Delete all results and lesson progress? [y/N] ") {
		logErrln("Reset cancelled.")
		return nil
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	if err := st.ResetProgress(context.Background()); err != nil {
		return err
	}
	logErrln("Progress reset.")
	return nil
}

func confirm(r io.Reader, prompt string) bool {
	logErrf("%s", prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func newCertificateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificate",
		Short: "Issue a course completion certificate",
		Args:  cobra.NoArgs,
		RunE:  runCertificateCmd,
	}
	cmd.Flags().StringVar(&certName, "name", "", "name printed on the certificate")
	cmd.Flags().StringVar(&certOut, "out", "", "output HTML file (default: data dir)")
	return cmd
}

func runCertificateCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "name", &certName, fileCfg.User.Name)

	catalog, err := lessons.Load()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	completed, err := st.CompletedLessons(ctx)
	if err != nil {
		return err
	}
	if !certificate.CourseComplete(catalog, completed) {
		missing := certificate.Missing(catalog, completed)
		return fmt.Errorf("%w: remaining lessons %s", certificate.ErrIncomplete, strings.Join(missing, ", "))
	}
	results, err := st.ListResults(ctx, model.ResultFilter{})
	if err != nil {
		return err
	}
	cert, err := certificate.Issue(certName, stats.Summarize(results), time.Now())
	if err != nil {
		return fmt.Errorf("%w (use --name or [user] name in config)", err)
	}

	out := certOut
	if out == "" {
		out = filepath.Join(config.DefaultCertificateDir(), certificate.FileName(cert))
	}
	if err := writeCertificate(out, cert); err != nil {
		return err
	}
	if _, err := st.InsertCertificate(ctx, cert); err != nil {
		return err
	}
	logErrf("Wrote %s\n", out)
	return nil
}

func writeCertificate(path string, cert model.Certificate) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create certificate dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close certificate: %w", cerr)
		}
	}()
	bw := bufio.NewWriter(f)
	if err := certificate.RenderHTML(bw, cert); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}
	return nil
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload progress to the sync backend",
		Args:  cobra.NoArgs,
		RunE:  runSyncCmd,
	}
}

func runSyncCmd(_ *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	client := newSyncClient(fileCfg)
	if !client.Enabled() {
		return fmt.Errorf("sync is not configured (set [sync] endpoint and token, see: keytutor config)")
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	progress, err := st.Progress(ctx)
	if err != nil {
		return err
	}
	if err := client.SyncProgress(ctx, progress); err != nil {
		return fmt.Errorf("failed to sync progress: %w", err)
	}
	logErrf("Synced %d results and %d completed lessons.\n", len(progress.Results), len(progress.CompletedLessons))
	return nil
}
