package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/keytutor/internal/config"
	"github.com/verte-zerg/keytutor/internal/generator"
	"github.com/verte-zerg/keytutor/internal/lessons"
	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/session"
	"github.com/verte-zerg/keytutor/internal/stats"
	"github.com/verte-zerg/keytutor/internal/tui"
	"github.com/verte-zerg/keytutor/internal/wordlist"
)

const (
	customDuration = 300
	customMinChars = 10
)

var errCustomTooShort = fmt.Errorf("custom text must be at least %d characters", customMinChars)

var (
	testMinutes  int
	testWords    int
	testCaps     float64
	testPunct    float64
	testPunctSet string
	testWordList string

	customFile string
)

func addTestFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&testMinutes, "duration", config.DefaultTestMinutes, "test length in minutes (1, 2 or 5)")
	cmd.Flags().IntVar(&testWords, "words", config.DefaultWords, "words per text")
	cmd.Flags().Float64Var(&testCaps, "caps", config.DefaultCaps, "probability of capitalized first letter (0-1)")
	cmd.Flags().Float64Var(&testPunct, "punct", config.DefaultPunct, "punctuation probability per word (0-1)")
	cmd.Flags().StringVar(&testPunctSet, "punct-set", config.DefaultPunctSet, "punctuation set")
	cmd.Flags().StringVar(&testWordList, "wordlist", "", "word list file, one word per line")
}

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run a timed typing test",
		Args:  cobra.NoArgs,
		RunE:  runTestCmd,
	}
	addTestFlags(cmd)
	return cmd
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "duration", &testMinutes, fileCfg.Practice.Duration)
	applyIntConfig(cmd, "words", &testWords, fileCfg.Practice.Words)
	applyFloatConfig(cmd, "caps", &testCaps, fileCfg.Practice.CapsPct)
	applyFloatConfig(cmd, "punct", &testPunct, fileCfg.Practice.PunctPct)
	applyStringConfig(cmd, "punct-set", &testPunctSet, fileCfg.Practice.PunctSet)
	applyStringConfig(cmd, "wordlist", &testWordList, fileCfg.Practice.WordList)

	cfg := model.Config{
		Duration: testMinutes,
		Words:    testWords,
		CapsPct:  testCaps,
		PunctPct: testPunct,
		PunctSet: testPunctSet,
		WordList: testWordList,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	words := generator.CommonWords
	if cfg.WordList != "" {
		words, err = wordlist.LoadWords(cfg.WordList, wordlist.Typeable)
		if err != nil {
			return fmt.Errorf("failed to load word list %s: %w", cfg.WordList, err)
		}
	}
	text := generator.New().Generate(words, cfg.Words, generator.Options{
		CapsPct:  cfg.CapsPct,
		PunctPct: cfg.PunctPct,
		PunctSet: []rune(cfg.PunctSet),
	})

	return runSession(cmd, fileCfg, tui.Options{
		Title: fmt.Sprintf("Typing test (%d min)", cfg.Duration),
		Kind:  model.KindTest,
		Lesson: session.Lesson{
			Words:    text,
			Duration: cfg.Duration * 60,
			Mode:     session.ModeFreeText,
			Loop:     true,
		},
	})
}

func validateConfig(cfg model.Config) error {
	switch cfg.Duration {
	case 1, 2, 5:
	default:
		return fmt.Errorf("--duration must be 1, 2 or 5")
	}
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctPct > 0 && cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	return nil
}

func newLessonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lesson <id>",
		Short: "Run a lesson exercise",
		Args:  cobra.ExactArgs(1),
		RunE:  runLessonCmd,
	}
}

func runLessonCmd(cmd *cobra.Command, args []string) error {
	catalog, err := lessons.Load()
	if err != nil {
		return err
	}
	sub, parent, ok := catalog.Find(args[0])
	if !ok {
		return fmt.Errorf("unknown lesson %q (run: keytutor lessons)", args[0])
	}
	lesson, err := sub.Session()
	if errors.Is(err, lessons.ErrNotTypeable) {
		return printTheory(cmd.OutOrStdout(), parent, sub)
	}
	if err != nil {
		return err
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	return runSession(cmd, fileCfg, tui.Options{
		Title:    fmt.Sprintf("Lesson %s: %s", sub.ID, sub.Title),
		Kind:     model.KindLesson,
		LessonID: sub.ID,
		Lesson:   lesson,
	})
}

func printTheory(w io.Writer, parent lessons.Lesson, sub lessons.SubLesson) error {
	if _, err := fmt.Fprintf(w, "%s\n%s: %s\n\n%s\n", parent.Title, sub.ID, sub.Title, strings.TrimSpace(sub.Content)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newCustomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custom [text...]",
		Short: "Type your own text",
		Long:  "Type your own text once through. Text is taken from arguments, --file or stdin.",
		RunE:  runCustomCmd,
	}
	cmd.Flags().StringVar(&customFile, "file", "", "read text from file")
	return cmd
}

func runCustomCmd(cmd *cobra.Command, args []string) error {
	var stdin io.Reader
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		stdin = cmd.InOrStdin()
	}
	text, err := readCustomText(args, customFile, stdin)
	if err != nil {
		return err
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	return runSession(cmd, fileCfg, tui.Options{
		Title: "Custom text",
		Kind:  model.KindCustom,
		Lesson: session.Lesson{
			Words:    lessons.Tokenize(text),
			Duration: customDuration,
			Mode:     session.ModeFreeText,
		},
	})
}

// readCustomText picks the text source: arguments, then file, then stdin.
func readCustomText(args []string, path string, stdin io.Reader) (string, error) {
	var text string
	switch {
	case len(args) > 0:
		text = strings.Join(args, " ")
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(data)
	case stdin != nil:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("no text given (pass it as arguments, --file or stdin)")
	}
	text = strings.Join(lessons.Tokenize(text), " ")
	if utf8.RuneCountInString(text) < customMinChars {
		return "", errCustomTooShort
	}
	return text, nil
}

// runSession hosts one typing view until the user quits.
func runSession(cmd *cobra.Command, fileCfg config.FileConfig, opts tui.Options) error {
	opts.Display = displayConfig(cmd, fileCfg)

	log, err := newLogger(fileCfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	history, err := st.ListResults(context.Background(), model.ResultFilter{Kind: opts.Kind})
	if err != nil {
		logErrf("failed to load history: %v\n", err)
	}
	opts.History = history
	opts.Recorder = st
	opts.Logger = log
	if client := newSyncClient(fileCfg); client.Enabled() {
		opts.Uploader = client
	}

	m, err := tui.NewModel(opts)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if r, ok := m.Result(); ok {
		return printResult(cmd.OutOrStdout(), r)
	}
	return nil
}

func printResult(w io.Writer, r model.Result) error {
	_, err := fmt.Fprintf(w, "%d WPM  %d%% accuracy  %d mistakes  %s\n",
		r.WPM, r.Accuracy, r.Mistakes, stats.FormatClock(r.Elapsed))
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
