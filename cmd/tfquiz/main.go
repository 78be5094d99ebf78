// Package main provides the CLI entrypoint for tfquiz.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tfquiz/internal/api"
	"github.com/verte-zerg/tfquiz/internal/audio"
	"github.com/verte-zerg/tfquiz/internal/config"
	"github.com/verte-zerg/tfquiz/internal/eventlog"
	"github.com/verte-zerg/tfquiz/internal/model"
	"github.com/verte-zerg/tfquiz/internal/stats"
	"github.com/verte-zerg/tfquiz/internal/statsui"
	"github.com/verte-zerg/tfquiz/internal/store"
	"github.com/verte-zerg/tfquiz/internal/tui"
)

const (
	defaultCount       = 5
	defaultType        = string(model.TypeMeme)
	defaultCurveWindow = 10
	defaultAnswerWidth = 40
)

var (
	quizCount   int
	quizType    string
	quizBaseURL string
	quizTimeout time.Duration
	quizTTSLang string
	quizPlayer  string
	quizHistory bool

	historyType        string
	historySince       string
	historyLast        int
	historyCurveWindow int
	historyFormat      string

	sayOut string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tfquiz",
		Short:         "T/F tendency quiz in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runQuizCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&quizCount, "count", defaultCount, "number of questions per session")
	flags.StringVar(&quizType, "type", defaultType, "question source (meme or aiSettings)")
	flags.StringVar(&quizBaseURL, "base-url", api.DefaultBaseURL, "quiz service base URL")
	flags.DurationVar(&quizTimeout, "timeout", 0, "per-request timeout (0 waits indefinitely)")
	flags.StringVar(&quizTTSLang, "tts-lang", api.DefaultTTSLang, "text-to-speech language")
	flags.StringVar(&quizPlayer, "player", audio.DefaultPlayer, "audio player command")
	rootCmd.Flags().BoolVar(&quizHistory, "history", true, "record completed sessions")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newQuestionsCmd())
	rootCmd.AddCommand(newTranscribeCmd())
	rootCmd.AddCommand(newSayCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := eventlog.Open(config.DefaultEventLogPath())
	if err != nil {
		logErrf("failed to open event log: %v\n", err)
		logger = eventlog.Discard()
	} else {
		defer func() {
			if cerr := closer.Close(); cerr != nil {
				logErrf("failed to close event log: %v\n", cerr)
			}
		}()
	}

	opts := tui.Options{
		Config:  cfg,
		Service: api.NewClient(cfg.BaseURL, cfg.Timeout),
		Logger:  logger,
	}

	if cfg.History {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		opts.History = st
	}

	player, err := audio.NewPlayer(cfg.Player)
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(player.Command()[0]); err != nil {
		logger.Warn("audio player not found, speech disabled", "player", cfg.Player, "error", err)
	} else {
		opts.Player = player
	}

	quiz := tui.NewModel(opts)
	defer quiz.Close()
	program := tea.NewProgram(quiz, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newQuestionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "Fetch and print a question batch",
		Args:  cobra.NoArgs,
		RunE:  runQuestionsCmd,
	}
}

func runQuestionsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	client := api.NewClient(cfg.BaseURL, cfg.Timeout)
	if cfg.Type.ShowsLoading() {
		logErrln("Generating questions...")
	}
	batch, err := client.Questions(cmd.Context(), cfg.Count)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	if batch.Source != "" {
		logErrf("Source: %s\n", batch.Source)
	}
	for i, q := range batch.Questions {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, q); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newTranscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe a recorded answer clip",
		Args:  cobra.ExactArgs(1),
		RunE:  runTranscribeCmd,
	}
}

func runTranscribeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	clip, err := audio.LoadClip(args[0])
	if err != nil {
		return err
	}
	text, err := api.NewClient(cfg.BaseURL, cfg.Timeout).Transcribe(cmd.Context(), clip)
	if err != nil {
		return fmt.Errorf("failed to transcribe clip: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "say <text>",
		Short: "Synthesize speech and play or save it",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSayCmd,
	}
	cmd.Flags().StringVar(&sayOut, "out", "", "write audio to file instead of playing it")
	return cmd
}

func runSayCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("text must not be empty")
	}
	data, err := api.NewClient(cfg.BaseURL, cfg.Timeout).Speak(cmd.Context(), text, cfg.TTSLang)
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if sayOut != "" {
		if err := audio.Save(sayOut, data); err != nil {
			return err
		}
		logErrf("Wrote %s\n", sayOut)
		return nil
	}
	player, err := audio.NewPlayer(cfg.Player)
	if err != nil {
		return err
	}
	return player.Play(cmd.Context(), data)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show session history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyType, "type", "", "question type filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&historyCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&historyFormat, "format", "", "print a report instead of the TUI (text, json, yaml)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildHistoryConfig()
	if err != nil {
		return err
	}
	format := strings.ToLower(strings.TrimSpace(historyFormat))
	switch format {
	case "", "text", "json", "yaml":
	default:
		return fmt.Errorf("--format must be text, json or yaml")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if format == "" {
		program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return writeReport(cmd.OutOrStdout(), report, format)
}

func buildHistoryConfig() (model.HistoryConfig, error) {
	cfg := model.HistoryConfig{
		Last:        historyLast,
		CurveWindow: historyCurveWindow,
	}
	if t := strings.TrimSpace(historyType); t != "" {
		parsed, err := model.ParseQuestionType(t)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --type value: %w", err)
		}
		cfg.Type = string(parsed)
	}
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if cfg.Last < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if cfg.CurveWindow <= 0 {
		return model.HistoryConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	return cfg, nil
}

func writeReport(w io.Writer, report stats.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	}

	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderLabelTable(w, report.Sessions); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report.Sessions, report.CurveWindow); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return stats.RenderAnswerTable(w, report.Answers, defaultAnswerWidth)
}

// resolveConfig merges flags over environment, config file and defaults.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	if err := config.LoadEnvFiles(".env", config.DefaultEnvPath()); err != nil {
		return model.Config{}, err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg, err = config.ApplyEnv(fileCfg, os.LookupEnv)
	if err != nil {
		return model.Config{}, err
	}
	return mergeConfig(cmd, fileCfg)
}

func mergeConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, error) {
	applyIntConfig(cmd, "count", &quizCount, fileCfg.Quiz.Count)
	applyStringConfig(cmd, "type", &quizType, fileCfg.Quiz.Type)
	applyStringConfig(cmd, "base-url", &quizBaseURL, fileCfg.Service.BaseURL)
	if err := applyDurationConfig(cmd, "timeout", &quizTimeout, fileCfg.Service.Timeout); err != nil {
		return model.Config{}, err
	}
	applyStringConfig(cmd, "tts-lang", &quizTTSLang, fileCfg.Speech.Lang)
	applyStringConfig(cmd, "player", &quizPlayer, fileCfg.Speech.Player)
	applyBoolConfig(cmd, "history", &quizHistory, fileCfg.History.Enabled)

	qt, err := model.ParseQuestionType(quizType)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid --type value: %w", err)
	}
	cfg := model.Config{
		Count:   quizCount,
		Type:    qt,
		BaseURL: strings.TrimSpace(quizBaseURL),
		Timeout: quizTimeout,
		TTSLang: strings.TrimSpace(quizTTSLang),
		Player:  strings.TrimSpace(quizPlayer),
		History: quizHistory,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
		return nil
	}
	raw := strings.TrimSpace(*value)
	if raw == "" || raw == "0" {
		*target = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, raw, err)
	}
	*target = parsed
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tfquiz configuration
# Uncomment a value to enable it. Environment variables (TFQUIZ_*) override
# config values and CLI flags override both.

[quiz]
# count = %d               # Questions per session
# type = %q            # Question source: "meme" or "aiSettings"

[service]
# base-url = %q
# timeout = "0"            # Per-request timeout such as "30s"; "0" waits indefinitely

[speech]
# lang = %q             # Text-to-speech language
# player = %q

[history]
# enabled = true           # Record completed sessions
`,
		defaultCount,
		defaultType,
		api.DefaultBaseURL,
		api.DefaultTTSLang,
		audio.DefaultPlayer,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Count <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("--base-url must not be empty")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("--base-url must be an http(s) URL")
	}
	if cfg.TTSLang == "" {
		return fmt.Errorf("--tts-lang must not be empty")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
