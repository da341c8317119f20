// Package main provides the CLI entrypoint for wwpm.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/verte-zerg/wwpm/internal/config"
	"github.com/verte-zerg/wwpm/internal/generator"
	"github.com/verte-zerg/wwpm/internal/leaderboard"
	"github.com/verte-zerg/wwpm/internal/model"
	"github.com/verte-zerg/wwpm/internal/recognize"
	"github.com/verte-zerg/wwpm/internal/stats"
	"github.com/verte-zerg/wwpm/internal/store"
	"github.com/verte-zerg/wwpm/internal/tui"
	"github.com/verte-zerg/wwpm/internal/wordlist"
)

const (
	defaultLang        = "en"
	defaultWords       = 10
	defaultMinLen      = 3
	defaultMaxLen      = 6
	defaultScale       = 6
	defaultEngine      = "gemini"
	defaultTimeout     = 20 * time.Second
	defaultListen      = ":8080"
	defaultCurveWindow = 5
)

var (
	playLang        string
	playWords       int
	playMinLen      int
	playMaxLen      int
	playScale       int
	playDebug       bool
	playEngine      string
	playModel       string
	playProject     string
	playRegion      string
	playOCRURL      string
	playTimeout     time.Duration
	playLeaderboard string

	serveListen string
	serveDB     string

	boardURL string

	statsLang        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
)

var languageNames = map[string]string{
	"en": "English",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"nl": "Dutch",
	"pt": "Portuguese",
	"pl": "Polish",
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wwpm",
		Short:         "Handwriting speed game: written words per minute",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playLang, "lang", defaultLang, "language code (default: en)")
	rootCmd.Flags().IntVar(&playWords, "words", defaultWords, "words per session")
	rootCmd.Flags().IntVar(&playMinLen, "min-len", defaultMinLen, "minimum word length")
	rootCmd.Flags().IntVar(&playMaxLen, "max-len", defaultMaxLen, "maximum word length")
	rootCmd.Flags().IntVar(&playScale, "scale", defaultScale, "pixels per canvas dot in the recognized image")
	rootCmd.Flags().BoolVar(&playDebug, "debug", false, "write a debug log to "+config.DefaultLogPath())
	rootCmd.Flags().StringVar(&playEngine, "recognizer", defaultEngine, "recognition engine: gemini or http")
	rootCmd.Flags().StringVar(&playModel, "model", "", "Gemini model name")
	rootCmd.Flags().StringVar(&playProject, "project", "", "Vertex AI project (uses Application Default Credentials)")
	rootCmd.Flags().StringVar(&playRegion, "region", "", "Vertex AI region")
	rootCmd.Flags().StringVar(&playOCRURL, "ocr-url", "", "endpoint for the http recognizer")
	rootCmd.Flags().DurationVar(&playTimeout, "timeout", defaultTimeout, "recognition timeout")
	rootCmd.Flags().StringVar(&playLeaderboard, "leaderboard", "", "leaderboard service URL (empty: offline)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lang", &playLang, fileCfg.Play.Lang)
	applyIntConfig(cmd, "words", &playWords, fileCfg.Play.Words)
	applyIntConfig(cmd, "min-len", &playMinLen, fileCfg.Play.MinLen)
	applyIntConfig(cmd, "max-len", &playMaxLen, fileCfg.Play.MaxLen)
	applyIntConfig(cmd, "scale", &playScale, fileCfg.Play.Scale)
	applyStringConfig(cmd, "recognizer", &playEngine, fileCfg.Recognizer.Engine)
	applyStringConfig(cmd, "model", &playModel, fileCfg.Recognizer.Model)
	applyStringConfig(cmd, "project", &playProject, fileCfg.Recognizer.Project)
	applyStringConfig(cmd, "region", &playRegion, fileCfg.Recognizer.Region)
	applyStringConfig(cmd, "ocr-url", &playOCRURL, fileCfg.Recognizer.URL)
	applyDurationConfig(cmd, "timeout", &playTimeout, fileCfg.Recognizer.Timeout)
	applyStringConfig(cmd, "leaderboard", &playLeaderboard, fileCfg.Leaderboard.URL)

	cfg := model.Config{
		Lang:        playLang,
		Words:       playWords,
		MinLen:      playMinLen,
		MaxLen:      playMaxLen,
		Recognizer:  playEngine,
		Leaderboard: playLeaderboard,
		Scale:       playScale,
		Debug:       playDebug,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	words, err := wordlist.Load(config.DefaultWordListDir(), cfg.Lang)
	if err != nil {
		return fmt.Errorf("%w\nRun: wwpm langs", err)
	}

	closeLog, err := setupLogging(cfg.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()
	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return err
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

	opts := tui.Options{
		Config:     cfg,
		Words:      words,
		Generator:  generator.New(),
		Recognizer: recognize.NewGateway(engine, playTimeout),
		Store:      st,
	}
	if cfg.Leaderboard != "" {
		opts.Leaderboard = leaderboard.NewClient(cfg.Leaderboard)
	}
	m, err := tui.NewModel(opts)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newEngine(ctx context.Context, cfg model.Config) (recognize.Engine, error) {
	switch strings.ToLower(cfg.Recognizer) {
	case "gemini":
		language, ok := languageNames[strings.ToLower(cfg.Lang)]
		if !ok {
			language = cfg.Lang
		}
		g, err := recognize.NewGemini(ctx, recognize.GeminiConfig{
			Project:  playProject,
			Region:   playRegion,
			Model:    playModel,
			Language: language,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	case "http":
		if playOCRURL == "" {
			return nil, fmt.Errorf("--ocr-url is required for the http recognizer")
		}
		return recognize.NewHTTP(playOCRURL), nil
	default:
		return nil, fmt.Errorf("unknown recognizer %q (want gemini or http)", cfg.Recognizer)
	}
}

// setupLogging routes the std logger to a file while the TUI owns the
// terminal, or discards it.
func setupLogging(debug bool) (func(), error) {
	if !debug {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "wwpm")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the debug log.
			_ = cerr
		}
	}, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the leaderboard service",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveListen, "listen", defaultListen, "listen address")
	cmd.Flags().StringVar(&serveDB, "db", config.DefaultLeaderboardDBPath(), "leaderboard database path")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "listen", &serveListen, fileCfg.Leaderboard.Listen)
	applyStringConfig(cmd, "db", &serveDB, fileCfg.Leaderboard.DB)

	st, err := store.Open(serveDB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	srv := &http.Server{
		Addr:              serveListen,
		Handler:           leaderboard.NewServer(st),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("leaderboard listening on %s", serveListen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top scores",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().StringVar(&boardURL, "url", "", "leaderboard service URL")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "url", &boardURL, fileCfg.Leaderboard.URL)
	if boardURL == "" {
		return fmt.Errorf("no leaderboard URL: pass --url or set [leaderboard] url in %s", config.DefaultConfigPath())
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()
	entries, err := leaderboard.NewClient(boardURL).Top(ctx)
	if err != nil {
		return err
	}
	return stats.RenderLeaderboard(cmd.OutOrStdout(), entries)
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

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List available word list languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	langs, err := wordlist.Langs(config.DefaultWordListDir())
	if err != nil {
		return err
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	logErrf("Add more lists as one word per line in %s/<lang>.txt\n", config.DefaultWordListDir())
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show local session stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	cfg := model.StatsConfig{
		Lang:        statsLang,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
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

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return stats.RenderSummary(cmd.OutOrStdout(), report.Sessions, cfg.CurveWindow, terminalWidth())
}

func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 80
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width - len("Trend: ")
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

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# wwpm configuration
# Uncomment a value to enable it. CLI flags override config values.

[play]
# lang = "en"             # Language code (default %q)
# words = %d              # Words per session
# min-len = %d             # Minimum word length
# max-len = %d             # Maximum word length
# scale = %d               # Pixels per canvas dot in the recognized image

[recognizer]
# engine = %q        # gemini or http
# model = "gemini-2.5-flash"
# project = ""            # Vertex AI project; empty uses GEMINI_API_KEY
# region = "europe-west1"
# url = ""                # Endpoint for the http engine
# timeout = %q

[leaderboard]
# url = "http://localhost:8080"   # Empty plays offline
# listen = %q                  # Address for wwpm serve
# db = %q
`,
		defaultLang,
		defaultWords,
		defaultMinLen,
		defaultMaxLen,
		defaultScale,
		defaultEngine,
		defaultTimeout.String(),
		defaultListen,
		config.DefaultLeaderboardDBPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.MinLen < 0 || cfg.MaxLen < 0 {
		return fmt.Errorf("--min-len and --max-len must be >= 0")
	}
	if cfg.MaxLen > 0 && cfg.MinLen > cfg.MaxLen {
		return fmt.Errorf("--min-len must not exceed --max-len")
	}
	if cfg.Scale <= 0 {
		return fmt.Errorf("--scale must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
