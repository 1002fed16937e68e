// Package main provides the CLI entrypoint for mapty.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/mapty/internal/app"
	"github.com/verte-zerg/mapty/internal/config"
	"github.com/verte-zerg/mapty/internal/geo"
	"github.com/verte-zerg/mapty/internal/logging"
	"github.com/verte-zerg/mapty/internal/model"
	"github.com/verte-zerg/mapty/internal/persist"
	"github.com/verte-zerg/mapty/internal/stats"
	"github.com/verte-zerg/mapty/internal/statsui"
	"github.com/verte-zerg/mapty/internal/store"
	"github.com/verte-zerg/mapty/internal/tui"
	"github.com/verte-zerg/mapty/internal/workout"
)

const (
	defaultGeolocation = model.GeoIP
	defaultGeoTimeout  = 5 * time.Second
	defaultLogLevel    = "info"
)

var (
	mapZoom        int
	mapLocale      string
	mapGeolocation string
	mapLat         float64
	mapLng         float64
	mapGeoEndpoint string
	mapGeoTimeout  time.Duration
	mapTileURL     string
	mapAttribution string

	dbPath   string
	logLevel string
	logFile  string

	listType  string
	listSince string
	listLast  int
	listPlain bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mapty",
		Short:         "Map-based workout tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrackerCmd,
	}

	rootCmd.Flags().IntVar(&mapZoom, "zoom", app.DefaultZoom, "map zoom level (1-19)")
	rootCmd.Flags().StringVar(&mapLocale, "locale", "", "locale for workout descriptions (default: from LANG)")
	rootCmd.Flags().StringVar(&mapGeolocation, "geolocation", defaultGeolocation, "position source: ip, static or off")
	rootCmd.Flags().Float64Var(&mapLat, "lat", 0, "latitude for static geolocation")
	rootCmd.Flags().Float64Var(&mapLng, "lng", 0, "longitude for static geolocation")
	rootCmd.Flags().StringVar(&mapGeoEndpoint, "geo-endpoint", geo.DefaultEndpoint, "IP geolocation endpoint")
	rootCmd.Flags().DurationVar(&mapGeoTimeout, "geo-timeout", defaultGeoTimeout, "geolocation timeout")
	rootCmd.Flags().StringVar(&mapTileURL, "tile-url", app.DefaultTileURL, "map tile URL template")
	rootCmd.Flags().StringVar(&mapAttribution, "attribution", app.DefaultAttribution, "map attribution")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "workout database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file path (empty disables logging)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

// resolveConfig layers the config file, .env, MAPTY_* variables and flags.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		return model.Config{}, err
	}
	envCfg, err := config.FromEnv()
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	fileCfg = config.Merge(fileCfg, envCfg)

	applyIntConfig(cmd, "zoom", &mapZoom, fileCfg.Map.Zoom)
	applyStringConfig(cmd, "locale", &mapLocale, fileCfg.Map.Locale)
	applyStringConfig(cmd, "geolocation", &mapGeolocation, fileCfg.Map.Geolocation)
	applyFloatConfig(cmd, "lat", &mapLat, fileCfg.Map.Lat)
	applyFloatConfig(cmd, "lng", &mapLng, fileCfg.Map.Lng)
	applyStringConfig(cmd, "geo-endpoint", &mapGeoEndpoint, fileCfg.Map.GeoEndpoint)
	if fileCfg.Map.GeoTimeout != nil && !cmd.Flags().Changed("geo-timeout") {
		mapGeoTimeout = fileCfg.Map.GeoTimeout.Duration
	}
	applyStringConfig(cmd, "tile-url", &mapTileURL, fileCfg.Map.TileURL)
	applyStringConfig(cmd, "attribution", &mapAttribution, fileCfg.Map.Attribution)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Storage.DB)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	cfg := model.Config{
		Zoom:        mapZoom,
		Locale:      mapLocale,
		Geolocation: strings.ToLower(strings.TrimSpace(mapGeolocation)),
		Lat:         mapLat,
		Lng:         mapLng,
		GeoEndpoint: mapGeoEndpoint,
		GeoTimeout:  mapGeoTimeout,
		TileURL:     mapTileURL,
		Attribution: mapAttribution,
		DBPath:      dbPath,
		LogLevel:    logLevel,
		LogFile:     logFile,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runTrackerCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	locale, err := resolveLocale(cfg.Locale)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	// The locator outlives reloads so an IP fix is queried once per process.
	locator := newLocator(cfg)
	ctx := context.Background()
	for {
		tracker := tui.New(ctx, tui.Options{
			Locator:     locator,
			GeoTimeout:  cfg.GeoTimeout,
			Store:       persist.New(st, logger),
			Logger:      logger,
			Zoom:        cfg.Zoom,
			TileURL:     cfg.TileURL,
			Attribution: cfg.Attribution,
			Workout:     []workout.Option{workout.WithLocale(locale)},
		})
		program := tea.NewProgram(tracker, tea.WithAltScreen(), tea.WithMouseCellMotion())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		if !tracker.ReloadRequested() {
			return nil
		}
		logger.Info("reloading")
	}
}

func newLocator(cfg model.Config) geo.Locator {
	switch cfg.Geolocation {
	case model.GeoStatic:
		return geo.Static{Coords: workout.Coords{Lat: cfg.Lat, Lng: cfg.Lng}}
	case model.GeoOff:
		return geo.Disabled{}
	default:
		return geo.NewIP(cfg.GeoEndpoint, cfg.GeoTimeout)
	}
}

func resolveLocale(value string) (workout.Locale, error) {
	if strings.TrimSpace(value) == "" {
		return workout.LocaleFromEnv(os.Getenv("LANG")), nil
	}
	locale, err := workout.ParseLocale(value)
	if err != nil {
		return workout.Locale{}, fmt.Errorf("--locale: %w", err)
	}
	return locale, nil
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&listType, "type", "", "workout type filter (running or cycling)")
	cmd.Flags().StringVar(&listSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&listLast, "last", 0, "limit to last N workouts")
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print saved workouts",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
	addListFlags(cmd)
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show workout totals",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addListFlags(cmd)
	cmd.Flags().BoolVar(&listPlain, "plain", false, "print a summary instead of opening the stats UI")
	return cmd
}

func listConfig() (model.ListConfig, error) {
	var since *time.Time
	if listSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", listSince, time.Local)
		if err != nil {
			return model.ListConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}
	if listLast < 0 {
		return model.ListConfig{}, fmt.Errorf("--last must be >= 0")
	}
	return model.ListConfig{Kind: listType, Since: since, Last: listLast}, nil
}

// withAdapter opens the store for a one-shot command.
func withAdapter(cmd *cobra.Command, fn func(*persist.Adapter) error) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return fn(persist.New(st, logger.With(zap.String("command", cmd.Name()))))
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	listCfg, err := listConfig()
	if err != nil {
		return err
	}
	return withAdapter(cmd, func(adapter *persist.Adapter) error {
		report, err := stats.BuildReport(cmd.Context(), adapter, listCfg)
		if err != nil {
			return err
		}
		return stats.RenderList(cmd.OutOrStdout(), report.Workouts, stats.TerminalWidth())
	})
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	listCfg, err := listConfig()
	if err != nil {
		return err
	}
	return withAdapter(cmd, func(adapter *persist.Adapter) error {
		if listPlain || !stats.IsTerminal() {
			report, err := stats.BuildReport(cmd.Context(), adapter, listCfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := stats.RenderSummary(out, report.Workouts); err != nil {
				return err
			}
			return stats.RenderDistanceTrend(out, report.Workouts, 3, stats.TerminalWidth())
		}
		program := tea.NewProgram(statsui.NewModel(adapter, listCfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	})
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all saved workouts",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	return withAdapter(cmd, func(adapter *persist.Adapter) error {
		if err := adapter.Reset(cmd.Context()); err != nil {
			return err
		}
		logErrln("Workouts cleared.")
		return nil
	})
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# mapty configuration
# Uncomment a value to enable it. MAPTY_* variables and CLI flags override config values.

[map]
# zoom = %d                  # Zoom level (1-19)
# locale = "en-GB"           # Description locale (default: from LANG)
# geolocation = %q         # Position source: ip, static or off
# lat = 51.5                 # Latitude for static geolocation
# lng = -0.1                 # Longitude for static geolocation
# geo-endpoint = %q
# geo-timeout = %q
# tile-url = %q
# attribution = %q

[storage]
# db = %q

[log]
# level = %q
# file = %q
`,
		app.DefaultZoom,
		defaultGeolocation,
		geo.DefaultEndpoint,
		defaultGeoTimeout.String(),
		app.DefaultTileURL,
		app.DefaultAttribution,
		config.DefaultDBPath(),
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Zoom < 1 || cfg.Zoom > 19 {
		return fmt.Errorf("--zoom must be between 1 and 19")
	}
	switch cfg.Geolocation {
	case model.GeoIP, model.GeoStatic, model.GeoOff:
	default:
		return fmt.Errorf("--geolocation must be one of ip, static, off")
	}
	if math.IsNaN(cfg.Lat) || cfg.Lat < -90 || cfg.Lat > 90 {
		return fmt.Errorf("--lat must be between -90 and 90")
	}
	if math.IsNaN(cfg.Lng) || cfg.Lng < -180 || cfg.Lng > 180 {
		return fmt.Errorf("--lng must be between -180 and 180")
	}
	if cfg.GeoTimeout <= 0 {
		return fmt.Errorf("--geo-timeout must be > 0")
	}
	if strings.TrimSpace(cfg.TileURL) == "" {
		return fmt.Errorf("--tile-url must not be empty")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return fmt.Errorf("--db must not be empty")
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
