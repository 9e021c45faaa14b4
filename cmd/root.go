package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/crmx/internal/chat"
	"github.com/oakwood-commons/crmx/internal/client"
	"github.com/oakwood-commons/crmx/internal/config"
	"github.com/oakwood-commons/crmx/internal/formatter"
	"github.com/oakwood-commons/crmx/internal/limiter"
	"github.com/oakwood-commons/crmx/internal/prefs"
	"github.com/oakwood-commons/crmx/internal/record"
	"github.com/oakwood-commons/crmx/internal/search"
	"github.com/oakwood-commons/crmx/internal/source"
	"github.com/oakwood-commons/crmx/internal/ui"
	"github.com/oakwood-commons/crmx/internal/view"
	"github.com/oakwood-commons/crmx/pkg/core"
	"github.com/oakwood-commons/crmx/pkg/logger"
	"github.com/oakwood-commons/crmx/pkg/settings"
)

var (
	interactive   bool
	output        string
	searchTerm    string
	sortFlag      string
	filterFlags   []string
	hideFlags     []string
	pageFlag      int
	pageSizeFlag  int
	limitRecords  int
	offsetRecords int
	tailRecords   int
	themeName     string
	noColor       bool
	debug         bool
	outputWidth   int
	outputHeight  int
	configFile    string
	sourceSpec    string
	apiURL        string
	prefsFile     string

	rootCtx = context.Background()
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName,
	Short: "crmx - CRM customer record browser",
	Long: `crmx loads a book of customer records and shows one page of it at a time.

Rows can be sorted, filtered, paged and hidden column by column. A natural-language
search (--search, or / in the interactive UI) asks the CRM API for a new result set
and replaces the loaded rows with it. The interactive UI (-i) also hosts a chat panel
for the CRM assistant.`,
	Example: "\n  crmx\n  crmx --sort aum:desc --page-size 5\n  crmx --filter 'riskProfile=high' --filter 'age=>=45' -o json\n  crmx --filter 'aum=_ > 1000000' -o csv\n  crmx --source customers.yaml -i\n  crmx --search 'high risk clients over 60'\n  crmx chat 'who should I call this week?'\n",
	Args:  cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		// Map CLI debug flag to log level: debug => zap.DebugLevel (-1), else zap.InfoLevel (0)
		var level int8
		if debug {
			level = -1
		}
		lgr := logger.Get(level)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
		run := settings.NewCliParams()
		run.MinLogLevel = level
		run.Interactive = interactive
		run.NoColor = noColor
		if apiURL != "" {
			run.APIURL = apiURL
		}
		if sourceSpec != "" {
			run.Source = sourceSpec
		}
		rootCtx = settings.IntoContext(logger.WithLogger(context.Background(), lgr), run)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Validate record-limiting flags first
		if err := validateLimitingFlags(); err != nil {
			fmt.Fprintf(os.Stderr, "record limiting error: %v\n", err)
			os.Exit(2)
		}
		if err := validateViewFlags(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
		return runRoot(cmd)
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML config file (api, view, schema, themes)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "CRM API base URL (default from config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs to stderr")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "start interactive TUI")
	rootCmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table|json|yaml|csv|tree")
	rootCmd.Flags().StringVar(&sourceSpec, "source", "", "seed dataset: builtin, api[?filters], an http(s) API root, a file, sqlite:path#table or postgres://dsn#table (default from config)")
	rootCmd.Flags().StringVar(&searchTerm, "search", "", "natural-language search sent to the CRM API; its answer replaces the loaded rows")
	rootCmd.Flags().StringVar(&sortFlag, "sort", "", "sort column: field[:asc|desc] (default from config)")
	rootCmd.Flags().StringArrayVar(&filterFlags, "filter", nil, "column filter field=expr (repeatable). expr: text, =value, <n, >=n, !=n, low..high, a|b, or a CEL expression on _")
	rootCmd.Flags().StringArrayVar(&hideFlags, "hide", nil, "hide a column (repeatable)")
	rootCmd.Flags().IntVar(&pageFlag, "page", 1, "page to show (1-based; clamped to the last page)")
	rootCmd.Flags().IntVar(&pageSizeFlag, "page-size", 0, "rows per page (default from config)")
	rootCmd.Flags().IntVar(&limitRecords, "limit", 0, "Limit total number of records loaded")
	rootCmd.Flags().IntVar(&offsetRecords, "offset", 0, "Skip the first N records")
	rootCmd.Flags().IntVar(&tailRecords, "tail", 0, "Keep the last N records (mutually exclusive with --limit; ignores --offset)")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme name (default from config; see 'crmx config themes')")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.Flags().IntVar(&outputWidth, "width", 0, "Output width in columns (affects formatting and TUI layout)")
	rootCmd.Flags().IntVar(&outputHeight, "height", 0, "Output height in rows (affects TUI layout)")
	rootCmd.Flags().StringVar(&prefsFile, "prefs-file", "", "path to the interactive preferences file (default "+prefs.DefaultPath()+")")
	_ = rootCmd.Flags().MarkHidden("prefs-file")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(chatCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func validateLimitingFlags() error {
	cfg := limiter.Config{
		Limit:  limitRecords,
		Offset: offsetRecords,
		Tail:   tailRecords,
	}
	return cfg.Validate()
}

func validateViewFlags() error {
	if _, err := formatter.ParseFormat(output); err != nil {
		return err
	}
	if pageFlag < 1 {
		return fmt.Errorf("invalid --page %d: pages start at 1", pageFlag)
	}
	if pageSizeFlag < 0 {
		return fmt.Errorf("invalid --page-size %d: must be positive", pageSizeFlag)
	}
	if outputWidth < 0 || outputHeight < 0 {
		return fmt.Errorf("--width and --height must not be negative")
	}
	return nil
}

// session bundles what a run of the root command wires together.
type session struct {
	cfg    config.File
	schema record.Schema
	src    source.Source
	engine *core.Engine
	client *client.Client
	log    logr.Logger
}

func runRoot(cmd *cobra.Command) error {
	ctx := rootCtx
	log := logger.FromContext(ctx).WithName("cli")
	if run, ok := settings.FromContext(ctx); ok {
		log.V(1).Info("starting", logger.SourceKey, run.Source, "api", run.APIURL, "interactive", run.Interactive)
	}

	cfg, err := loadMergedConfig(resolveConfigPath(configFile))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := ui.InitializeThemes(cfg); err != nil {
		return err
	}
	themeFlagSet := cmd.Flags().Changed("theme")
	if themeFlagSet {
		if err := ui.SetThemeByName(themeName); err != nil {
			return err
		}
	}

	needAPI := interactive || strings.TrimSpace(searchTerm) != ""
	s, err := openSession(ctx, cfg, log, needAPI)
	if err != nil {
		return err
	}
	viewCfg, err := buildViewConfig(cfg, s.schema)
	if err != nil {
		return err
	}

	if interactive {
		return runInteractive(cmd, s, viewCfg, themeFlagSet)
	}

	if strings.TrimSpace(searchTerm) != "" {
		out, err := s.engine.Search(ctx, searchTerm)
		if err != nil {
			return err
		}
		if out.Status != search.StatusReplaced {
			fmt.Fprintln(os.Stderr, out.Notice)
		}
	}

	format, _ := formatter.ParseFormat(output)
	return s.engine.Render(cmd.OutOrStdout(), viewCfg, core.RenderOptions{
		Format:  format,
		NoColor: noColor,
		Width:   outputWidth,
		Footer:  true,
	})
}

// openSession resolves the API settings and the seed source, loads the seed
// rows and applies the record-limiting flags. The API client is only built
// when withAPI is set, so a bad api.url does not break offline rendering.
func openSession(ctx context.Context, cfg config.File, log logr.Logger, withAPI bool) (*session, error) {
	clientCfg, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:    cfg,
		schema: cfg.Schema,
		log:    log,
	}
	if len(s.schema.Columns) == 0 {
		s.schema = record.CustomerSchema()
	}

	spec := sourceSpec
	if spec == "" {
		spec = cfg.Source
	}
	s.src, err = source.Open(spec, source.Deps{Schema: s.schema, Client: clientCfg})
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	rows, err := s.loadSeed(ctx)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("seed loaded", logger.SourceKey, s.src.String(), logger.RowsKey, len(rows))

	opts := []core.Option{core.WithSchema(s.schema), core.WithLogger(log)}
	if withAPI {
		s.client, err = client.NewClient(clientCfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, core.WithResolver(s.client))
	}
	s.engine, err = core.New(rows, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) loadSeed(ctx context.Context) ([]record.Record, error) {
	rows, err := s.src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.src, err)
	}
	limitCfg := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
	return limiter.Apply(limitCfg, rows), nil
}

// buildViewConfig layers the view flags over the config file's view section.
func buildViewConfig(cfg config.File, schema record.Schema) (view.Config, error) {
	var vc view.Config

	sortText := cfg.View.Sort
	if sortFlag != "" {
		sortText = sortFlag
	}
	sortSpec, err := parseSortFor(schema, sortText)
	if err != nil {
		return vc, err
	}
	vc.Sort = sortSpec

	hidden := cfg.View.HiddenColumns
	if len(hideFlags) > 0 {
		hidden = append(append([]string(nil), hidden...), hideFlags...)
	}
	var vis view.Visibility
	for _, field := range hidden {
		field = strings.TrimSpace(field)
		if _, ok := schema.Column(field); !ok {
			return vc, fmt.Errorf("cannot hide unknown column %q (columns: %s)", field, strings.Join(schema.Fields(), ", "))
		}
		vis = vis.Hide(field)
	}
	vc.Visibility = vis

	var filter view.FilterSpec
	for _, raw := range filterFlags {
		field, expr, ok := strings.Cut(raw, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return vc, fmt.Errorf("invalid --filter %q: expected field=expr", raw)
		}
		if _, known := schema.Column(field); !known {
			return vc, fmt.Errorf("invalid --filter %q: unknown column %q", raw, field)
		}
		pred, err := view.ParseFilter(schema, field, expr)
		if err != nil {
			return vc, fmt.Errorf("invalid --filter %q: %w", raw, err)
		}
		if pred == nil {
			filter = filter.Without(field)
			continue
		}
		filter = filter.With(field, pred)
	}
	vc.Filter = filter

	size := cfg.PageSize(view.DefaultPageSize)
	if pageSizeFlag > 0 {
		size = pageSizeFlag
	}
	index := pageFlag - 1
	if index < 0 {
		index = 0
	}
	vc.Page = view.PageSpec{Index: index, Size: size}
	return vc, nil
}

// parseSortFor parses a sort spec and rejects unknown or unsortable columns.
func parseSortFor(schema record.Schema, text string) (view.SortSpec, error) {
	spec, err := view.ParseSort(text)
	if err != nil || !spec.Active() {
		return spec, err
	}
	col, ok := schema.Column(spec.Field)
	if !ok {
		return view.SortSpec{}, fmt.Errorf("cannot sort by unknown column %q", spec.Field)
	}
	if !col.Sortable {
		return view.SortSpec{}, fmt.Errorf("column %q is not sortable", spec.Field)
	}
	return spec, nil
}

func runInteractive(cmd *cobra.Command, s *session, vc view.Config, themeFlagSet bool) error {
	ctx := rootCtx
	p := prefs.Load(prefsFile)
	vc = applyPrefs(cmd, s.schema, vc, p, themeFlagSet)

	searchCtl := s.engine.Searcher()
	if q := strings.TrimSpace(searchTerm); q != "" {
		searchCtl.SetQuery(q)
	}
	chatCtl := chat.New(s.client, chat.WithLogger(logger.Named(&s.log, "chat")))

	final, err := ui.Run(ui.Options{
		Schema:     s.schema,
		Store:      s.engine.Store(),
		Search:     searchCtl,
		Chat:       chatCtl,
		Reload:     s.loadSeed,
		View:       vc,
		Context:    ctx,
		Logger:     s.log.WithName("ui"),
		NoColor:    noColor,
		Width:      outputWidth,
		Height:     outputHeight,
		AppName:    s.cfg.App.About.Name,
		AboutLines: aboutLines(s.cfg),
		Source:     s.src.String(),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if saveErr := prefs.Save(prefsFile, prefsFromView(final, ui.CurrentThemeName())); saveErr != nil {
		s.log.V(1).Info("preferences not saved", "error", saveErr.Error())
	}
	return nil
}

// applyPrefs restores the remembered settings that no flag overrides.
func applyPrefs(cmd *cobra.Command, schema record.Schema, vc view.Config, p prefs.Prefs, themeFlagSet bool) view.Config {
	if p.Theme != "" && !themeFlagSet {
		// An unknown remembered theme keeps the configured default.
		_ = ui.SetThemeByName(p.Theme)
	}
	if p.PageSize > 0 && !cmd.Flags().Changed("page-size") {
		vc.Page.Size = p.PageSize
	}
	if p.Sort != "" && !cmd.Flags().Changed("sort") {
		if spec, err := parseSortFor(schema, p.Sort); err == nil {
			vc.Sort = spec
		}
	}
	if len(p.HiddenColumns) > 0 && !cmd.Flags().Changed("hide") {
		vis := vc.Visibility.Reset()
		for _, field := range p.HiddenColumns {
			if _, ok := schema.Column(field); ok {
				vis = vis.Hide(field)
			}
		}
		// Never restore a state with every column hidden.
		if len(vis.Hidden()) < len(schema.Columns) {
			vc.Visibility = vis
		}
	}
	return vc
}

func prefsFromView(vc view.Config, theme string) prefs.Prefs {
	p := prefs.Prefs{
		Theme:         theme,
		PageSize:      vc.Page.Size,
		HiddenColumns: vc.Visibility.Hidden(),
	}
	if vc.Sort.Active() {
		p.Sort = vc.Sort.String()
	}
	return p
}

// cliVersionString builds a human-readable version string for CLI output and Cobra's --version flag.
func cliVersionString() string {
	cfg, _ := loadMergedConfig(resolveConfigPath(""))
	about := cfg.App.About
	name := about.Name
	if name == "" {
		name = settings.CliBinaryName
	}
	version := about.Version
	if version == "" {
		version = settings.VersionInformation.BuildVersion
	}
	goVersion := about.GoVersion
	if goVersion == "" {
		data := buildVersionData(&cfg)
		goVersion, _ = data["GoVersion"].(string)
	}
	return fmt.Sprintf("%s %s (go %s)", name, version, goVersion)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print crmx version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return err
	},
}
