package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ChristianF88/bitsort/config"
	"github.com/ChristianF88/bitsort/ingestor"
	"github.com/ChristianF88/bitsort/output"
	"github.com/ChristianF88/bitsort/version"
	cli "github.com/urfave/cli/v2"
)

// parseDate attempts to parse the build date
func parseDate(d string) time.Time {
	t, err := time.Parse(time.RFC3339, d)
	if err != nil {
		return time.Now()
	}
	return t
}

// Shared flag definitions to eliminate duplication
var (
	// Configuration flags
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to configuration file (mutually exclusive with other flags)",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "logLevel",
		Usage: "Log level written to stderr (trace, debug, info, warn, error, disabled)",
	}

	// Sorter flags
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "Number of workers (0 uses all available CPUs)",
	}
	grainFlag = &cli.IntFlag{
		Name:  "grain",
		Usage: "Smallest number of elements handed to one worker",
	}
	maxLengthFlag = &cli.Int64Flag{
		Name:  "maxLength",
		Usage: "Longest accepted input (at most 4294967295)",
	}
	traceFlag = &cli.BoolFlag{
		Name:  "trace",
		Usage: "Log every pass (vectors are logged at trace level)",
	}
	verifyFlag = &cli.BoolFlag{
		Name:  "verify",
		Usage: "Verify that the output is a sorted permutation of the input",
		Value: true,
	}

	// Input flags
	inputFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "File with whitespace separated keys, '-' for stdin",
	}

	// Output flags
	indicesFlag = &cli.BoolFlag{
		Name:  "indices",
		Usage: "Report the input position of every sorted key",
	}
	plotPathFlag = &cli.StringFlag{
		Name:  "plotPath",
		Usage: "Path where to save the pass chart (e.g., '/path/to/passes.html'). If not provided, no plot will be generated.",
	}
	compactFlag = &cli.BoolFlag{
		Name:  "compact",
		Usage: "Output compact JSON (no pretty printing)",
		Value: false,
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Output plain text format for easy readability",
		Value: false,
	}
	tuiFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Browse the passes in a terminal user interface",
		Value: false,
	}

	// Bench flags
	sizesFlag = &cli.StringFlag{
		Name:  "sizes",
		Usage: "Comma separated input sizes",
		Value: "1000,100000,1000000",
	}
	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "Seed of the random inputs",
		Value: 1,
	}

	// Serve and send flags
	portFlag = &cli.StringFlag{
		Name:  "port",
		Usage: "Port to listen on",
	}
	readTimeoutFlag = &cli.DurationFlag{
		Name:  "readTimeout",
		Usage: "Read timeout of lumberjack connections",
		Value: config.DefaultReadTimeout,
	}
	batchSizeFlag = &cli.IntFlag{
		Name:  "batchSize",
		Usage: "Number of keys sorted together",
		Value: config.DefaultBatchSize,
	}
	flushIntervalFlag = &cli.DurationFlag{
		Name:  "flushInterval",
		Usage: "Sort pending keys at least this often",
		Value: config.DefaultFlushInterval,
	}
	addrFlag = &cli.StringFlag{
		Name:  "addr",
		Usage: "Address of the serve command (host:port)",
		Value: "127.0.0.1:" + config.DefaultPort,
	}
	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "Connection and ACK timeout",
		Value: 30 * time.Second,
	}
)

// configModeFlags are the flags that have a config file counterpart.
var configModeFlags = []string{
	"input", "workers", "grain", "maxLength", "trace", "verify", "indices",
	"plotPath", "logLevel", "port", "readTimeout", "batchSize", "flushInterval",
	"tui", "compact", "plain",
}

// Shared validation functions
func validateConfigModeFlags(c *cli.Context, allowedFlags []string) error {
	allowed := make(map[string]bool)
	for _, flag := range allowedFlags {
		allowed[flag] = true
	}

	for _, flag := range configModeFlags {
		if c.IsSet(flag) && !allowed[flag] {
			return fmt.Errorf("when using --config, only %v flags are allowed", allowedFlags)
		}
	}
	if c.Args().Present() {
		return fmt.Errorf("when using --config, keys must come from the configured input file")
	}
	return nil
}

func validatePlotPath(plotPath string) error {
	if plotPath != "" {
		plotDir := filepath.Dir(plotPath)
		if plotDir == "." {
			plotDir, _ = os.Getwd()
		}
		if _, err := os.Stat(plotDir); os.IsNotExist(err) {
			return fmt.Errorf("plot directory does not exist: %s", plotDir)
		}
	}
	return nil
}

func validateInputFileExists(path string) error {
	if path == "" || path == ingestor.StdinPath {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	return nil
}

func outputConfigFrom(c *cli.Context, cfg *config.Config) OutputConfig {
	return OutputConfig{
		Compact: cfg.Output.Compact || c.Bool("compact"),
		Plain:   cfg.Output.Plain || c.Bool("plain"),
		TUI:     c.Bool("tui"),
	}
}

// createConfigFromCLI builds the same configuration a file would, from flags.
func createConfigFromCLI(c *cli.Context) *config.Config {
	cfg := config.Default()
	cfg.Sort.Workers = c.Int("workers")
	cfg.Sort.Grain = c.Int("grain")
	if c.IsSet("maxLength") {
		cfg.Sort.MaxLength = c.Int64("maxLength")
	}
	if c.IsSet("verify") {
		cfg.Sort.Verify = c.Bool("verify")
	}
	cfg.Input.File = c.String("input")
	cfg.Output.Compact = c.Bool("compact")
	cfg.Output.Plain = c.Bool("plain")
	cfg.Output.PlotPath = c.String("plotPath")
	cfg.Output.Indices = c.Bool("indices")
	cfg.Log.Trace = c.Bool("trace")
	if c.IsSet("port") {
		cfg.Serve.Port = c.String("port")
	}
	if c.IsSet("readTimeout") {
		cfg.Serve.ReadTimeout = c.Duration("readTimeout")
	}
	if c.IsSet("batchSize") {
		cfg.Serve.BatchSize = c.Int("batchSize")
	}
	if c.IsSet("flushInterval") {
		cfg.Serve.FlushInterval = c.Duration("flushInterval")
	}
	return cfg
}

// loadCommandConfig resolves the configuration of a command from --config or
// from its flags.
func loadCommandConfig(c *cli.Context, allowedInConfigMode []string) (*config.Config, error) {
	configPath := c.String("config")
	if configPath == "" {
		cfg := createConfigFromCLI(c)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := validateConfigModeFlags(c, allowedInConfigMode); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// readKeys returns the keys of the sort command and where they came from.
func readKeys(c *cli.Context, cfg *config.Config) ([]uint32, string, error) {
	if cfg.Input.File != "" {
		if err := validateInputFileExists(cfg.Input.File); err != nil {
			return nil, "", err
		}
		var (
			values []uint32
			err    error
		)
		if cfg.Input.File == ingestor.StdinPath {
			values, err = ingestor.ReadValues(c.App.Reader)
		} else {
			values, err = ingestor.ReadFile(cfg.Input.File)
		}
		if err != nil {
			return nil, "", err
		}
		return values, cfg.Input.File, nil
	}

	if !c.Args().Present() {
		return nil, "", fmt.Errorf("input or keys are required when not using --config")
	}
	values, err := ingestor.ParseValues(strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return nil, "", fmt.Errorf("invalid keys: %w", err)
	}
	return values, "arguments", nil
}

// Command handler functions to reduce deep nesting

// handleSortCommand processes the sort command
func handleSortCommand(c *cli.Context) error {
	cfg, err := loadCommandConfig(c, []string{"tui", "compact", "plain"})
	if err != nil {
		return err
	}
	if c.IsSet("input") && c.Args().Present() {
		return fmt.Errorf("keys cannot be given both as arguments and with --input")
	}
	if err := validatePlotPath(cfg.Output.PlotPath); err != nil {
		return err
	}

	r, err := newRunner(cfg, c.String("logLevel"), c.App.Writer, c.App.ErrWriter)
	if err != nil {
		return err
	}

	readStart := time.Now()
	values, source, err := readKeys(c, cfg)
	if err != nil {
		return err
	}
	readDuration := time.Since(readStart)
	r.logger.Debug().Str("source", source).Int("keys", len(values)).Dur("read", readDuration).Msg("keys read")

	return r.executeSort("sort", source, values, readDuration, outputConfigFrom(c, cfg))
}

// handleDemoCommand sorts the fixed sample with tracing enabled.
func handleDemoCommand(c *cli.Context) error {
	cfg := createConfigFromCLI(c)
	cfg.Log.Trace = true
	cfg.Output.Indices = true
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := c.String("logLevel")
	if level == "" {
		level = "trace"
	}
	r, err := newRunner(cfg, level, c.App.Writer, c.App.ErrWriter)
	if err != nil {
		return err
	}

	sample := []uint32{32, 12, 5, 2, 64, 12, 4, 84, 1, 3}
	return r.executeSort("demo", "sample", sample, 0, outputConfigFrom(c, cfg))
}

// handleBenchCommand processes the bench command
func handleBenchCommand(c *cli.Context) error {
	sizes, err := parseSizes(c.String("sizes"))
	if err != nil {
		return err
	}
	cfg := createConfigFromCLI(c)
	if err := cfg.Validate(); err != nil {
		return err
	}
	r, err := newRunner(cfg, c.String("logLevel"), c.App.Writer, c.App.ErrWriter)
	if err != nil {
		return err
	}
	return r.executeBench(sizes, c.Int64("seed"), outputConfigFrom(c, cfg))
}

// handleServeCommand processes the serve command
func handleServeCommand(c *cli.Context) error {
	cfg, err := loadCommandConfig(c, []string{"compact", "plain"})
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("invalid serve configuration: %w", err)
	}
	r, err := newRunner(cfg, c.String("logLevel"), c.App.Writer, c.App.ErrWriter)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return r.executeServe(ctx, outputConfigFrom(c, cfg))
}

// handleSendCommand ships keys to a running serve command.
func handleSendCommand(c *cli.Context) error {
	cfg := createConfigFromCLI(c)
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	r, err := newRunner(cfg, c.String("logLevel"), c.App.Writer, c.App.ErrWriter)
	if err != nil {
		return err
	}

	values, source, err := readKeys(c, cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	report := output.NewJSONOutput("send", start)
	report.General.Source = source
	report.General.Length = len(values)

	acked, err := ingestor.Send(c.String("addr"), values, cfg.Serve.BatchSize, c.Duration("timeout"))
	if err != nil {
		r.logger.Error().Err(err).Int("acked", acked).Msg("send failed")
		report.AddError("send", err.Error(), acked)
	} else {
		report.AddWarning("info", fmt.Sprintf("%d events acknowledged by %s", acked, c.String("addr")), acked)
	}
	report.UpdateDuration(start)

	if err := outputResult(r.out, report, outputConfigFrom(c, cfg)); err != nil {
		return err
	}
	if report.HasErrors() {
		return errReportHasErrors
	}
	return nil
}

var App = &cli.App{
	Name:     "bitsort",
	Usage:    "Sort unsigned integers with a parallel bit-by-bit radix sort",
	Version:  version.Version,
	Compiled: parseDate(version.Date),
	Commands: []*cli.Command{
		{
			Name:      "sort",
			Usage:     "Sort keys from arguments, a file or stdin",
			ArgsUsage: "[keys...]",
			Flags: []cli.Flag{
				// Configuration
				configFlag,
				logLevelFlag,
				// Input
				inputFlag,
				// Sorter
				workersFlag,
				grainFlag,
				maxLengthFlag,
				traceFlag,
				verifyFlag,
				// Output
				indicesFlag,
				plotPathFlag,
				compactFlag,
				plainFlag,
				tuiFlag,
			},
			Action: handleSortCommand,
		},
		{
			Name:  "bench",
			Usage: "Compare the parallel sorter with sequential sorts on random keys",
			Flags: []cli.Flag{
				sizesFlag,
				seedFlag,
				workersFlag,
				grainFlag,
				logLevelFlag,
				compactFlag,
				plainFlag,
			},
			Action: handleBenchCommand,
		},
		{
			Name:  "serve",
			Usage: "Sort keys received from lumberjack clients such as Filebeat",
			Flags: []cli.Flag{
				// Configuration
				configFlag,
				logLevelFlag,
				// Listener
				portFlag,
				readTimeoutFlag,
				batchSizeFlag,
				flushIntervalFlag,
				// Sorter
				workersFlag,
				grainFlag,
				maxLengthFlag,
				traceFlag,
				verifyFlag,
				// Output
				indicesFlag,
				compactFlag,
				plainFlag,
			},
			Action: handleServeCommand,
		},
		{
			Name:      "send",
			Usage:     "Send keys to a serve command over lumberjack",
			ArgsUsage: "[keys...]",
			Flags: []cli.Flag{
				addrFlag,
				inputFlag,
				batchSizeFlag,
				timeoutFlag,
				logLevelFlag,
				compactFlag,
				plainFlag,
			},
			Action: handleSendCommand,
		},
		{
			Name:  "demo",
			Usage: "Sort a small sample and log every pass",
			Flags: []cli.Flag{
				workersFlag,
				grainFlag,
				logLevelFlag,
				compactFlag,
				plainFlag,
				tuiFlag,
			},
			Action: handleDemoCommand,
		},
	},
}
