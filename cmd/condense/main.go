package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/lesson-condenser/internal/application"
	"github.com/eugenenazirov/lesson-condenser/internal/config"
	"github.com/eugenenazirov/lesson-condenser/internal/logging"
	"github.com/eugenenazirov/lesson-condenser/internal/planner"
	"github.com/eugenenazirov/lesson-condenser/internal/report"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "condense: %v\n", err)
		os.Exit(1)
	}
}

func markSet(set *bool) kingpin.Action {
	return func(*kingpin.ParseContext) error {
		*set = true
		return nil
	}
}

func run(args []string, stdout io.Writer) error {
	app := kingpin.New("condense", "Condense the remaining lessons into evenly balanced days")

	var alreadyCompleteSet, totalDaysSet bool
	alreadyComplete := app.Arg("already-complete", "Number of lessons already completed").
		Default(strconv.Itoa(planner.DefaultAlreadyComplete)).
		Action(markSet(&alreadyCompleteSet)).
		Int()
	totalDays := app.Arg("total-days", "Number of days to spread the remaining lessons over").
		Default(strconv.Itoa(planner.DefaultTotalDays)).
		Action(markSet(&totalDaysSet)).
		Int()

	var hoursSet, titlesSet, colorSet, summarySet bool
	configFile := app.Flag("config", "Path to YAML configuration file").String()
	dataFile := app.Flag("data", "Path to the lessons JSON file").String()
	format := app.Flag("format", "Output format").Enum(config.FormatText, config.FormatJSON)
	hours := app.Flag("hours", "Show day totals as hours and minutes too").IsSetByUser(&hoursSet).Bool()
	titles := app.Flag("titles", "Show lesson titles next to their ids").IsSetByUser(&titlesSet).Bool()
	color := app.Flag("color", "Style the output for terminals").IsSetByUser(&colorSet).Bool()
	summary := app.Flag("summary", "Print a summary line after the schedule").IsSetByUser(&summarySet).Bool()
	logLevel := app.Flag("log-level", "Minimum log level written to stderr").String()

	if _, err := app.Parse(args); err != nil {
		return err
	}

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		DataFile:   dataFile,
		Format:     format,
		LogLevel:   logLevel,
	}

	// Only values given on the command line override the config file and environment.
	for _, opt := range []struct {
		set    bool
		value  *int
		target **int
	}{
		{alreadyCompleteSet, alreadyComplete, &overrides.AlreadyComplete},
		{totalDaysSet, totalDays, &overrides.TotalDays},
	} {
		if opt.set {
			*opt.target = opt.value
		}
	}
	for _, opt := range []struct {
		set    bool
		value  *bool
		target **bool
	}{
		{hoursSet, hours, &overrides.ShowHours},
		{titlesSet, titles, &overrides.ShowTitles},
		{colorSet, color, &overrides.Color},
		{summarySet, summary, &overrides.Summary},
	} {
		if opt.set {
			*opt.target = opt.value
		}
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	catalog, err := application.LoadCatalog(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("load lessons: %w", err)
	}

	schedule, err := planner.New().Plan(catalog, cfg.Request())
	if err != nil {
		return fmt.Errorf("plan schedule: %w", err)
	}

	logger.Debug("schedule planned",
		zap.String("data_file", cfg.DataFile),
		zap.Int("already_complete", schedule.AlreadyComplete),
		zap.Int("total_days", schedule.TotalDays),
		zap.Int("days", len(schedule.Days)),
		zap.Int("average", schedule.Average),
	)
	if len(schedule.Days) != schedule.TotalDays {
		logger.Info("schedule has a different number of days than requested",
			zap.Int("requested", schedule.TotalDays),
			zap.Int("planned", len(schedule.Days)),
		)
	}

	if cfg.Output.Format == config.FormatJSON {
		return report.WriteJSON(stdout, schedule)
	}

	renderer := report.NewRenderer(stdout,
		report.WithHours(cfg.Output.ShowHours),
		report.WithTitles(cfg.Output.ShowTitles),
		report.WithColor(cfg.Output.Color),
		report.WithSummary(cfg.Output.Summary),
	)
	return renderer.Render(schedule)
}
