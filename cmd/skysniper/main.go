// skysniper finds the cheapest flights across Iranian booking sites and
// can watch a route for price drops.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iPurya/SkySniper/pkg/aggregator"
	"github.com/iPurya/SkySniper/pkg/config"
	"github.com/iPurya/SkySniper/pkg/flights"
	"github.com/iPurya/SkySniper/pkg/logging"
	"github.com/iPurya/SkySniper/pkg/metrics"
	"github.com/iPurya/SkySniper/pkg/monitor"
	"github.com/iPurya/SkySniper/pkg/version"

	// Import agency to register the sources
	_ "github.com/iPurya/SkySniper/pkg/flights/agency"
)

const usage = `skysniper - find the cheapest flights, automatically

Usage:
  skysniper [flags] search ORIGIN DESTINATION DATE [search flags]
  skysniper [flags] monitor ORIGIN DESTINATION DATE [monitor flags]
  skysniper [flags] sources

ORIGIN and DESTINATION are IATA city codes (THR, IST, DXB, ...) and DATE
is the departure date in YYYY-MM-DD.
`

func main() {
	var (
		configFile = flag.String("config", "", "Path to configuration file (optional)")
		showVer    = flag.Bool("version", false, "Show version and exit")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVer {
		fmt.Printf("skysniper version %s\n", version.Version)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	agg, err := buildAggregator(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build sources: %v\n", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutting down")
		cancel()
	}()

	switch args[0] {
	case "search":
		err = runSearch(ctx, agg, args[1:])
	case "monitor":
		err = runMonitor(ctx, agg, cfg, logger, args[1:])
	case "sources":
		err = runSources(agg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(2)
	}

	if err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// buildAggregator creates every enabled source from the registry and
// wires them into one aggregator.
func buildAggregator(cfg *config.Config, logger *logging.Logger) (*aggregator.Aggregator, error) {
	var sources []flights.Source
	for _, sc := range cfg.EnabledSources() {
		srcCfg := make(map[string]interface{}, len(sc.Config)+1)
		for k, v := range sc.Config {
			srcCfg[k] = v
		}
		srcCfg["logger"] = logger

		src, err := flights.Create(sc.Name, srcCfg)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", sc.Name, err)
		}
		sources = append(sources, src)
		logger.Debug("Source configured", "source", sc.Name)
	}

	return aggregator.New(sources, cfg.Search.SourceTimeout.ToDuration(), logger), nil
}

func parseSearchArgs(args []string, fs *flag.FlagSet) (flights.SearchParams, error) {
	if err := fs.Parse(args); err != nil {
		return flights.SearchParams{}, err
	}
	rest := fs.Args()
	if len(rest) < 3 {
		return flights.SearchParams{}, fmt.Errorf("%w: expected ORIGIN DESTINATION DATE", flights.ErrInvalidParams)
	}
	return flights.SearchParams{
		Origin:      rest[0],
		Destination: rest[1],
		Date:        rest[2],
	}, nil
}

func runSearch(ctx context.Context, agg *aggregator.Aggregator, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var (
		adults   = fs.Int("adults", 1, "Number of adult passengers")
		children = fs.Int("children", 0, "Number of child passengers")
		infants  = fs.Int("infants", 0, "Number of infant passengers")
		domestic = fs.Bool("domestic", false, "Search domestic flights only")
		srcNames multiFlag
	)
	fs.Var(&srcNames, "source", "Specific source to search (repeatable, default: all)")

	params, err := parseSearchArgs(args, fs)
	if err != nil {
		return err
	}
	params.Adults = *adults
	params.Children = *children
	params.Infants = *infants
	params.Domestic = *domestic
	params.Sources = srcNames

	fmt.Printf("Searching %s -> %s on %s...\n", params.Origin, params.Destination, params.Date)

	result, err := agg.Search(ctx, params)
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func runMonitor(ctx context.Context, agg *aggregator.Aggregator, cfg *config.Config, logger *logging.Logger, args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	var (
		interval = fs.Duration("interval", cfg.Monitor.Interval.ToDuration(), "Check interval")
		target   = fs.String("target", cfg.Monitor.TargetPrice, "Alert when price is at or below this (IRR)")
		initial  = fs.Bool("initial-alert", cfg.Monitor.AlertOnInitial, "Alert on the first observed price")
		domestic = fs.Bool("domestic", false, "Monitor domestic flights only")
	)

	params, err := parseSearchArgs(args, fs)
	if err != nil {
		return err
	}
	params.Adults = 1
	params.Domestic = *domestic

	opts := monitor.Options{
		Interval:       *interval,
		AlertOnInitial: *initial,
		EventBuffer:    cfg.Monitor.EventBuffer,
	}
	if *target != "" {
		opts.TargetPrice, err = decimal.NewFromString(*target)
		if err != nil {
			return fmt.Errorf("%w: %s", config.ErrInvalidTargetPrice, *target)
		}
	}

	mon, err := monitor.New(agg, params, opts, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Watching %s -> %s on %s (every %s)\n",
		params.Origin, params.Destination, params.Date, opts.Interval)
	if opts.TargetPrice.IsPositive() {
		fmt.Printf("Target price: %s\n", formatPrice(opts.TargetPrice))
	}

	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	for event := range mon.Events() {
		printAlert(event)
	}
	return <-done
}

func runSources(agg *aggregator.Aggregator) error {
	fmt.Println("Configured sources:")
	for _, name := range agg.SourceNames() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Printf("\nRegistered sources: %v\n", flights.List())
	return nil
}

// printResult renders the ranked flights as a plain table, cheapest
// first, followed by the per-source outcome.
func printResult(result *aggregator.Result) {
	if len(result.Flights) == 0 {
		fmt.Println("\nNo flights found for this route and date.")
	} else {
		fmt.Printf("\n%-3s %-20s %-10s %-7s %-7s %-8s %-7s %12s  %s\n",
			"#", "Airline", "Flight", "Dep", "Arr", "Duration", "Stops", "Price", "Source")
		for i, f := range result.Flights {
			stops := "Direct"
			if f.Stops > 0 {
				stops = fmt.Sprintf("%d stop", f.Stops)
			}
			fmt.Printf("%-3d %-20.20s %-10.10s %-7s %-7s %-8s %-7s %12s  %s\n",
				i+1, f.Airline, f.FlightNumber,
				f.DepartureTime.Format("15:04"), f.ArrivalTime.Format("15:04"),
				formatDuration(f.Duration), stops, formatPrice(f.Price), f.Source)
		}

		if cheapest, ok := result.Cheapest(); ok {
			fmt.Printf("\nCheapest: %s at %s\n", cheapest.Airline, formatPrice(cheapest.Price))
			if cheapest.DeepLink != "" {
				fmt.Printf("Book at:  %s\n", cheapest.DeepLink)
			}
		}
	}

	fmt.Println()
	for _, st := range result.Statuses {
		switch st.State {
		case aggregator.SourceStateOK:
			fmt.Printf("  %-10s %d flight(s)", st.Source, st.Listings)
			if st.Dropped > 0 {
				fmt.Printf(", %d dropped", st.Dropped)
			}
			fmt.Println()
		case aggregator.SourceStateEmpty:
			fmt.Printf("  %-10s no flights\n", st.Source)
		case aggregator.SourceStateFailed:
			fmt.Printf("  %-10s failed: %s\n", st.Source, st.Error)
		}
	}
}

func printAlert(event monitor.AlertEvent) {
	ts := event.CheckedAt.Format("15:04:05")
	switch event.Reason {
	case monitor.ReasonInitial:
		fmt.Printf("[%s] Initial price: %s (%s via %s)\n",
			ts, formatPrice(event.Flight.Price), event.Flight.Airline, event.Flight.Source)
	case monitor.ReasonNewMinimum:
		drop := ""
		if event.PrevMinimum != nil {
			diff := event.PrevMinimum.Sub(event.Flight.Price)
			pct := diff.Div(*event.PrevMinimum).Mul(decimal.NewFromInt(100))
			drop = fmt.Sprintf(" (-%s, -%s%%)", formatPrice(diff), pct.StringFixed(1))
		}
		fmt.Printf("[%s] PRICE DROP! %s%s (%s via %s)\n",
			ts, formatPrice(event.Flight.Price), drop, event.Flight.Airline, event.Flight.Source)
	case monitor.ReasonTargetReached:
		fmt.Printf("[%s] TARGET REACHED! %s (%s via %s)\n",
			ts, formatPrice(event.Flight.Price), event.Flight.Airline, event.Flight.Source)
		if event.Flight.DeepLink != "" {
			fmt.Printf("          Book at: %s\n", event.Flight.DeepLink)
		}
	}
}

// formatPrice renders an IRR fare in Toman with K/M suffixes, the way
// Iranian sites quote prices (1 Toman = 10 Rial).
func formatPrice(rial decimal.Decimal) string {
	toman := rial.Div(decimal.NewFromInt(10))
	million := decimal.NewFromInt(1_000_000)
	thousand := decimal.NewFromInt(1_000)

	switch {
	case toman.GreaterThanOrEqual(million):
		return toman.Div(million).StringFixed(1) + "M Toman"
	case toman.GreaterThanOrEqual(thousand):
		return toman.Div(thousand).StringFixed(0) + "K Toman"
	default:
		return toman.StringFixed(0) + " Toman"
	}
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %02dm", hours, minutes)
}

// multiFlag collects repeated -source flags.
type multiFlag []string

func (m *multiFlag) String() string { return fmt.Sprint([]string(*m)) }

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}
