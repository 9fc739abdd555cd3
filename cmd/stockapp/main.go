package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kissncome-byte/stock-app/internal/config"
	"github.com/kissncome-byte/stock-app/internal/decision"
	"github.com/kissncome-byte/stock-app/internal/indicator"
	"github.com/kissncome-byte/stock-app/internal/journal"
	"github.com/kissncome-byte/stock-app/internal/planner"
	"github.com/kissncome-byte/stock-app/internal/provider"
	"github.com/kissncome-byte/stock-app/internal/scanner"
)

var (
	cfgFile     string
	format      string
	verbose     bool
	capital     float64
	riskPct     float64
	setupPolicy string
	noQuote     bool
	workers     int
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "stockapp",
		Short: "Taiwan stock trade-plan engine",
		Long: `Stockapp turns daily TWSE/TPEx price history plus a live quote into a
rule-based trade plan: breakout and pullback scenarios with entries,
stops, resistance-level targets and risk-budgeted position sizes.

Examples:
  stockapp plan 2330
  stockapp plan 2330 --capital 2000000 --risk 0.5 --format json
  stockapp scan 2330,2454,2603 --workers 5`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "output format: table, json")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "show debug logging")

	planCmd := &cobra.Command{
		Use:   "plan <symbol>",
		Short: "Compute the trade plan for one symbol",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlan,
	}
	planCmd.Flags().Float64Var(&capital, "capital", 0, "total capital in TWD (overrides config)")
	planCmd.Flags().Float64Var(&riskPct, "risk", 0, "risk per trade in percent (overrides config)")
	planCmd.Flags().StringVar(&setupPolicy, "setup-policy", "", "setup policy: informational, strict")
	planCmd.Flags().BoolVar(&noQuote, "no-quote", false, "skip the live quote and price off the last close")

	scanCmd := &cobra.Command{
		Use:   "scan <symbols>",
		Short: "Compute trade plans for a comma-separated symbol list",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	scanCmd.Flags().IntVar(&workers, "workers", 0, "number of parallel workers (overrides config)")
	scanCmd.Flags().Float64Var(&capital, "capital", 0, "total capital in TWD (overrides config)")
	scanCmd.Flags().Float64Var(&riskPct, "risk", 0, "risk per trade in percent (overrides config)")
	scanCmd.Flags().BoolVar(&noQuote, "no-quote", false, "skip live quotes and price off last closes")

	rootCmd.AddCommand(planCmd, scanCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if capital > 0 {
		cfg.Risk.TotalCapital = capital
	}
	if riskPct > 0 {
		cfg.Risk.RiskPerTradePct = riskPct
	}
	if setupPolicy != "" {
		cfg.Gates.SetupPolicy = decision.SetupPolicy(setupPolicy)
	}
	if workers > 0 {
		cfg.Scanner.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func buildPlanner(cfg *config.Config) (*planner.Planner, error) {
	if cfg.FinMind.Token == "" {
		return nil, fmt.Errorf("no FinMind token. Set FINMIND_TOKEN or finmind.token in %s", cfgFile)
	}

	start, err := time.Parse("2006-01-02", cfg.FinMind.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date %q: %w", cfg.FinMind.StartDate, err)
	}

	bars := provider.NewCachingBarProvider(
		provider.NewFinMindProvider(cfg.FinMind.Token, cfg.FinMind.RateLimit, cfg.Market.SharesPerLot))

	var quotes provider.QuoteProvider
	if !noQuote {
		quotes = provider.NewTWSEQuoteProvider(cfg.Quote.RateLimit, cfg.Quote.Timeout)
	}

	opts := indicator.Options{
		SharesPerLot: cfg.Market.SharesPerLot,
		TurnoverUnit: cfg.Market.TurnoverUnit,
	}

	return planner.New(bars, quotes, start, opts, cfg.Risk, cfg.Gates), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted.")
		cancel()
	}()

	return ctx, cancel
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p, err := buildPlanner(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	d, err := p.Plan(ctx, args[0])
	if err != nil {
		return err
	}

	if cfg.Journal.Enabled {
		if err := recordPlan(cfg.Journal.Path, d); err != nil {
			log.Warn().Err(err).Msg("journaling plan failed")
		}
	}

	if format == "json" {
		return outputJSON(d)
	}
	outputDecision(d)
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p, err := buildPlanner(cfg)
	if err != nil {
		return err
	}

	symbols := splitSymbols(args[0])
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols to scan")
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("Scanning %d symbols...\n\n", len(symbols))

	bar := progressbar.NewOptions(len(symbols),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Scanning"),
	)

	s := scanner.NewScanner(p, cfg.Scanner.Workers, cfg.Scanner.Timeout)
	s.SetProgressCallback(func(scanned, total int) {
		bar.Set(scanned)
	})

	results := s.Scan(ctx, symbols)
	bar.Finish()
	fmt.Println()

	if cfg.Journal.Enabled {
		for _, r := range results {
			if r.Decision == nil {
				continue
			}
			if err := recordPlan(cfg.Journal.Path, r.Decision); err != nil {
				log.Warn().Err(err).Str("symbol", r.Symbol).Msg("journaling plan failed")
				break
			}
		}
	}

	if format == "json" {
		return outputScanJSON(results)
	}
	outputScanTable(results)
	return nil
}

func splitSymbols(list string) []string {
	var symbols []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

func recordPlan(path string, d *decision.Decision) error {
	j, err := journal.NewSQLite(path)
	if err != nil {
		return err
	}
	defer j.Close()
	return j.RecordDecision(d)
}

func outputDecision(d *decision.Decision) {
	fmt.Printf("[%s] price %.2f (%s) | tick %.3f | bars %d | risk budget %.0f TWD\n",
		d.Symbol, d.CurrentPrice, d.PriceSource, d.Tick, d.Bars, d.RiskBudget)
	fmt.Printf("ATR14 %.2f | MA20 %.2f | turnover MA20 %.2f | pivot60 %.2f | res120 %.2f | res252 %.2f\n\n",
		d.Last.ATR14.V, d.Last.MA20.V, d.Last.TurnoverMA20.V,
		d.Levels.Pivot60, d.Levels.Res120, d.Levels.Res252)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Scenario", "Entry", "Stop", "Target", "R:R", "Setup", "Gates", "Enabled", "Lots", "Strength"}),
	)
	for _, leg := range []decision.Leg{d.Breakout, d.Pullback} {
		table.Append(legRow(leg))
	}
	table.Render()

	for _, leg := range []decision.Leg{d.Breakout, d.Pullback} {
		if leg.Note != "" {
			fmt.Printf("  %s: %s\n", leg.Scenario, leg.Note)
		}
	}
}

func legRow(leg decision.Leg) []string {
	return []string{
		string(leg.Scenario),
		fmt.Sprintf("%.2f", leg.Entry),
		fmt.Sprintf("%.2f", leg.Stop),
		fmt.Sprintf("%.2f", leg.Target),
		fmt.Sprintf("%.2f", leg.RewardRisk),
		yesNo(leg.Setup),
		yesNo(leg.Gates.Pass()),
		yesNo(leg.Enabled),
		fmt.Sprintf("%d", leg.Lots),
		fmt.Sprintf("%.0f", leg.Strength),
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func outputScanTable(results []scanner.Result) {
	var failed []scanner.Result
	var ok []scanner.Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		} else {
			ok = append(ok, r)
		}
	}

	// Enabled legs first, strongest breakout on top
	sort.Slice(ok, func(i, j int) bool {
		ei := enabledCount(ok[i].Decision)
		ej := enabledCount(ok[j].Decision)
		if ei != ej {
			return ei > ej
		}
		return ok[i].Decision.Breakout.Strength > ok[j].Decision.Breakout.Strength
	})

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Symbol", "Price", "Breakout", "B-Lots", "Pullback", "P-Lots"}),
	)
	for _, r := range ok {
		d := r.Decision
		table.Append([]string{
			d.Symbol,
			fmt.Sprintf("%.2f", d.CurrentPrice),
			legSummary(d.Breakout),
			fmt.Sprintf("%d", d.Breakout.Lots),
			legSummary(d.Pullback),
			fmt.Sprintf("%d", d.Pullback.Lots),
		})
	}
	table.Render()

	for _, r := range failed {
		fmt.Printf("  %s: %v\n", r.Symbol, r.Err)
	}
	fmt.Printf("\n%d of %d symbols computed\n", len(ok), len(results))
}

func legSummary(leg decision.Leg) string {
	if leg.Enabled {
		return fmt.Sprintf("GO %.2f (rr %.1f)", leg.Entry, leg.RewardRisk)
	}
	return "-"
}

func enabledCount(d *decision.Decision) int {
	n := 0
	if d.Breakout.Enabled {
		n++
	}
	if d.Pullback.Enabled {
		n++
	}
	return n
}

func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputScanJSON(results []scanner.Result) error {
	type scanEntry struct {
		Symbol   string             `json:"symbol"`
		Decision *decision.Decision `json:"decision,omitempty"`
		Error    string             `json:"error,omitempty"`
	}
	entries := make([]scanEntry, 0, len(results))
	for _, r := range results {
		e := scanEntry{Symbol: r.Symbol, Decision: r.Decision}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		entries = append(entries, e)
	}
	return outputJSON(entries)
}
