package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/crawlforge/deepcrawl/internal/shutdown"
	"github.com/crawlforge/deepcrawl/internal/state"
	"github.com/crawlforge/deepcrawl/internal/stats"
	"github.com/crawlforge/deepcrawl/pkg/deepcrawl"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	verbose    bool
	debug      bool

	// Crawl flags
	strategy        string
	maxDepth        int
	maxPages        int
	maxConcurrent   int
	requestDelay    time.Duration
	timeout         time.Duration
	includePatterns []string
	excludePatterns []string
	allowedDomains  []string
	useBrowser      bool
	userAgent       string
	archivePath     string
	outputFile      string
	jsonOutput      bool

	// Stats flags
	listRuns bool
	statsRun string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "deepcrawl",
		Short: "deepcrawl - Deep-crawl traversal engine",
		Long: `deepcrawl - A website link-graph traversal engine.

Crawls from a seed URL under breadth-first, depth-first, or best-first
ordering, bounded by depth, page, and concurrency ceilings, and reports
per-page results plus aggregate statistics.`,
		Version: version,
	}

	crawlCmd := &cobra.Command{
		Use:   "crawl [seed-url]",
		Short: "Crawl from a seed URL",
		Long:  "Crawl the link graph reachable from a seed URL and print the report.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCrawl,
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Re-aggregate statistics from an archive",
		Long:  "Recompute statistics for crawl runs stored in a result archive.",
		RunE:  runStats,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("deepcrawl %s\n", version)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug mode")

	crawlCmd.Flags().StringVarP(&strategy, "strategy", "s", "bfs", "Traversal strategy (bfs, dfs, best-first)")
	crawlCmd.Flags().IntVarP(&maxDepth, "max-depth", "d", 3, "Maximum link distance from the seed")
	crawlCmd.Flags().IntVarP(&maxPages, "max-pages", "p", 100, "Maximum pages per run")
	crawlCmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "w", 10, "Maximum simultaneous fetches")
	crawlCmd.Flags().DurationVar(&requestDelay, "delay", 0, "Minimum spacing between requests per worker")
	crawlCmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Per-request timeout")
	crawlCmd.Flags().StringArrayVar(&includePatterns, "include", nil, "URL substrings to include")
	crawlCmd.Flags().StringArrayVar(&excludePatterns, "exclude", nil, "URL substrings to exclude")
	crawlCmd.Flags().StringArrayVar(&allowedDomains, "domain", nil, "Allowed domains (default: seed host)")
	crawlCmd.Flags().BoolVar(&useBrowser, "browser", false, "Fetch with a headless browser (JS rendering)")
	crawlCmd.Flags().StringVar(&userAgent, "user-agent", "", "Override the request user agent")
	crawlCmd.Flags().StringVar(&archivePath, "archive", "", "Archive file for finished runs")
	crawlCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the JSON report to a file")
	crawlCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the JSON report to stdout")

	statsCmd.Flags().StringVar(&archivePath, "archive", "", "Archive file to read")
	statsCmd.Flags().BoolVar(&listRuns, "list", false, "List archived run IDs")
	statsCmd.Flags().StringVar(&statsRun, "run", "", "Run ID to aggregate (default: latest)")
	statsCmd.MarkFlagRequired("archive")

	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCrawl(cmd *cobra.Command, args []string) error {
	seed := args[0]

	config := deepcrawl.DefaultConfig()
	if configFile != "" {
		fileConfig, err := deepcrawl.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		config = fileConfig
	}

	// Command-line flags override the config file.
	if cmd.Flags().Changed("strategy") || config.Strategy == "" {
		config.Strategy = deepcrawl.Strategy(strategy)
	}
	if cmd.Flags().Changed("max-depth") {
		config.MaxDepth = maxDepth
	}
	if cmd.Flags().Changed("max-pages") {
		config.MaxPages = maxPages
	}
	if cmd.Flags().Changed("max-concurrent") {
		config.MaxConcurrent = maxConcurrent
	}
	if cmd.Flags().Changed("delay") {
		config.RequestDelay = requestDelay
	}
	if cmd.Flags().Changed("timeout") {
		config.Timeout = timeout
	}
	if len(includePatterns) > 0 {
		config.IncludePatterns = append(config.IncludePatterns, includePatterns...)
	}
	if len(excludePatterns) > 0 {
		config.ExcludePatterns = append(config.ExcludePatterns, excludePatterns...)
	}
	if len(allowedDomains) > 0 {
		config.AllowedDomains = append(config.AllowedDomains, allowedDomains...)
	}
	if cmd.Flags().Changed("browser") {
		config.Fetch.UseBrowser = useBrowser
	}
	if userAgent != "" {
		config.Fetch.UserAgent = userAgent
	}
	if archivePath != "" {
		config.ArchivePath = archivePath
	}
	config.Verbose = verbose
	config.Debug = debug

	c, err := deepcrawl.New(deepcrawl.WithConfig(config))
	if err != nil {
		return fmt.Errorf("failed to create crawler: %w", err)
	}

	handler := shutdown.NewDefault()
	handler.RegisterFunc("notify", func() {
		fmt.Fprintln(os.Stderr, "\nInterrupted, finishing in-flight pages...")
	})
	handler.Listen()

	report, err := c.Run(handler.Context(), seed)
	if err != nil {
		if report != nil {
			// Partial results from a scheduler fault still get printed.
			printReport(report)
		}
		return fmt.Errorf("crawl failed: %w", err)
	}

	if outputFile != "" {
		if err := writeReportFile(report, outputFile); err != nil {
			return err
		}
	}
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	archive, err := state.OpenArchive(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	if listRuns {
		ids, err := archive.ListRuns()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No archived runs.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	var run *state.RunRecord
	if statsRun != "" {
		run, err = archive.LoadRun(statsRun)
	} else {
		run, err = archive.LatestRun()
	}
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no matching run in archive")
	}

	results := deepcrawl.RecordsToResults(run.Pages)
	aggregated := deepcrawl.ComputeStats(results, deepcrawl.Strategy(run.Strategy))

	fmt.Printf("Run:        %s\n", run.ID)
	fmt.Printf("Seed:       %s\n", run.Seed)
	fmt.Printf("Strategy:   %s\n", run.Strategy)
	fmt.Printf("Duration:   %v\n", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))
	printStats(aggregated, deepcrawl.Strategy(run.Strategy))
	return nil
}

func writeReportFile(report *deepcrawl.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func printReport(report *deepcrawl.Report) {
	fmt.Println()
	fmt.Println("Crawl Summary")
	fmt.Println("-------------")
	fmt.Printf("Seed:       %s\n", report.Seed)
	fmt.Printf("Strategy:   %s\n", report.Strategy)
	fmt.Printf("Duration:   %v\n", report.Duration.Round(time.Millisecond))
	printStats(report.Stats, report.Strategy)

	failed := 0
	for _, res := range report.Results {
		if !res.Success {
			failed++
		}
	}
	if failed > 0 {
		fmt.Println()
		fmt.Println("Failed pages:")
		shown := 0
		for _, res := range report.Results {
			if res.Success {
				continue
			}
			fmt.Printf("  %s: %s\n", res.URL, res.Error)
			shown++
			if shown >= 10 {
				if failed > 10 {
					fmt.Printf("  ... and %d more\n", failed-10)
				}
				break
			}
		}
	}
}

func printStats(s *stats.Statistics, strategy deepcrawl.Strategy) {
	fmt.Printf("Pages:      %d (%d ok, %d failed, %.0f%% success)\n",
		s.TotalPages, s.SuccessfulPages, s.FailedPages, s.SuccessRate*100)
	fmt.Printf("Max depth:  %d (avg %.2f)\n", s.MaxDepthReached, s.AverageDepth)

	if s.PriorityInsights != nil {
		fmt.Println()
		fmt.Println("Score buckets:")
		for _, b := range s.PriorityInsights.Buckets {
			fmt.Printf("  %s: %d pages, avg content %.0f bytes\n", b.Label, b.Pages, b.AvgContentLength)
		}
		fmt.Printf("Best bucket: %s\n", s.PriorityInsights.BestBucket)
	}
	if s.AdaptiveInsights != nil {
		verdict := "did not outperform"
		if s.AdaptiveInsights.Outperformed {
			verdict = "outperformed"
		}
		fmt.Printf("Scorer %s the uniform baseline (lift %.2f)\n", verdict, s.AdaptiveInsights.Lift)
	}
	if strategy == deepcrawl.StrategyDFS && len(s.CrawlPaths) > 0 {
		fmt.Println()
		fmt.Println("Deepest paths:")
		for _, path := range s.DeepestPaths(3) {
			fmt.Printf("  %v\n", path)
		}
	}
}
