package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-post-search/config"
	"github.com/aluiziolira/go-post-search/pipeline"
	"github.com/aluiziolira/go-post-search/profile"
	"github.com/aluiziolira/go-post-search/search"
	"github.com/aluiziolira/go-post-search/verify"
)

func main() {
	_ = godotenv.Load()

	defaultCfg := config.DefaultConfig()
	maxResultsDefault := defaultCfg.MaxResults
	if value, ok, err := config.EnvInt("POSTSEARCH_MAX_RESULTS"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid POSTSEARCH_MAX_RESULTS: %v\n", err)
		os.Exit(1)
	} else if ok {
		maxResultsDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("POSTSEARCH_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	network := flag.Int("network", 0, "Network profile: 1 = Facebook, 2 = Instagram (0 prompts)")
	maxResults := flag.Int("max-results", maxResultsDefault, "Search results requested per query")
	maxRetries := flag.Int("max-retries", defaultCfg.MaxRetries, "Attempts per query when rate limited")
	minLength := flag.Int("min-length", defaultCfg.MinQueryLength, "Minimum query length in characters")
	timeout := flag.Duration("timeout", defaultCfg.Timeout, "HTTP timeout per search request")
	outputFormat := flag.String("format", defaultCfg.OutputFormat, "Output format: csv, jsonl, or dual")
	profileFile := flag.String("profiles", "", "Optional YAML file with extra network profiles")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verifyLinks := flag.Bool("verify", false, "Visit found URLs after the run and report reachability")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger.With(slog.String("run_id", uuid.NewString())))
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.MaxResults = *maxResults
	cfg.MaxRetries = *maxRetries
	cfg.MinQueryLength = *minLength
	cfg.Timeout = *timeout
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.ProfileFile = *profileFile
	cfg.MetricsAddr = *metricsAddr
	cfg.VerifyLinks = *verifyLinks
	cfg.Verbose = *verbose

	if err := cfg.LoadCredentials(); err != nil {
		slog.Error("missing credentials", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	profiles := profile.Builtin()
	if cfg.ProfileFile != "" {
		extra, err := profile.LoadFile(cfg.ProfileFile)
		if err != nil {
			slog.Error("loading profiles", slog.Any("error", err))
			os.Exit(1)
		}
		profiles, err = profile.Merge(profiles, extra)
		if err != nil {
			slog.Error("loading profiles", slog.Any("error", err))
			os.Exit(1)
		}
	}

	stdin := bufio.NewReader(os.Stdin)
	choice := *network
	if choice == 0 {
		choice = promptNetwork(stdin, profiles)
	}
	selected, err := profile.Select(profiles, choice)
	if err != nil {
		slog.Error("invalid network selection", slog.Any("error", err))
		os.Exit(1)
	}

	inputFile := flag.Arg(0)
	if inputFile == "" {
		inputFile = promptInputFile(stdin)
	}
	if !strings.EqualFold(filepath.Ext(inputFile), ".csv") {
		slog.Error("input file must be a .csv", slog.String("file", inputFile))
		os.Exit(1)
	}

	table, err := pipeline.ReadTable(inputFile)
	if err != nil {
		slog.Error("reading input", slog.Any("error", err))
		os.Exit(1)
	}

	client, err := search.NewClient(cfg)
	if err != nil {
		slog.Error("initialising search client", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(client.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	slog.Info("starting url search",
		slog.String("network", selected.Name),
		slog.String("input", inputFile),
		slog.Int("rows", len(table.Rows)),
	)

	startTime := time.Now()
	processor := pipeline.NewProcessor(client, cfg.MinQueryLength)
	out, stats, err := processor.Run(context.Background(), table, selected)
	if err != nil {
		slog.Error("processing failed", slog.Any("error", err))
		os.Exit(1)
	}

	outputFile := pipeline.OutputPath(inputFile, cfg.OutputSuffix)
	writer, err := createWriter(cfg.OutputFormat, outputFile)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Write(out); err != nil {
		slog.Error("writing output", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Close(); err != nil {
		slog.Error("closing output", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	verified := -1
	if cfg.VerifyLinks {
		verified = verifyFoundLinks(out, selected, cfg.Timeout)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(stats, time.Since(startTime), outputFile, verified)
}

func promptNetwork(r *bufio.Reader, profiles []profile.Profile) int {
	fmt.Println("Choose the social network:")
	for i, p := range profiles {
		fmt.Printf("%d - %s\n", i+1, p.Name)
	}
	line, err := r.ReadString('\n')
	if err != nil {
		return 0
	}
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0
	}
	return choice
}

func createWriter(format, filename string) (pipeline.OutputWriter, error) {
	switch format {
	case "csv":
		return pipeline.NewCSVWriter(filename)
	case "jsonl":
		return pipeline.NewJSONLWriter(jsonlName(filename))
	case "dual":
		return pipeline.NewDualWriter(filename, jsonlName(filename))
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func jsonlName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jsonl"
}

func promptInputFile(r *bufio.Reader) string {
	files := listFiles(".")
	for {
		fmt.Print("Enter the extraction file name (or '?' to list): ")
		line, err := r.ReadString('\n')
		if err != nil {
			return ""
		}
		input := strings.TrimSpace(line)

		switch {
		case input == "?":
			for i, file := range files {
				fmt.Printf("%d. %s\n", i+1, file)
			}
		case input == "":
			continue
		default:
			if index, err := strconv.Atoi(input); err == nil {
				if index >= 1 && index <= len(files) {
					return files[index-1]
				}
				fmt.Println("Invalid file number. Please try again.")
				continue
			}
			return input
		}
	}
}

func listFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files
}

func verifyFoundLinks(t *pipeline.Table, p profile.Profile, timeout time.Duration) int {
	urlIdx, ok := t.ColumnIndex(p.URLColumn)
	if !ok {
		return 0
	}
	var links []string
	for _, row := range t.Rows {
		if row[urlIdx] != "" {
			links = append(links, row[urlIdx])
		}
	}
	if len(links) == 0 {
		return 0
	}

	verifier, err := verify.New(p, timeout, "go-post-search/1.0")
	if err != nil {
		slog.Error("initialising verifier", slog.Any("error", err))
		return 0
	}
	reachable, failed := verifier.Check(links)
	for _, link := range failed {
		slog.Warn("found url did not resolve", slog.String("url", link))
	}
	return reachable
}

func printSummary(stats pipeline.RunStats, duration time.Duration, outputFile string, verified int) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Search complete")
	fmt.Printf("  Total rows:    %d\n", stats.Total)
	fmt.Printf("  URLs found:    %d\n", stats.Found)
	fmt.Printf("  Skipped:       %d (insufficient text)\n", stats.Skipped)
	fmt.Printf("  Not found:     %d\n", stats.NotFound())
	if verified >= 0 {
		fmt.Printf("  Verified:      %d/%d\n", verified, stats.Found)
	}
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
