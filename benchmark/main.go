// Package main provides a performance benchmarking tool for the repometrics CLI.
// It serves a synthetic search API locally and measures execution times across
// population sizes and command types, running each test multiple times, treating
// the first successful run as cold and averaging the rest as warm, and generates
// CSV output for performance analysis and documentation.
//
// Prerequisites:
// - repometrics binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the cache database and command outputs
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Population  int
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	APIURL      string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Populations []int
	Commands    []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	if err := checkPrerequisites(workDir); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	server := httptest.NewServer(searchHandler(1000))
	defer server.Close()

	config := BenchmarkConfig{
		WorkDir:     workDir,
		APIURL:      server.URL,
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Populations: []int{100, 500, 1000},
		Commands:    []string{"collect", "analyze"},
	}

	// Clear the cache using repometrics cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("repometrics", "cache", "clear", "--cache-db-connect", cacheDBPath(config))
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the repometrics binary exists and the work directory is usable
func checkPrerequisites(workDir string) error {
	if _, err := exec.LookPath("repometrics"); err != nil {
		return fmt.Errorf("repometrics binary not found in PATH")
	}
	return os.MkdirAll(workDir, 0o755)
}

// searchHandler serves total synthetic repositories in the search API layout.
func searchHandler(total int) http.Handler {
	items := make([]json.RawMessage, total)
	for i := range total {
		items[i] = json.RawMessage(fmt.Sprintf(
			`{"name":"repo-%04d","full_name":"bench/repo-%04d","stargazers_count":%d,"forks_count":%d,"size":%d,"language":"Java","created_at":"%d-01-01T00:00:00Z","updated_at":"2025-01-01T00:00:00Z"}`,
			i, i, (total-i)*37, i%97, 500+i*131, 2008+i%16))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		start := min(max(page-1, 0)*perPage, len(items))
		end := min(start+perPage, len(items))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"total_count": len(items), "items": items[start:end]})
	})
}

func cacheDBPath(config BenchmarkConfig) string {
	return filepath.Join(config.WorkDir, "bench_cache.db")
}

// runBenchmarks executes all benchmark tests across configured population sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Populations), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, population := range config.Populations {
		fmt.Printf("Benchmarking population %d\n", population)
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, population, command))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, population int, command string) BenchmarkResult {
	fmt.Printf("Running %s with population %d\n", command, population)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, population, command, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Population:  population,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a repometrics command multiple times with the specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, population int, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	outDir := filepath.Join(config.WorkDir, command)
	args := []string{
		command,
		"--api-url", config.APIURL,
		"--population", strconv.Itoa(population),
		"--pace", "0s",
		"--cache-backend", cacheBackend,
		"--cache-db-connect", cacheDBPath(config),
		"--output", "csv",
		"--output-file", filepath.Join(outDir, "output.csv"),
		"--dataset-dir", filepath.Join(outDir, "dataset"),
	}
	if command == "analyze" {
		args = append(args, "--subset", "0", "--seed", "1", "--output-dir", filepath.Join(outDir, "resultados"))
	}
	if cacheBackend == "none" {
		args = slicesWithout(args, "--cache-db-connect")
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("repometrics", args...)

		done := make(chan error, 1)
		go func() {
			_, err := cmd.CombinedOutput()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// slicesWithout drops flag and the value that follows it from args.
func slicesWithout(args []string, flag string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == flag {
			i++
			continue
		}
		out = append(out, args[i])
	}
	return out
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("repometrics_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"population", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{strconv.Itoa(result.Population), result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-6d: No-cache: %s, Cold: %s, Warm: %s\n", result.Population, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
