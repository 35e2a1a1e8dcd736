package kv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anna-kv/client/cmd/util"
	"github.com/anna-kv/client/protocol"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for anna clusters",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfOpsPerTest       = 1000
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("How many operations to run per test"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfOpsPerTest = viper.GetInt("ops")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for anna clusters")

	// Print configuration
	config := util.GetClientConfig()
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Threads: %d, Ops per test: %d\n", perfNumThreads, perfOpsPerTest)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]metrics.Timer)

	results["set"] = runTest("set", func(counter int, getKey func(int) protocol.ClientKey) error {
		return conn.Set(getKey(counter), "test")
	})

	largeValue := make([]byte, perfLargeValueSizeKB*1024)
	results["set-large"] = runTest("set-large", func(counter int, getKey func(int) protocol.ClientKey) error {
		return conn.Set(getKey(counter), largeValue)
	})

	results["get"] = runTest("get", func(counter int, getKey func(int) protocol.ClientKey) error {
		key := getKey(counter)
		if err := conn.Set(key, "test"); err != nil {
			return err
		}
		_, err := conn.Get(key)
		return err
	})

	results["get-missing"] = runTest("get-missing", func(counter int, _ func(int) protocol.ClientKey) error {
		key := protocol.ClientKey(fmt.Sprintf("%s/missing-%d", perfKeyPrefix, counter%perfKeySpread))
		_, err := conn.Get(key)
		if protocol.IsCode(err, protocol.ErrCKeyNotFound) {
			return nil // expected
		}
		return err
	})

	results["sadd"] = runTest("sadd", func(counter int, getKey func(int) protocol.ClientKey) error {
		return conn.SAdd(getKey(counter), fmt.Sprintf("member-%d", counter))
	})

	results["incr"] = runTest("incr", func(counter int, getKey func(int) protocol.ClientKey) error {
		_, err := conn.IncrBy(getKey(counter), 1)
		return err
	})

	results["mixed"] = runTest("mixed", func(counter int, getKey func(int) protocol.ClientKey) error {
		key := getKey(counter)
		switch counter % 4 {
		case 0: // set
			return conn.Set(key, "test")
		case 1: // get
			if err := conn.Set(key, "test"); err != nil {
				return err
			}
			_, err := conn.Get(key)
			return err
		case 2: // sadd
			return conn.SAdd(key+"-set", "member")
		default: // incr
			_, err := conn.IncrBy(key+"-cnt", 1)
			return err
		}
	})

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// runTest spreads perfOpsPerTest calls of op over perfNumThreads worker
// goroutines, timing every call into one shared timer.
func runTest(name string, op func(counter int, getKey func(int) protocol.ClientKey) error) metrics.Timer {
	timer := metrics.NewTimer()
	if shouldSkip(name) {
		printResult(name, timer)
		return timer
	}

	getKey := testKeys(name)
	counters := make(chan int, perfOpsPerTest)
	for i := 0; i < perfOpsPerTest; i++ {
		counters <- i
	}
	close(counters)

	var wg sync.WaitGroup
	var errCount int64
	var mu sync.Mutex
	for t := 0; t < perfNumThreads; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for counter := range counters {
				start := time.Now()
				err := op(counter, getKey)
				timer.UpdateSince(start)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if errCount > 0 {
		fmt.Printf("(%s) - %d operations failed\n", name, errCount)
	}
	printResult(name, timer)
	return timer
}

// testKeys returns a key accessor cycling over perfKeySpread keys
func testKeys(prefix string) func(int) protocol.ClientKey {
	keys := make([]protocol.ClientKey, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = protocol.ClientKey(fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i))
	}
	return func(i int) protocol.ClientKey {
		return keys[i%perfKeySpread]
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, timer metrics.Timer) {
	if timer.Count() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	snap := timer.Snapshot()
	fmt.Printf("%-20s%s/op (p99 %s)\t%.0f ops/sec\n",
		test,
		time.Duration(snap.Mean()),
		time.Duration(snap.Percentile(0.99)),
		snap.RateMean())
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]metrics.Timer) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "Count", "MeanNs", "P50Ns", "P99Ns", "OpsPerSec", "Skipped",
		"RoutingIP", "RoutingThreads", "TimeoutSec", "Serializer",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	config := util.GetClientConfig()

	// Write test results
	for test, timer := range results {
		snap := timer.Snapshot()
		row := []string{
			test,
			strconv.FormatInt(snap.Count(), 10),
			fmt.Sprintf("%.0f", snap.Mean()),
			fmt.Sprintf("%.0f", snap.Percentile(0.5)),
			fmt.Sprintf("%.0f", snap.Percentile(0.99)),
			fmt.Sprintf("%.0f", snap.RateMean()),
			strconv.FormatBool(snap.Count() == 0),
			config.RoutingIP,
			strconv.Itoa(int(config.RoutingThreads)),
			fmt.Sprintf("%.0f", config.Timeout.Seconds()),
			viper.GetString("serializer"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
