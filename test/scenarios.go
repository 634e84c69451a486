// Package test holds smoke scenarios run by cmd/testrunner against a live
// planet map server.
package test

import (
	"fmt"
	"sync/atomic"
)

// uniqueCounter provides unique request names within a single run
var uniqueCounter uint64

func uniqueName(base string) string {
	return fmt.Sprintf("%s-%d", base, atomic.AddUint64(&uniqueCounter, 1))
}

// Verbose controls whether detailed logging is shown during tests
var Verbose = false

// TestResult represents the result of a test
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

func pass(name, format string, args ...any) TestResult {
	return TestResult{Name: name, Passed: true, Message: fmt.Sprintf(format, args...)}
}

func fail(name, format string, args ...any) TestResult {
	return TestResult{Name: name, Passed: false, Message: fmt.Sprintf(format, args...)}
}

// logAction logs a test action when verbose mode is enabled
func logAction(testName, action string) {
	if Verbose {
		fmt.Printf("  [%s] %s\n", testName, action)
	}
}

// logResult logs an expected vs actual result when verbose mode is enabled
func logResult(testName string, success bool, detail string) {
	if Verbose {
		status := "OK"
		if !success {
			status = "FAIL"
		}
		fmt.Printf("  [%s] %s: %s\n", testName, status, detail)
	}
}

// RunAllTests runs every scenario in order against serverAddr.
func RunAllTests(serverAddr string) []TestResult {
	results := make([]TestResult, 0)

	// Group 1: Worlds
	results = append(results, TestCreateWorldDefaults(serverAddr))
	results = append(results, TestCreateWorldOverrides(serverAddr))
	results = append(results, TestCreateWorldWrongTypes(serverAddr))
	results = append(results, TestLookupWorld(serverAddr))
	results = append(results, TestLookupErrors(serverAddr))
	results = append(results, TestConcurrentCreation(serverAddr))

	// Group 2: Tiles
	results = append(results, TestTileFetch(serverAddr))
	results = append(results, TestTileDeterminism(serverAddr))
	results = append(results, TestTileFallback(serverAddr))
	results = append(results, TestShallowZoomIsUniform(serverAddr))

	// Group 3: Pages
	results = append(results, TestHealth(serverAddr))
	results = append(results, TestFallbackPage(serverAddr))
	results = append(results, TestCORSHeader(serverAddr))

	return results
}

// PrintResults prints a summary of results
func PrintResults(results []TestResult) {
	passed := 0
	failed := 0

	fmt.Println("============================================================")
	fmt.Println("Smoke Test Results")
	fmt.Println("============================================================")
	fmt.Println()

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Printf("[%s] %s: %s\n", status, r.Name, r.Message)
	}

	fmt.Println()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)
	fmt.Println("------------------------------------------------------------")
}
