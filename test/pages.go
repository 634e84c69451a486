package test

import (
	"net/http"
	"strings"

	"github.com/lawnchairsociety/planetmap/internal/testclient"
)

// =============================================================================
// Group 3: Pages
// =============================================================================

// TestHealth checks the health endpoint.
func TestHealth(serverAddr string) TestResult {
	const testName = "Health"

	client := testclient.NewTestClient(uniqueName("health"), serverAddr)
	resp, err := client.Get("/healthz")
	if err != nil {
		return fail(testName, "Request failed: %v", err)
	}
	if resp.Status != http.StatusOK || !strings.Contains(string(resp.Body), `"status":"ok"`) {
		return fail(testName, "Unexpected response %d %s", resp.Status, resp.Body)
	}
	return pass(testName, "%s", strings.TrimSpace(string(resp.Body)))
}

// TestFallbackPage checks unknown routes get the fallback page.
func TestFallbackPage(serverAddr string) TestResult {
	const testName = "Fallback Page"

	client := testclient.NewTestClient(uniqueName("fallback-page"), serverAddr)
	resp, err := client.Get("/no/such/route")
	if err != nil {
		return fail(testName, "Request failed: %v", err)
	}
	logResult(testName, resp.Status == http.StatusNotFound, resp.ContentType)
	if !strings.Contains(string(resp.Body), "Unable to complete request") {
		return fail(testName, "Unexpected body %q", resp.Body)
	}
	return pass(testName, "Fallback page served with %d", resp.Status)
}

// TestCORSHeader checks responses are readable cross-origin.
func TestCORSHeader(serverAddr string) TestResult {
	const testName = "CORS Header"

	client := testclient.NewTestClient(uniqueName("cors"), serverAddr)
	resp, err := client.Get("/healthz")
	if err != nil {
		return fail(testName, "Request failed: %v", err)
	}
	origin := resp.Header.Get("Access-Control-Allow-Origin")
	if origin == "" {
		return fail(testName, "Access-Control-Allow-Origin missing")
	}
	return pass(testName, "Access-Control-Allow-Origin: %s", origin)
}
