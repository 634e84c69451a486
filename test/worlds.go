package test

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/lawnchairsociety/planetmap/internal/testclient"
)

// =============================================================================
// Group 1: Worlds
// =============================================================================

// TestCreateWorldDefaults creates a world with no body and checks every
// default was filled.
func TestCreateWorldDefaults(serverAddr string) TestResult {
	const testName = "Create World Defaults"

	client := testclient.NewTestClient(uniqueName("defaults"), serverAddr)
	logAction(testName, "GET /new with no body")
	resp, err := client.Get("/new")
	if err != nil {
		return fail(testName, "Request failed: %v", err)
	}
	world, err := resp.JSON()
	if err != nil {
		return fail(testName, "%v", err)
	}

	for _, key := range []string{"name", "id", "seed", "sea_level", "temperature", "humidity"} {
		if _, ok := world[key]; !ok {
			return fail(testName, "Missing key %q in %v", key, world)
		}
	}
	logResult(testName, len(world["seed"]) == 16, fmt.Sprintf("seed %q", world["seed"]))
	if len(world["seed"]) != 16 {
		return fail(testName, "Generated seed %q is not 16 characters", world["seed"])
	}
	if world["name"] != "" {
		return fail(testName, "Expected empty name, got %q", world["name"])
	}
	return pass(testName, "Created world %s", world["id"])
}

// TestCreateWorldOverrides checks supplied values come back verbatim.
func TestCreateWorldOverrides(serverAddr string) TestResult {
	const testName = "Create World Overrides"

	client := testclient.NewTestClient(uniqueName("overrides"), serverAddr)
	body := `{"name":"Terra","seed":"abc","sea_level":12.5,"temperature":-3,"humidity":101}`
	logAction(testName, "POST /new "+body)
	world, err := client.CreateWorld(body)
	if err != nil {
		return fail(testName, "%v", err)
	}

	want := map[string]string{"name": "Terra", "seed": "abc", "sea_level": "12.5", "temperature": "-3", "humidity": "101"}
	for k, v := range want {
		logResult(testName, world[k] == v, fmt.Sprintf("%s=%q", k, world[k]))
		if world[k] != v {
			return fail(testName, "%s = %q, want %q", k, world[k], v)
		}
	}
	return pass(testName, "World %s kept all overrides", world["id"])
}

// TestCreateWorldWrongTypes sends climate values as strings, which must be
// treated as unset and replaced by random defaults.
func TestCreateWorldWrongTypes(serverAddr string) TestResult {
	const testName = "Create World Wrong Types"

	client := testclient.NewTestClient(uniqueName("types"), serverAddr)
	world, err := client.CreateWorld(`{"name":"Types","sea_level":"40","temperature":"","humidity":"wet"}`)
	if err != nil {
		return fail(testName, "%v", err)
	}
	if world["sea_level"] == "40" {
		return fail(testName, "sea_level string was used verbatim")
	}
	if world["sea_level"] == "" || world["temperature"] == "" || world["humidity"] == "" {
		return fail(testName, "Wrong-typed climate fields were not defaulted: %v", world)
	}
	return pass(testName, "Wrong-typed climate fields defaulted")
}

// TestLookupWorld creates a world and fetches it back.
func TestLookupWorld(serverAddr string) TestResult {
	const testName = "Lookup World"

	client := testclient.NewTestClient(uniqueName("lookup"), serverAddr)
	created, err := client.CreateWorld(`{"name":"Lookup"}`)
	if err != nil {
		return fail(testName, "%v", err)
	}

	logAction(testName, "GET /get/"+created["id"])
	resp, err := client.GetWorld(created["id"])
	if err != nil {
		return fail(testName, "Request failed: %v", err)
	}
	fetched, err := resp.JSON()
	if err != nil {
		return fail(testName, "%v", err)
	}
	for k, v := range created {
		if fetched[k] != v {
			return fail(testName, "%s = %q after lookup, want %q", k, fetched[k], v)
		}
	}
	return pass(testName, "World %s round-tripped", created["id"])
}

// TestLookupErrors checks the error bodies for bad and unknown ids.
func TestLookupErrors(serverAddr string) TestResult {
	const testName = "Lookup Errors"

	client := testclient.NewTestClient(uniqueName("lookup-errors"), serverAddr)
	cases := []struct {
		id     string
		status int
	}{
		{"not-a-number", http.StatusBadRequest},
		{"0", http.StatusNotFound},
	}
	for _, tc := range cases {
		resp, err := client.GetWorld(tc.id)
		if err != nil {
			return fail(testName, "Request failed: %v", err)
		}
		body, err := resp.JSON()
		if err != nil {
			return fail(testName, "%v", err)
		}
		logResult(testName, resp.Status == tc.status, fmt.Sprintf("%s -> %d %q", tc.id, resp.Status, body["error"]))
		if resp.Status != tc.status || body["error"] == "" {
			return fail(testName, "id %q: status %d body %v", tc.id, resp.Status, body)
		}
	}
	return pass(testName, "Errors reported as JSON")
}

// TestConcurrentCreation creates worlds in parallel and checks the ids are
// distinct.
func TestConcurrentCreation(serverAddr string) TestResult {
	const testName = "Concurrent Creation"
	// Stays under the default per-IP in-flight cap.
	const n = 24

	var (
		mu   sync.Mutex
		ids  = make(map[string]bool)
		errs []string
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := testclient.NewTestClient(uniqueName("concurrent"), serverAddr)
			world, err := client.CreateWorld(`{}`)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err.Error())
				return
			}
			ids[world["id"]] = true
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		return fail(testName, "%d requests failed: %s", len(errs), strings.Join(errs, "; "))
	}
	if len(ids) != n {
		return fail(testName, "Got %d distinct ids from %d creations", len(ids), n)
	}
	return pass(testName, "%d distinct ids", n)
}
