package main

import (
	"bytes"
	"fmt"
	json "github.com/goccy/go-json"
	"io"
	"math/rand"
	"net"
	"net/http"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numDays      = 730
	numBooks     = 40
)

var firstDay = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== Reading History Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Days: %d | Books: %d\n\n", numDays, numBooks)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Seeding reading days (POST /day) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doAddDay(rng)
	})

	fmt.Println("\n--- Phase 2: Mixed load (50% point writes, 40% reads, 10% bulk) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.30:
			return doAddDay(rng)
		case r < 0.50:
			return doUpdateDay(rng)
		case r < 0.70:
			return doGetHistory()
		case r < 0.90:
			return doGetReport()
		default:
			return doBulk(rng)
		}
	})

	fmt.Println("\n--- Phase 3: Read-heavy load (10% writes, 90% report) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.10 {
			return doRemoveDay(rng)
		}
		return doGetReport()
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func randomDay(rng *rand.Rand) string {
	return firstDay.AddDate(0, 0, rng.Intn(numDays)).Format("2006-01-02")
}

func randomEntry(rng *rand.Rand) map[string]interface{} {
	if rng.Float64() < 0.5 {
		return map[string]interface{}{"source": "manual"}
	}
	return map[string]interface{}{
		"source":  "book",
		"bookIds": []string{fmt.Sprintf("book_%d", rng.Intn(numBooks))},
	}
}

// call sends one request. Conflicts and missing days are expected under
// concurrent writers and are not counted as errors.
func call(method, path string, body interface{}, ok ...int) result {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req, _ := http.NewRequest(method, baseURL+path, reader)
	req.Header.Set("Content-Type", "application/json")

	name := method + " " + strings.SplitN(path, "?", 2)[0]
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{name, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	expected := append(ok, http.StatusConflict, http.StatusNotFound)
	return result{name, resp.StatusCode, lat, !slices.Contains(expected, resp.StatusCode)}
}

func doAddDay(rng *rand.Rand) result {
	entry := randomEntry(rng)
	entry["date"] = randomDay(rng)
	return call(http.MethodPost, "/day", entry, http.StatusCreated)
}

func doUpdateDay(rng *rand.Rand) result {
	body := map[string]interface{}{
		"date":    randomDay(rng),
		"updates": map[string]interface{}{"notes": fmt.Sprintf("page %d", rng.Intn(500))},
	}
	return call(http.MethodPut, "/day", body, http.StatusOK)
}

func doRemoveDay(rng *rand.Rand) result {
	return call(http.MethodDelete, "/day?date="+randomDay(rng), nil, http.StatusNoContent)
}

func doBulk(rng *rand.Rand) result {
	ops := make([]map[string]interface{}, 0, 10)
	for i := 0; i < 10; i++ {
		ops = append(ops, map[string]interface{}{
			"type":  "add",
			"date":  randomDay(rng),
			"entry": randomEntry(rng),
		})
	}
	return call(http.MethodPost, "/bulk", map[string]interface{}{"operations": ops}, http.StatusOK)
}

func doGetHistory() result {
	return call(http.MethodGet, "/history", nil, http.StatusOK)
}

func doGetReport() result {
	return call(http.MethodGet, "/history/report", nil, http.StatusOK)
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
