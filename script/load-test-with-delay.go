package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// wagerRequest is the POST /wagers payload
type wagerRequest struct {
	Mode       string `json:"mode"`
	Selection  string `json:"selection"`
	Stake      string `json:"stake"`
	Multiplier int64  `json:"multiplier"`
}

type loginRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TestResult contains metrics for a single request
type TestResult struct {
	Success      bool
	Rejected     bool
	ResponseTime time.Duration
	StatusCode   int
	Error        string
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests      int
	SuccessfulRequests int
	RejectedRequests   int
	FailedRequests     int
	TotalTime          time.Duration
	MinResponseTime    time.Duration
	MaxResponseTime    time.Duration
	TotalResponseTime  time.Duration
	ResponseTimes      []time.Duration
	ErrorCounts        map[string]int
	PlayerStats        map[string]int
	SelectionStats     map[string]int
	Lock               sync.Mutex
}

type player struct {
	identity string
	token    string
}

var (
	modes      = []string{"30s", "1Min", "3Min", "5Min"}
	selections = []string{"Green", "Red", "Violet", "Big", "Small", "0", "3", "5", "7", "9"}
	stakes     = []string{"1.00", "5.00", "10.00", "50.00"}
)

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of wagers to place")
	identities := flag.String("u", "81200000003", "Comma-separated phones or emails to log in as")
	password := flag.String("p", "demo123", "Password shared by the test accounts")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	delayMs := flag.Int("delay", 100, "Delay between requests in milliseconds")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	var players []player
	for _, identity := range strings.Split(*identities, ",") {
		identity = strings.TrimSpace(identity)
		if identity == "" {
			continue
		}
		token, err := login(client, *baseURL, identity, *password)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", identity, err)
			continue
		}
		players = append(players, player{identity: identity, token: token})
	}
	if len(players) == 0 {
		fmt.Println("No account could log in, aborting")
		return
	}

	fmt.Printf("Load testing wager placement across %d players\n", len(players))
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)
	fmt.Printf("Total requests: %d\n", *totalRequests)
	fmt.Printf("Delay between requests: %d ms\n", *delayMs)

	stats := &TestStats{
		TotalRequests:   *totalRequests,
		MinResponseTime: time.Hour,
		ErrorCounts:     make(map[string]int),
		ResponseTimes:   make([]time.Duration, 0, *totalRequests),
		PlayerStats:     make(map[string]int),
		SelectionStats:  make(map[string]int),
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(client, *baseURL, *delayMs, players, jobs, results, stats)
		}()
	}

	go func() {
		for i := 0; i < *totalRequests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range results {
			stats.Lock.Lock()
			switch {
			case result.Success:
				stats.SuccessfulRequests++
			case result.Rejected:
				stats.RejectedRequests++
				stats.ErrorCounts[result.Error]++
			default:
				stats.FailedRequests++
				stats.ErrorCounts[result.Error]++
			}

			stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
			stats.TotalResponseTime += result.ResponseTime
			if result.ResponseTime < stats.MinResponseTime {
				stats.MinResponseTime = result.ResponseTime
			}
			if result.ResponseTime > stats.MaxResponseTime {
				stats.MaxResponseTime = result.ResponseTime
			}
			stats.Lock.Unlock()
		}
	}()

	startTime := time.Now()
	fmt.Println("Test running...")

	ticker := time.NewTicker(time.Second)
	go func() {
		for range ticker.C {
			stats.Lock.Lock()
			completed := stats.SuccessfulRequests + stats.RejectedRequests + stats.FailedRequests
			if completed > 0 {
				fmt.Printf("Progress: %d/%d requests completed (%.1f%%)\n",
					completed, stats.TotalRequests, float64(completed)/float64(stats.TotalRequests)*100)
			}
			stats.Lock.Unlock()
		}
	}()

	wg.Wait()
	close(results)
	<-collected
	ticker.Stop()

	stats.TotalTime = time.Since(startTime)
	printResults(stats)
}

func login(client *http.Client, baseURL, identity, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Identity: identity, Password: password})
	if err != nil {
		return "", err
	}
	resp, err := client.Post(baseURL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login returned HTTP %d", resp.StatusCode)
	}
	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", err
	}
	return session.Token, nil
}

func worker(client *http.Client, baseURL string, delayMs int, players []player,
	jobs <-chan int, results chan<- TestResult, stats *TestStats) {

	for range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		p := players[rand.Intn(len(players))]
		wager := wagerRequest{
			Mode:       modes[rand.Intn(len(modes))],
			Selection:  selections[rand.Intn(len(selections))],
			Stake:      stakes[rand.Intn(len(stakes))],
			Multiplier: 1,
		}

		stats.Lock.Lock()
		stats.PlayerStats[p.identity]++
		stats.SelectionStats[wager.Selection]++
		stats.Lock.Unlock()

		results <- placeWager(client, baseURL, p.token, wager)
	}
}

func placeWager(client *http.Client, baseURL, token string, wager wagerRequest) TestResult {
	body, err := json.Marshal(wager)
	if err != nil {
		return TestResult{Error: err.Error()}
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+"/wagers", bytes.NewReader(body))
	if err != nil {
		return TestResult{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	startTime := time.Now()
	resp, err := client.Do(req)
	result := TestResult{ResponseTime: time.Since(startTime)}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode == http.StatusCreated {
		result.Success = true
		return result
	}

	// locked rounds and empty balances are business rejections, not failures
	var apiErr errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	result.Rejected = resp.StatusCode < http.StatusInternalServerError
	result.Error = fmt.Sprintf("HTTP %d code %d", resp.StatusCode, apiErr.Code)
	return result
}

func printResults(stats *TestStats) {
	rawTps := float64(stats.SuccessfulRequests) / stats.TotalTime.Seconds()
	theoreticalTps := float64(stats.TotalRequests) / stats.TotalTime.Seconds()

	var avgResponseTime time.Duration
	if len(stats.ResponseTimes) > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(len(stats.ResponseTimes))
	}

	var p50, p90, p95, p99 time.Duration
	if len(stats.ResponseTimes) > 0 {
		sorted := make([]time.Duration, len(stats.ResponseTimes))
		copy(sorted, stats.ResponseTimes)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		p50 = sorted[len(sorted)*50/100]
		p90 = sorted[len(sorted)*90/100]
		p95 = sorted[len(sorted)*95/100]
		p99 = sorted[len(sorted)*99/100]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	fmt.Printf("Placed Wagers:       %d (%.1f%%)\n", stats.SuccessfulRequests,
		float64(stats.SuccessfulRequests)/float64(stats.TotalRequests)*100)
	fmt.Printf("Rejected Wagers:     %d (%.1f%%)\n", stats.RejectedRequests,
		float64(stats.RejectedRequests)/float64(stats.TotalRequests)*100)
	fmt.Printf("Failed Requests:     %d (%.1f%%)\n", stats.FailedRequests,
		float64(stats.FailedRequests)/float64(stats.TotalRequests)*100)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())

	fmt.Println("\n----------------- PERFORMANCE -----------------")
	fmt.Printf("Raw TPS:             %.2f (placed wagers / total time)\n", rawTps)
	fmt.Printf("Theoretical TPS:     %.2f (all requests / total time)\n", theoreticalTps)

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avgResponseTime)
	fmt.Printf("Minimum Response:    %v\n", stats.MinResponseTime)
	fmt.Printf("Maximum Response:    %v\n", stats.MaxResponseTime)
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P90 Response:        %v\n", p90)
	fmt.Printf("P95 Response:        %v\n", p95)
	fmt.Printf("P99 Response:        %v\n", p99)

	fmt.Println("\n----------------- PLAYER DISTRIBUTION -----------------")
	for identity, count := range stats.PlayerStats {
		fmt.Printf("%-20s: %d requests\n", identity, count)
	}

	fmt.Println("\n----------------- SELECTION DISTRIBUTION -----------------")
	for selection, count := range stats.SelectionStats {
		fmt.Printf("%-8s: %d requests\n", selection, count)
	}

	if len(stats.ErrorCounts) > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d (%.1f%%)\n", errMsg, count,
				float64(count)/float64(stats.TotalRequests)*100)
		}
	}
	fmt.Println("================================================")
}
