package main

import (
	"bytes"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/dto"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Outcome classifies a purchase response
type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomeOutOfStock        Outcome = "out of stock"
	OutcomeInsufficientFunds Outcome = "insufficient funds"
	OutcomeBusy              Outcome = "store busy"
	OutcomeError             Outcome = "error"
)

// TestResult contains metrics for a single request
type TestResult struct {
	Outcome      Outcome
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests     int
	TotalTime         time.Duration
	MinResponseTime   time.Duration
	MaxResponseTime   time.Duration
	TotalResponseTime time.Duration
	ResponseTimes     []time.Duration
	Outcomes          map[Outcome]int
	ErrorCounts       map[string]int
	BuyerStats        map[string]int
	Lock              sync.Mutex
}

// Buyer is a registered account with a live session
type Buyer struct {
	Username string
	Token    string
}

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of purchases to attempt")
	buyerCount := flag.Int("buyers", 3, "Number of buyer accounts to register")
	itemID := flag.Uint64("item", 1, "Item id to buy")
	quantity := flag.Int("q", 1, "Quantity per purchase")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	delayMs := flag.Int("delay", 100, "Delay between requests in milliseconds")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	runID := rand.Intn(1000000)
	buyers := make([]Buyer, 0, *buyerCount)
	for i := 0; i < *buyerCount; i++ {
		buyer, err := registerBuyer(client, *baseURL, fmt.Sprintf("load%d_%d", runID, i))
		if err != nil {
			fmt.Printf("Failed to register buyer %d: %v\n", i, err)
			return
		}
		buyers = append(buyers, buyer)
	}

	fmt.Printf("Load testing purchases of item %d across %d buyers\n", *itemID, len(buyers))
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)
	fmt.Printf("Total requests: %d\n", *totalRequests)
	fmt.Printf("Delay between requests: %d ms\n", *delayMs)

	stats := &TestStats{
		TotalRequests:   *totalRequests,
		MinResponseTime: time.Hour,
		ResponseTimes:   make([]time.Duration, 0, *totalRequests),
		Outcomes:        make(map[Outcome]int),
		ErrorCounts:     make(map[string]int),
		BuyerStats:      make(map[string]int),
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(client, *baseURL, *delayMs, buyers, dto.PurchaseRequest{ItemID: *itemID, Quantity: *quantity}, jobs, results, stats)
		}()
	}

	go func() {
		for i := 0; i < *totalRequests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	var collected sync.WaitGroup
	collected.Add(1)
	go func() {
		defer collected.Done()
		for result := range results {
			stats.Lock.Lock()
			stats.Outcomes[result.Outcome]++
			if result.Error != nil {
				stats.ErrorCounts[result.Error.Error()]++
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

	ticker := time.NewTicker(1 * time.Second)
	go func() {
		for range ticker.C {
			stats.Lock.Lock()
			completed := len(stats.ResponseTimes)
			if completed > 0 {
				fmt.Printf("Progress: %d/%d requests completed (%.1f%%)\n",
					completed, stats.TotalRequests, float64(completed)/float64(stats.TotalRequests)*100)
			}
			stats.Lock.Unlock()
		}
	}()

	wg.Wait()
	close(results)
	collected.Wait()
	ticker.Stop()

	stats.TotalTime = time.Since(startTime)

	printResults(stats)
}

func registerBuyer(client *http.Client, baseURL, username string) (Buyer, error) {
	creds, err := json.Marshal(dto.CredentialsRequest{Username: username, Password: "load-test"})
	if err != nil {
		return Buyer{}, err
	}

	resp, err := client.Post(baseURL+"/auth/register", "application/json", bytes.NewReader(creds))
	if err != nil {
		return Buyer{}, err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return Buyer{}, fmt.Errorf("register: HTTP status code %d", resp.StatusCode)
	}

	resp, err = client.Post(baseURL+"/auth/login", "application/json", bytes.NewReader(creds))
	if err != nil {
		return Buyer{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Buyer{}, fmt.Errorf("login: HTTP status code %d", resp.StatusCode)
	}

	var session dto.SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return Buyer{}, err
	}
	return Buyer{Username: username, Token: session.Token}, nil
}

func worker(client *http.Client, baseURL string, delayMs int, buyers []Buyer,
	purchase dto.PurchaseRequest, jobs <-chan int, results chan<- TestResult, stats *TestStats) {

	body, err := json.Marshal(purchase)
	if err != nil {
		for range jobs {
			results <- TestResult{Outcome: OutcomeError, Error: err}
		}
		return
	}

	for range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		buyer := buyers[rand.Intn(len(buyers))]
		stats.Lock.Lock()
		stats.BuyerStats[buyer.Username]++
		stats.Lock.Unlock()

		req, err := http.NewRequest(http.MethodPost, baseURL+"/purchases", bytes.NewReader(body))
		if err != nil {
			results <- TestResult{Outcome: OutcomeError, Error: err}
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+buyer.Token)

		startTime := time.Now()
		resp, err := client.Do(req)
		result := TestResult{ResponseTime: time.Since(startTime)}

		if err != nil {
			result.Outcome = OutcomeError
			result.Error = err
		} else {
			result.StatusCode = resp.StatusCode
			result.Outcome = classify(resp.StatusCode)
			if result.Outcome == OutcomeError {
				result.Error = fmt.Errorf("HTTP status code %d", resp.StatusCode)
			}
			resp.Body.Close()
		}

		results <- result
	}
}

func classify(status int) Outcome {
	switch status {
	case http.StatusOK:
		return OutcomeSuccess
	case http.StatusConflict:
		return OutcomeOutOfStock
	case http.StatusPaymentRequired:
		return OutcomeInsufficientFunds
	case http.StatusLocked:
		return OutcomeBusy
	default:
		return OutcomeError
	}
}

func printResults(stats *TestStats) {
	successes := stats.Outcomes[OutcomeSuccess]
	rawTps := float64(successes) / stats.TotalTime.Seconds()
	theoreticalTps := float64(stats.TotalRequests) / stats.TotalTime.Seconds()

	var avgResponseTime time.Duration
	var p50, p90, p95, p99 time.Duration
	if len(stats.ResponseTimes) > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(len(stats.ResponseTimes))

		sortedTimes := make([]time.Duration, len(stats.ResponseTimes))
		copy(sortedTimes, stats.ResponseTimes)
		sort.Slice(sortedTimes, func(i, j int) bool { return sortedTimes[i] < sortedTimes[j] })

		p50 = sortedTimes[len(sortedTimes)*50/100]
		p90 = sortedTimes[len(sortedTimes)*90/100]
		p95 = sortedTimes[len(sortedTimes)*95/100]
		p99 = sortedTimes[len(sortedTimes)*99/100]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	for _, outcome := range []Outcome{OutcomeSuccess, OutcomeOutOfStock, OutcomeInsufficientFunds, OutcomeBusy, OutcomeError} {
		count := stats.Outcomes[outcome]
		fmt.Printf("%-20s %d (%.1f%%)\n", string(outcome)+":", count,
			float64(count)/float64(stats.TotalRequests)*100)
	}
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())

	fmt.Println("\n----------------- PERFORMANCE -----------------")
	fmt.Printf("Successful TPS:      %.2f\n", rawTps)
	fmt.Printf("Request TPS:         %.2f\n", theoreticalTps)

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avgResponseTime)
	fmt.Printf("Minimum Response:    %v\n", stats.MinResponseTime)
	fmt.Printf("Maximum Response:    %v\n", stats.MaxResponseTime)
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P90 Response:        %v\n", p90)
	fmt.Printf("P95 Response:        %v\n", p95)
	fmt.Printf("P99 Response:        %v\n", p99)

	fmt.Println("\n----------------- BUYER DISTRIBUTION -----------------")
	for buyer, count := range stats.BuyerStats {
		fmt.Printf("%-20s: %d requests (%.1f%%)\n", buyer, count,
			float64(count)/float64(stats.TotalRequests)*100)
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
