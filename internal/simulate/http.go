package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/halverson/rankcast/internal/domain/model"
	"github.com/halverson/rankcast/internal/domain/types"
)

// HTTP status code constants.
const (
	statusOK       = 200
	statusAccepted = 202
)

// settleDelay gives the server's workers time to drain the queue
// before the leaderboard is fetched.
const settleDelay = 5 * time.Second

// httpClient wraps http.Client with a request timeout.
type httpClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// get performs a GET request.
func (c *httpClient) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// post performs a POST request with a JSON body.
func (c *httpClient) post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// drillServer submits a generated season to a live server and fetches
// the resulting leaderboard.
func drillServer(ctx context.Context, config *Config, season *Season, stats *Stats) error {
	client := newHTTPClient(config.Timeout)

	// Step 1: Check server health
	if err := checkServerHealth(ctx, client, config.ServerURL); err != nil {
		return fmt.Errorf("server health check failed: %w", err)
	}

	// Step 2: Load performance records
	if err := loadPerformance(ctx, client, config.ServerURL, season.Records); err != nil {
		return fmt.Errorf("performance load failed: %w", err)
	}

	// Step 3: Submit rankings concurrently
	if err := submitRankings(ctx, client, config, season.Rankings, stats); err != nil {
		return fmt.Errorf("ranking submission failed: %w", err)
	}

	// Step 4: Wait for the queue to drain
	log.Println("⏳ Waiting for rankings to be evaluated...")
	time.Sleep(settleDelay)

	// Step 5: Fetch the leaderboard
	leaderboard, err := getLeaderboard(ctx, client, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	displayLeaderboard(leaderboard)
	return nil
}

// checkServerHealth verifies the server is running.
func checkServerHealth(ctx context.Context, client *httpClient, baseURL string) error {
	log.Println("🩺 Checking server health...")

	resp, err := client.get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != statusOK {
		return fmt.Errorf("server health check failed with status: %d", resp.StatusCode)
	}

	log.Println("✅ Server is healthy")
	return nil
}

// loadPerformance posts the season's performance records week by week.
func loadPerformance(ctx context.Context, client *httpClient, baseURL string, records []model.PerformanceRecord) error {
	log.Printf("📥 Loading %d performance records...", len(records))

	type loadRequest struct {
		Records []model.PerformanceRecord `json:"records"`
	}

	resp, err := client.post(ctx, baseURL+"/performance", loadRequest{Records: records})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != statusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	log.Println("✅ Performance records loaded")
	return nil
}

// submitRankings submits rankings concurrently using a worker pool.
func submitRankings(ctx context.Context, client *httpClient, config *Config, rankings []model.UserRanking, stats *Stats) error {
	log.Printf("📤 Submitting %d rankings with %d workers...", len(rankings), config.Workers)

	url := config.ServerURL + "/rankings"

	var (
		submitted int64
		accepted  int64
		duplicate int64
		failed    int64
	)

	rankingChan := make(chan model.UserRanking, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for ranking := range rankingChan {
				select {
				case <-ctx.Done():
					return
				default:
					atomic.AddInt64(&submitted, 1)
					switch submitSingleRanking(ctx, client, url, ranking) {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					default:
						atomic.AddInt64(&failed, 1)
					}
				}
			}
		}()
	}

	// Send rankings to workers
	go func() {
		defer close(rankingChan)
		for _, ranking := range rankings {
			select {
			case <-ctx.Done():
				return
			case rankingChan <- ranking:
			}
		}
	}()

	wg.Wait()

	stats.RankingsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.RankingsAccepted = int(atomic.LoadInt64(&accepted))
	stats.RankingsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.RankingsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Ranking submission completed:
   Accepted: %d
   Duplicate: %d
   Failed: %d
`, stats.RankingsAccepted, stats.RankingsDuplicate, stats.RankingsFailed)

	return nil
}

// submitSingleRanking submits one ranking and classifies the outcome.
func submitSingleRanking(ctx context.Context, client *httpClient, url string, ranking model.UserRanking) string {
	resp, err := client.post(ctx, url, ranking)
	if err != nil {
		return "failed"
	}
	if _, err := readResponseBody(resp); err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case statusAccepted:
		return "accepted"
	case statusOK:
		return "duplicate"
	default:
		return "failed"
	}
}

// getLeaderboard retrieves the top N leaderboard entries.
func getLeaderboard(ctx context.Context, client *httpClient, config *Config, stats *Stats) ([]types.Entry, error) {
	log.Printf("🥇 Getting top %d leaderboard entries...", config.TopN)

	url := fmt.Sprintf("%s/leaderboard?limit=%d", config.ServerURL, config.TopN)

	resp, err := client.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != statusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var leaderboard []types.Entry
	if err := json.Unmarshal(body, &leaderboard); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.LeaderboardEntries = len(leaderboard)
	log.Printf("✅ Retrieved %d leaderboard entries", len(leaderboard))

	return leaderboard, nil
}

// displayLeaderboard prints the fetched leaderboard.
func displayLeaderboard(leaderboard []types.Entry) {
	if len(leaderboard) == 0 {
		log.Println("⚠️  Leaderboard is empty")
		return
	}

	log.Printf("🏆 Top %d users:", len(leaderboard))
	for _, entry := range leaderboard {
		log.Printf("   %3d. %-24s score=%.2f evaluations=%d",
			entry.Rank, entry.UserID, entry.Score, entry.Evaluations)
	}
}
