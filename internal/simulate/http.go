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
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
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

// seedUsers creates every athlete profile via POST /users.
func seedUsers(ctx context.Context, config *Config, users []User, stats *Stats) error {
	log.Printf("Seeding %d athlete profiles...", len(users))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/users"

	var seeded int
	for _, u := range users {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during seeding: %w", ctx.Err())
		default:
		}
		resp, err := client.Post(url, u)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("failed to read seed response: %w", err)
		}
		if resp.StatusCode != StatusOK {
			return fmt.Errorf("seeding user %s failed with HTTP %d: %s", u.ID, resp.StatusCode, string(body))
		}
		seeded++
	}

	stats.UsersSeeded = seeded
	log.Printf("Seeded %d athlete profiles", seeded)
	return nil
}

// submitScores submits score records concurrently using a worker pool.
func submitScores(ctx context.Context, config *Config, subs []Submission, stats *Stats) error {
	log.Printf("Submitting %d scores with %d workers...", len(subs), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/scores"

	// Counters for statistics
	var (
		accepted  int64
		duplicate int64
		failed    int64
		sent      int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	subChan := make(chan Submission, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for sub := range subChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleScore(client, url, sub)

					atomic.AddInt64(&sent, 1)
					switch result {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&sent)
						log.Printf("Progress: %d/%d sent (accepted: %d, duplicate: %d, failed: %d)",
							total, len(subs), atomic.LoadInt64(&accepted), atomic.LoadInt64(&duplicate), atomic.LoadInt64(&failed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(subChan)
		for _, sub := range subs {
			select {
			case <-ctx.Done():
				return
			case subChan <- sub:
			}
		}
	}()

	wg.Wait()

	stats.SubmissionsSent = int(atomic.LoadInt64(&sent))
	stats.SubmissionsAccepted = int(atomic.LoadInt64(&accepted))
	stats.SubmissionsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.SubmissionsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`Score submission completed:
   Accepted: %d
   Duplicate: %d
   Failed: %d
`, stats.SubmissionsAccepted, stats.SubmissionsDuplicate, stats.SubmissionsFailed)

	return nil
}

// submitSingleScore submits one score and classifies the outcome.
func submitSingleScore(client *HTTPClient, url string, sub Submission) string {
	resp, err := client.Post(url, sub)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case StatusAccepted:
		return "accepted"
	case StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}
