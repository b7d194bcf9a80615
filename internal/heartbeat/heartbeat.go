package heartbeat

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"
)

// Beacon periodically pings an external monitor URL. The monitor alerts on
// the absence of pings, so a failed attempt is only logged and the loop
// simply proceeds to the next scheduled ping: retrying out of cadence would
// mask the very signal the monitor watches for.
type Beacon struct {
	url        string
	interval   time.Duration
	httpClient *http.Client
}

// NewBeacon creates a beacon for the given ping URL. An empty URL disables
// the beacon.
func NewBeacon(url string, interval, requestTimeout time.Duration) *Beacon {
	return &Beacon{
		url:      url,
		interval: interval,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Run sends an optional one-time start signal and then pings on a fixed
// cadence until ctx is cancelled. It blocks; run it in its own goroutine.
func (b *Beacon) Run(ctx context.Context) {
	if b.url == "" {
		log.Printf("[heartbeat] ping URL is empty, skipping")
		return
	}

	// Start signal, useful for monitor-side diagnostics.
	b.ping(ctx, b.url+"/start")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		b.ping(ctx, b.url)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (b *Beacon) ping(ctx context.Context, url string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("[heartbeat] ping request failed: %v", err)
		return
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		log.Printf("[heartbeat] ping failed: %v", err)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
