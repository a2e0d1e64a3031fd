// Package monitor periodically probes link destinations and logs state
// transitions. It is observational only: it never toggles is_active or
// touches the visit accounting.
package monitor

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/averlane/shortener/internal/repository"
)

// DestinationMonitor checks all stored destinations on a fixed interval
// and reports when one flips between reachable and unreachable.
type DestinationMonitor struct {
	linkRepo    repository.LinkRepository
	interval    time.Duration
	knownStates map[uint]bool // link ID -> last observed reachability
	mu          sync.Mutex
	httpClient  *http.Client
}

func NewDestinationMonitor(linkRepo repository.LinkRepository, interval time.Duration) *DestinationMonitor {
	return &DestinationMonitor{
		linkRepo:    linkRepo,
		interval:    interval,
		knownStates: make(map[uint]bool),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Start runs the probe loop until ctx is cancelled. An immediate sweep is
// done on startup before the first tick.
func (m *DestinationMonitor) Start(ctx context.Context) {
	log.Printf("[MONITOR] Starting destination monitor, interval %v", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("[MONITOR] Destination monitor stopped")
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *DestinationMonitor) sweep(ctx context.Context) {
	links, err := m.linkRepo.GetAllLinks()
	if err != nil {
		log.Printf("[MONITOR] ERROR retrieving links: %v", err)
		return
	}

	for _, link := range links {
		if ctx.Err() != nil {
			return
		}
		reachable := m.isReachable(ctx, link.LongURL)

		m.mu.Lock()
		previous, seen := m.knownStates[link.ID]
		m.knownStates[link.ID] = reachable
		m.mu.Unlock()

		if !seen {
			log.Printf("[MONITOR] Initial state for %s (%s): %s",
				link.Code(), link.LongURL, formatState(reachable))
			continue
		}
		if reachable != previous {
			log.Printf("[NOTIFICATION] Destination of %s (%s) changed from %s to %s",
				link.Code(), link.LongURL, formatState(previous), formatState(reachable))
		}
	}
}

// isReachable issues a HEAD probe; 2xx and 3xx count as reachable.
func (m *DestinationMonitor) isReachable(ctx context.Context, url string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func formatState(reachable bool) string {
	if reachable {
		return "REACHABLE"
	}
	return "UNREACHABLE"
}
