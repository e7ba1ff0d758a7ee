package ratelimit

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// RetryStrategy defines the backoff intervals for rate limit retries
type RetryStrategy struct {
	Intervals []time.Duration
}

// DefaultRetryStrategy returns the default backoff strategy
func DefaultRetryStrategy() *RetryStrategy {
	return &RetryStrategy{
		Intervals: []time.Duration{
			30 * time.Second,
			time.Minute,
			2 * time.Minute,
			5 * time.Minute, // every later retry
		},
	}
}

// RateLimitEvent represents a rate limit occurrence
type RateLimitEvent struct {
	Timestamp    time.Time `json:"timestamp" ts_type:"string"`
	Service      string    `json:"service"`      // tiling service host
	StatusCode   int       `json:"statusCode"`   // HTTP status code (429, 503, ...)
	RetryAttempt int       `json:"retryAttempt"` // 0 = first occurrence
	NextRetryAt  time.Time `json:"nextRetryAt" ts_type:"string"`
	Message      string    `json:"message"`
}

// Handler tracks rate limiting per tiling service and keeps requests away
// from a limited service until its backoff has passed
type Handler struct {
	mu          sync.RWMutex
	rateLimited map[string]*RateLimitEvent
	strategy    *RetryStrategy
	onRateLimit func(event RateLimitEvent)
	onRecovered func(service string)
	now         func() time.Time
}

// NewHandler creates a new rate limit handler
func NewHandler(strategy *RetryStrategy) *Handler {
	if strategy == nil || len(strategy.Intervals) == 0 {
		strategy = DefaultRetryStrategy()
	}
	return &Handler{
		rateLimited: make(map[string]*RateLimitEvent),
		strategy:    strategy,
		now:         time.Now,
	}
}

// ServiceKey returns the key a request URL is tracked under (its host)
func ServiceKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// SetOnRateLimit sets the callback for rate limit events
func (h *Handler) SetOnRateLimit(callback func(event RateLimitEvent)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRateLimit = callback
}

// SetOnRecovered sets the callback for recovery from rate limit
func (h *Handler) SetOnRecovered(callback func(service string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRecovered = callback
}

// IsRateLimited reports whether requests to service should wait
func (h *Handler) IsRateLimited(service string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	event, limited := h.rateLimited[service]
	return limited && h.now().Before(event.NextRetryAt)
}

// CheckStatus records the status code of a response from service and
// reports whether it signals rate limiting
func (h *Handler) CheckStatus(service string, statusCode int) bool {
	isRateLimited := statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == 509 // Bandwidth Limit Exceeded

	if !isRateLimited {
		h.checkRecovery(service)
		return false
	}

	h.recordRateLimit(service, statusCode)
	return true
}

func (h *Handler) recordRateLimit(service string, statusCode int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	retryAttempt := 0
	if existing, exists := h.rateLimited[service]; exists {
		retryAttempt = existing.RetryAttempt + 1
	}

	interval := h.strategy.Intervals[len(h.strategy.Intervals)-1]
	if retryAttempt < len(h.strategy.Intervals) {
		interval = h.strategy.Intervals[retryAttempt]
	}

	now := h.now()
	event := RateLimitEvent{
		Timestamp:    now,
		Service:      service,
		StatusCode:   statusCode,
		RetryAttempt: retryAttempt,
		NextRetryAt:  now.Add(interval),
		Message:      buildMessage(service, statusCode, retryAttempt, interval),
	}
	h.rateLimited[service] = &event

	log.Printf("[RateLimit] %s rate limited (attempt %d). Next retry at %s",
		service, retryAttempt, event.NextRetryAt.Format(time.RFC3339))

	if h.onRateLimit != nil {
		go h.onRateLimit(event)
	}
}

func (h *Handler) checkRecovery(service string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rateLimited[service]; exists {
		delete(h.rateLimited, service)
		log.Printf("[RateLimit] %s rate limit cleared", service)

		if h.onRecovered != nil {
			go h.onRecovered(service)
		}
	}
}

// ManualRetry clears the backoff so the next request goes through
func (h *Handler) ManualRetry(service string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rateLimited[service]; exists {
		log.Printf("[RateLimit] Manual retry requested for %s", service)
		h.rateLimited[service].NextRetryAt = h.now()
	}
}

// GetCurrentState returns the current rate limit state for a service
func (h *Handler) GetCurrentState(service string) *RateLimitEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if event, exists := h.rateLimited[service]; exists {
		eventCopy := *event
		return &eventCopy
	}
	return nil
}

func buildMessage(service string, statusCode int, retryAttempt int, wait time.Duration) string {
	if retryAttempt == 0 {
		return fmt.Sprintf("%s is rate limiting requests (HTTP %d). Direct exports pause for %s; "+
			"exports open in the browser meanwhile.", service, statusCode, wait)
	}
	return fmt.Sprintf("%s still rate limited (retry attempt %d). Next retry in %s.",
		service, retryAttempt+1, wait)
}
