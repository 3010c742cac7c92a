package analyses

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"

	"joel-backend/internal/llm"
)

const agentRetryBaseDelay = 300 * time.Millisecond

type retryingAgent struct {
	base       llm.Agent
	requestID  string
	analysisID string
}

func newRetryingAgent(base llm.Agent, analysisID, requestID string) llm.Agent {
	if base == nil {
		return nil
	}
	return retryingAgent{
		base:       base,
		requestID:  requestID,
		analysisID: analysisID,
	}
}

// Run retries exactly once on transient failures, after a short delay.
func (r retryingAgent) Run(ctx context.Context, input llm.RunInput) (string, error) {
	out, err := r.base.Run(ctx, input)
	if err == nil || !shouldRetryAgent(err) {
		return out, err
	}

	log.Printf("agent retry attempt=1 request_id=%s analysis_id=%s error=%s", r.requestID, r.analysisID, sanitizeError(err))
	select {
	case <-time.After(agentRetryBaseDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return r.base.Run(ctx, input)
}

func shouldRetryAgent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// Deadlines come from the per-call timeout; retrying inside the same
		// context would fail immediately anyway.
		return false
	}
	if errors.Is(err, llm.ErrEmptyOutput) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "status 5") || strings.Contains(msg, "overloaded") || strings.Contains(msg, "rate limit") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
