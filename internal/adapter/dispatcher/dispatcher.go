// Package dispatcher implements the failover dispatch loop (§4.5): for each
// candidate produced by the Scheduler, rewrite the request for that upstream,
// send it with a timeout, classify the outcome and update health, stopping
// at the first Success or replying with an aggregate failure once every
// candidate has been tried.
package dispatcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clauderelay/proxypool/internal/adapter/pool"
	"github.com/clauderelay/proxypool/internal/adapter/proxyhttp"
	"github.com/clauderelay/proxypool/internal/adapter/scheduler"
	"github.com/clauderelay/proxypool/internal/core/domain"
	"github.com/clauderelay/proxypool/internal/logger"
	"github.com/clauderelay/proxypool/internal/observability"
)

// credentialHeaderNames are dropped before injection so neither the client's
// own Authorization/X-Api-Key nor a previous upstream's leak through
// (strip-then-inject, §9 Open Question 1).
var credentialHeaderNames = []string{"Authorization", "X-Api-Key"}

// Dispatcher sequentially tries upstream candidates until one succeeds or
// the pool is exhausted (§4.5, §5 — attempts against candidates are strictly
// sequential within one request).
type Dispatcher struct {
	scheduler        *scheduler.Scheduler
	health           *pool.HealthMap
	observability    *observability.Recorder
	logger           *logger.StyledLogger
	timeout          time.Duration
	penaltyIncrement int
	penaltyDecrement int
	transport        http.RoundTripper
}

// New builds a Dispatcher. timeout is the configured per-attempt timeout T
// (§4.5 step 3, 10-600s range enforced by the config layer).
func New(
	sched *scheduler.Scheduler,
	health *pool.HealthMap,
	rec *observability.Recorder,
	log *logger.StyledLogger,
	timeout time.Duration,
	penaltyIncrement, penaltyDecrement int,
) *Dispatcher {
	return &Dispatcher{
		scheduler:        sched,
		health:           health,
		observability:    rec,
		logger:           log,
		timeout:          timeout,
		penaltyIncrement: penaltyIncrement,
		penaltyDecrement: penaltyDecrement,
		transport:        http.DefaultTransport,
	}
}

// Dispatch runs the failover loop for one buffered request against the given
// snapshot, returning the client-facing response built from whichever
// candidate succeeded, or a 502/503 aggregate failure (§4.5, §7).
func (d *Dispatcher) Dispatch(ctx context.Context, snapshot domain.PoolSnapshot, req *domain.BufferedRequest) proxyhttp.Response {
	if snapshot.Empty() {
		d.logger.Warn("pool snapshot empty, no providers configured")
		return proxyhttp.NewJSONErrorResponse(http.StatusServiceUnavailable, "No providers configured in proxy pool")
	}

	candidates := d.scheduler.Order(snapshot)
	attempts := make([]domain.AttemptSummary, 0, len(candidates))

	d.observability.SetRequesting(true)
	defer d.observability.SetRequesting(false)

	for _, upstream := range candidates {
		d.observability.SetCurrentUpstream(upstream)
		d.logger.InfoWithUpstream("dispatching attempt via", upstream.Name)

		outcome := d.attempt(ctx, upstream, req)
		attempts = append(attempts, domain.AttemptSummary{
			UpstreamName: upstream.Name,
			Reason:       outcome.Reason,
			StatusCode:   outcome.StatusCode,
		})

		switch outcome.Kind {
		case domain.OutcomeSuccess:
			d.health.RecordSuccess(upstream.ID, d.penaltyDecrement)
			d.observability.RecordSuccess(upstream)
			d.logger.InfoDispatchSuccess(upstream.Name, outcome.StatusCode)
			d.logger.InfoWithPenalty("penalty decremented after success", upstream.Name, d.health.Penalty(upstream.ID))
			return proxyhttp.NewResponse(outcome.StatusCode, outcome.Headers, outcome.Body)
		case domain.OutcomeSoftFailure:
			d.health.RecordSoftFailure(upstream.ID, d.penaltyIncrement)
			d.logger.WarnWithUpstream("attempt soft-failed, trying next candidate", upstream.Name,
				"reason", outcome.Reason.String(), "status", outcome.StatusCode)
			d.logger.InfoWithPenalty("penalty incremented after soft failure", upstream.Name, d.health.Penalty(upstream.ID))
			continue
		default:
			// HardFailure never happens in the normal path; the request is
			// rejected with a 400 at once, without trying further candidates.
			d.logger.Error("dispatch attempt hard-failed", "upstream", upstream.Name, "err", outcome.Err)
			return proxyhttp.NewJSONErrorResponse(http.StatusBadRequest, "request rejected")
		}
	}

	d.logger.Warn("all providers failed", "attempts", len(attempts))
	return proxyhttp.NewJSONErrorResponse(http.StatusBadGateway, "All providers failed")
}

// attempt performs one dispatch attempt against a single upstream: URL
// rewrite, header rewrite, send with timeout, classify (§4.5 steps 1-4).
func (d *Dispatcher) attempt(ctx context.Context, upstream *domain.Upstream, req *domain.BufferedRequest) domain.Outcome {
	targetURL := upstream.NormalizedBaseURL() + req.Target

	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, targetURL, bytes.NewReader(req.Body))
	if err != nil {
		return domain.Outcome{Kind: domain.OutcomeSoftFailure, Reason: domain.SoftFailureTransport, Err: err}
	}

	rewriteHeaders(httpReq, req.Headers, upstream.Credential)

	client := &http.Client{
		Transport: d.transport,
		CheckRedirect: func(redirected *http.Request, via []*http.Request) error {
			// Many HTTP clients strip Authorization by default when a
			// redirect crosses hosts; re-apply it on every hop so
			// credentials survive the whole chain (§4.5 step 3).
			redirected.Header.Set("Authorization", "Bearer "+upstream.Credential)
			redirected.Header.Set("X-Api-Key", upstream.Credential)
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return domain.Outcome{Kind: domain.OutcomeSoftFailure, Reason: domain.SoftFailureTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Outcome{Kind: domain.OutcomeSoftFailure, Reason: domain.SoftFailureTransport, Err: err}
	}

	if reason := domain.ClassifyStatus(resp.StatusCode); reason != domain.SoftFailureNone {
		return domain.Outcome{Kind: domain.OutcomeSoftFailure, Reason: reason, StatusCode: resp.StatusCode}
	}

	headers := make(domain.Headers, 0, len(resp.Header))
	for name, values := range resp.Header {
		for _, v := range values {
			headers = append(headers, domain.Header{Name: name, Value: v})
		}
	}

	return domain.Outcome{
		Kind:       domain.OutcomeSuccess,
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
	}
}

// rewriteHeaders applies the ordered edits of §4.5 step 2: drop credential
// and hop-by-hop headers, then inject the upstream's own credential.
func rewriteHeaders(httpReq *http.Request, original domain.Headers, credential string) {
	headers := original.WithoutNames(credentialHeaderNames...)
	headers = headers.WithoutNames("Host", "Content-Length", "Transfer-Encoding")
	headers = proxyhttp.StripHopByHop(headers)

	for _, h := range headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	httpReq.Header.Set("Authorization", "Bearer "+credential)
	httpReq.Header.Set("X-Api-Key", credential)
}

// PenaltyFor exposes the current penalty for an upstream, read-through to the
// HealthMap (§6 Proxy.get_penalty).
func (d *Dispatcher) PenaltyFor(id uuid.UUID) int {
	return d.health.Penalty(id)
}
