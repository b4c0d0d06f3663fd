package analyze

import (
	"context"
	"time"

	"github.com/leaseguard/leaseguard/internal/domain"
)

// DefaultInferenceTimeout is the hard wall-clock deadline on the external
// inference call.
const DefaultInferenceTimeout = 90 * time.Second

// Invoker submits an inference request under a hard deadline. The in-flight
// call is raced against the deadline timer; losing the race is a first-class
// TimedOut outcome, not an error, and the call is abandoned rather than
// cancelled at the remote end. The remote side may still complete and consume
// resources; that cost is accepted. There is no retry.
type Invoker struct {
	completer domain.CompletionService
	timeout   time.Duration
}

// NewInvoker creates an invoker around the given completion service. A
// non-positive timeout falls back to DefaultInferenceTimeout.
func NewInvoker(completer domain.CompletionService, timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = DefaultInferenceTimeout
	}
	return &Invoker{
		completer: completer,
		timeout:   timeout,
	}
}

type completionResult struct {
	text string
	err  error
}

// Invoke dispatches the request and waits at most the configured deadline.
func (i *Invoker) Invoke(ctx context.Context, req domain.InferenceRequest) domain.InferenceOutcome {
	resultCh := make(chan completionResult, 1)

	// Detached from the caller's cancellation on purpose: expiry of the
	// deadline abandons the wait without tearing down the remote call.
	callCtx := context.WithoutCancel(ctx)

	go func() {
		text, err := i.completer.Complete(callCtx, req)
		resultCh <- completionResult{text: text, err: err}
	}()

	timer := time.NewTimer(i.timeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return domain.InferenceOutcome{Kind: domain.OutcomeUpstreamFailure, Reason: res.err}
		}
		return domain.InferenceOutcome{Kind: domain.OutcomeSuccess, RawText: res.text}

	case <-timer.C:
		return domain.InferenceOutcome{Kind: domain.OutcomeTimedOut}

	case <-ctx.Done():
		return domain.InferenceOutcome{Kind: domain.OutcomeUpstreamFailure, Reason: ctx.Err()}
	}
}
