// Package resilience provides the failure-containment primitives used around
// every external call: a retry executor with exponential backoff and a
// per-dependency circuit breaker.
//
// Call sites compose them explicitly, retry outside the breaker:
//
//	err := executor.Do(ctx, "transcription", func(ctx context.Context) error {
//		return breaker.Call(ctx, func(ctx context.Context) error {
//			text, err = client.Transcribe(ctx, path)
//			return err
//		})
//	})
//
// An open breaker returns *apperr.CircuitOpenError, which the executor never
// retries, so a sick dependency fails fast instead of burning the backoff budget.
package resilience
