// Package resilience groups the fault-tolerance helpers used on every path that
// leaves the process: summarization providers, S3 archiving and PostgreSQL.
//
// circuitbreaker fails fast once a dependency keeps erroring, and retry re-runs
// calls that failed for a transient reason. Archive writes combine both:
//
//	breaker := circuitbreaker.New(circuitbreaker.ForObjectStorage())
//	err := retry.WithBackoff(ctx, retry.StorageConfig(), func() error {
//	    _, err := circuitbreaker.Do(breaker, func() (struct{}, error) {
//	        return struct{}{}, put(ctx)
//	    })
//	    return err
//	})
package resilience
