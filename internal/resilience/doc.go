// Package resilience groups the fault tolerance building blocks used
// around external calls: circuit breakers for the AI, SEO metrics and
// CMS providers, and retry with exponential backoff and jitter.
//
// Typical wiring:
//
//	cb := circuitbreaker.New(circuitbreaker.SEODataAPIConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return fetchMetrics()
//	})
//
//	err := retry.WithBackoff(ctx, retry.AIAPIConfig(), func() error {
//	    return callModel()
//	})
package resilience
