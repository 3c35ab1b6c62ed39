package extract

import (
	"context"
	"fmt"
	"sync"

	"minnow/internal/media"
)

// Aggregate is the combined outcome of running one request against a
// set of sources. Results preserves registration order regardless of
// which source finished first.
type Aggregate struct {
	Results            []media.ExtractionResult
	SourcesWithStreams int
	TotalStreams       int
}

// Orchestrator fans a request out to selected extractors and merges
// their results. It holds no mutable state; every run is independent.
type Orchestrator struct {
	registry *Registry
}

// NewOrchestrator creates an orchestrator over a registry.
func NewOrchestrator(registry *Registry) *Orchestrator {
	return &Orchestrator{registry: registry}
}

// Run validates the request and selector, then runs every selected
// extractor concurrently. Validation failures are returned as an error
// before any extractor runs. One source's failure never aborts the
// others; each failure stays contained in its own result.
func (o *Orchestrator) Run(ctx context.Context, req media.StreamRequest, selector string) (*Aggregate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	selected, err := o.registry.Resolve(selector)
	if err != nil {
		return nil, err
	}

	results := make([]media.ExtractionResult, len(selected))

	var wg sync.WaitGroup
	for i, e := range selected {
		wg.Add(1)
		go func(i int, e Extractor) {
			defer wg.Done()
			results[i] = runOne(ctx, e, req)
		}(i, e)
	}
	wg.Wait()

	agg := &Aggregate{Results: results}
	for _, res := range results {
		if len(res.Streams) > 0 {
			agg.SourcesWithStreams++
			agg.TotalStreams += len(res.Streams)
		}
	}
	return agg, nil
}

// runOne guards a single extractor call, converting a panic into a
// per-source error so one misbehaving source cannot take down the
// sibling extractions or the request.
func runOne(ctx context.Context, e Extractor, req media.StreamRequest) (res media.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = media.ExtractionResult{
				Source: e.Name(),
				Err:    fmt.Sprintf("extractor panic: %v", r),
			}
		}
	}()
	return e.Extract(ctx, req)
}
