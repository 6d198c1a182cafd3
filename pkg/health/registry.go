package health

import (
	"context"
	"sync"
	"time"
)

type Registry struct {
	checkers []Checker
}

func NewRegistry(checkers ...Checker) *Registry {
	return &Registry{checkers: checkers}
}

// Add registers another checker. Not safe for use after serving starts.
func (r *Registry) Add(c Checker) {
	r.checkers = append(r.checkers, c)
}

type CheckResult struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Message   string `json:"message,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type ReadinessResponse struct {
	Status Status        `json:"status"`
	Checks []CheckResult `json:"checks,omitempty"`
}

// CheckAll probes every dependency concurrently. One down dependency makes
// the whole service down; results keep registration order.
func (r *Registry) CheckAll(ctx context.Context) ReadinessResponse {
	results := make([]CheckResult, len(r.checkers))

	var wg sync.WaitGroup
	for i, c := range r.checkers {
		i, c := i, c
		wg.Add(1)
		go func() {
			defer wg.Done()
			started := time.Now()
			res := c.Check(ctx)
			results[i] = CheckResult{
				Name:      c.Name(),
				Status:    res.Status,
				Message:   res.Message,
				ElapsedMs: time.Since(started).Milliseconds(),
			}
		}()
	}
	wg.Wait()

	response := ReadinessResponse{Status: StatusUp, Checks: results}
	for _, res := range results {
		if res.Status == StatusDown {
			response.Status = StatusDown
		}
	}
	return response
}
