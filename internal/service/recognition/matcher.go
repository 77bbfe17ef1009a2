package recognition

import (
	"fmt"
	"math"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/recognition"
)

// EuclideanMatcher labels a live encoding with the nearest candidate when its
// Euclidean distance does not exceed Threshold.
type EuclideanMatcher struct {
	Threshold float64
}

func NewEuclideanMatcher(threshold float64) *EuclideanMatcher {
	if threshold <= 0 {
		threshold = recognition.DefaultThreshold
	}
	return &EuclideanMatcher{Threshold: threshold}
}

func (m *EuclideanMatcher) Match(live []float64, candidates []employee.Candidate) (recognition.Match, error) {
	best := recognition.Match{Label: recognition.UnknownLabel, Distance: math.Inf(1)}

	for _, c := range candidates {
		if len(c.Encoding) != len(live) {
			return recognition.Match{}, fmt.Errorf("candidate %s has %d dimensions, live encoding has %d: %w",
				c.ID, len(c.Encoding), len(live), recognition.ErrInvalidEncoding)
		}
		d := euclidean(live, c.Encoding)
		if d < best.Distance {
			best.Distance = d
			best.Label = c.ID
			best.EmployeeName = c.Name
		}
	}

	if best.Distance > m.Threshold {
		best.Label = recognition.UnknownLabel
		best.EmployeeName = ""
	}
	return best, nil
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
