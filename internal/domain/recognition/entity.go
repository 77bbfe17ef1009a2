package recognition

import "github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"

// UnknownLabel is reported when no candidate is close enough.
const UnknownLabel = "unknown"

// DefaultThreshold is the maximum Euclidean distance accepted as the same face.
const DefaultThreshold = 0.6

// Match is the matcher's verdict for one live encoding. Label is an
// employee ID or UnknownLabel; Distance is to the nearest candidate.
type Match struct {
	Label        string
	EmployeeName string
	Distance     float64
}

func (m Match) Known() bool {
	return m.Label != UnknownLabel
}

// Matcher compares a live descriptor against enrolled candidates.
type Matcher interface {
	Match(live []float64, candidates []employee.Candidate) (Match, error)
}
