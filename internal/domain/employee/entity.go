package employee

import (
	"time"
)

// Employee is an enrolled person the kiosk can recognize.
type Employee struct {
	ID           string
	Name         string
	FaceEncoding []float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Candidate is the slice of an Employee the face matcher consumes.
type Candidate struct {
	ID       string
	Name     string
	Encoding []float64
}

func (e Employee) Candidate() Candidate {
	return Candidate{
		ID:       e.ID,
		Name:     e.Name,
		Encoding: e.FaceEncoding,
	}
}
