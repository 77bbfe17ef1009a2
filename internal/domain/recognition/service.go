package recognition

import (
	"context"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
)

type RecognitionService interface {
	// Identify matches a descriptor against enrolled employees.
	Identify(ctx context.Context, req MatchRequest) (MatchResponse, error)

	// Scan identifies the face then records attendance for the matched employee
	// at the server's current time.
	Scan(ctx context.Context, req MatchRequest) (attendance.Result, error)
}
