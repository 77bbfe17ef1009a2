package recognition

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/recognition"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/metrics"
)

type RecognitionServiceImpl struct {
	employeeService   employee.EmployeeService
	attendanceService attendance.AttendanceService
	matcher           recognition.Matcher
	clock             clock.Clock
	metrics           *metrics.Metrics
	logger            *slog.Logger
}

func NewRecognitionService(
	employeeService employee.EmployeeService,
	attendanceService attendance.AttendanceService,
	matcher recognition.Matcher,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) recognition.RecognitionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecognitionServiceImpl{
		employeeService:   employeeService,
		attendanceService: attendanceService,
		matcher:           matcher,
		clock:             clk,
		metrics:           m,
		logger:            logger,
	}
}

// Identify implements recognition.RecognitionService.
func (s *RecognitionServiceImpl) Identify(ctx context.Context, req recognition.MatchRequest) (recognition.MatchResponse, error) {
	if err := req.Validate(); err != nil {
		return recognition.MatchResponse{}, err
	}

	candidates, err := s.employeeService.GetCandidateEncodings(ctx)
	if err != nil {
		return recognition.MatchResponse{}, fmt.Errorf("failed to load candidates: %w", err)
	}
	if len(candidates) == 0 {
		return recognition.MatchResponse{}, recognition.ErrNoCandidates
	}

	match, err := s.matcher.Match(req.Encoding, candidates)
	if err != nil {
		return recognition.MatchResponse{}, err
	}
	s.metrics.IncrementRecognition(match.Known())

	resp := recognition.MatchResponse{
		Matched:  match.Known(),
		Label:    match.Label,
		Distance: roundDistance(match.Distance),
	}
	if match.Known() {
		resp.EmployeeID = match.Label
		resp.EmployeeName = match.EmployeeName
	}
	return resp, nil
}

// Scan implements recognition.RecognitionService.
func (s *RecognitionServiceImpl) Scan(ctx context.Context, req recognition.MatchRequest) (attendance.Result, error) {
	match, err := s.Identify(ctx, req)
	if err != nil {
		return attendance.Result{}, err
	}
	if !match.Matched {
		s.logger.InfoContext(ctx, "Scan did not match any employee", "distance", match.Distance)
		return attendance.Result{}, recognition.ErrNoMatch
	}

	distance := match.Distance
	result, err := s.attendanceService.RecordAttendance(ctx, match.EmployeeID, s.clock.Now())
	if err != nil {
		if rej, ok := attendance.AsRejection(err); ok && rej.EmployeeName == "" {
			rej.EmployeeName = match.EmployeeName
		}
		return attendance.Result{}, err
	}
	result.Distance = &distance
	return result, nil
}

func roundDistance(d float64) float64 {
	if math.IsInf(d, 0) {
		return d
	}
	return math.Round(d*10000) / 10000
}
