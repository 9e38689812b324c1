// Package domain defines the business logic for the signup directory.
package domain

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"example.com/signup/internal/observability"
)

var (
	// ErrActivityNotFound is returned when no activity carries the requested name.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadyRegistered is returned when the email is already on the roster.
	ErrAlreadyRegistered = errors.New("participant already registered")
	// ErrNotRegistered is returned when unregistering an email that is not on the roster.
	ErrNotRegistered = errors.New("participant not registered")
	// ErrInvalidEmail is returned for a blank email.
	ErrInvalidEmail = errors.New("email is required")
	// ErrInvalidActivity marks a malformed seed record.
	ErrInvalidActivity = errors.New("invalid activity")
)

// IsNotFound reports whether err means the activity or the roster entry is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrActivityNotFound) || errors.Is(err, ErrNotRegistered)
}

// Directory captures storage of activities and their rosters. Enroll and
// Withdraw must perform the existence check, the membership check and the
// mutation atomically.
type Directory interface {
	List(ctx context.Context) ([]Activity, error)
	Get(ctx context.Context, activity string) (Activity, error)
	Enroll(ctx context.Context, activity, email string) error
	Withdraw(ctx context.Context, activity, email string) error
}

// Service orchestrates roster workflows.
type Service struct {
	dir    Directory
	tracer trace.Tracer
}

// NewService constructs a Service.
func NewService(dir Directory) *Service {
	return &Service{
		dir:    dir,
		tracer: otel.Tracer("example.com/signup/internal/domain"),
	}
}

// ListActivities returns every activity with a copy of its roster, in catalog order.
func (s *Service) ListActivities(ctx context.Context) ([]Activity, error) {
	ctx, span := s.tracer.Start(ctx, "domain.ListActivities")
	defer span.End()

	activities, err := s.dir.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("signup.activity_count", len(activities)))
	return activities, nil
}

// Signup appends email to the named activity's roster.
func (s *Service) Signup(ctx context.Context, activity, email string) (Enrollment, error) {
	ctx, span := s.startMutation(ctx, "domain.Signup", activity)
	defer span.End()

	enrollment := Enrollment{Activity: activity, Email: email}
	err := s.mutate(ctx, activity, email, s.dir.Enroll)
	observability.RecordSignup(activity, Outcome(err))
	if err != nil {
		endWithError(span, err)
		return Enrollment{}, err
	}
	return enrollment, nil
}

// Unregister removes email from the named activity's roster.
func (s *Service) Unregister(ctx context.Context, activity, email string) (Enrollment, error) {
	ctx, span := s.startMutation(ctx, "domain.Unregister", activity)
	defer span.End()

	enrollment := Enrollment{Activity: activity, Email: email}
	err := s.mutate(ctx, activity, email, s.dir.Withdraw)
	observability.RecordUnregister(activity, Outcome(err))
	if err != nil {
		endWithError(span, err)
		return Enrollment{}, err
	}
	return enrollment, nil
}

// mutate resolves the activity before judging the email, so an unknown name
// is always reported as not found.
func (s *Service) mutate(ctx context.Context, activity, email string, op func(context.Context, string, string) error) error {
	if strings.TrimSpace(email) == "" {
		if _, err := s.dir.Get(ctx, activity); err != nil {
			return err
		}
		return ErrInvalidEmail
	}
	return op(ctx, activity, email)
}

func (s *Service) startMutation(ctx context.Context, name, activity string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("signup.activity", activity)))
}

func endWithError(span trace.Span, err error) {
	span.SetAttributes(attribute.String("signup.outcome", Outcome(err)))
	// Caller mistakes are not span errors.
	if IsNotFound(err) || errors.Is(err, ErrAlreadyRegistered) || errors.Is(err, ErrInvalidEmail) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Outcome maps an operation result to a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrActivityNotFound):
		return "activity_not_found"
	case errors.Is(err, ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, ErrInvalidEmail):
		return "invalid_email"
	default:
		return "error"
	}
}
