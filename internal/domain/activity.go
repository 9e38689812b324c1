package domain

import "fmt"

// Activity is an extracurricular offering and its current roster.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// SpotsLeft reports the remaining capacity. Capacity is not enforced on
// signup, so the value can go negative.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// HasParticipant reports whether email is on the roster.
func (a Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// Clone returns a copy whose roster does not alias the receiver's.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = append([]string(nil), a.Participants...)
	return out
}

// Validate checks the record invariants enforced when seeding a directory.
func (a Activity) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: activity name is required", ErrInvalidActivity)
	}
	if a.MaxParticipants <= 0 {
		return fmt.Errorf("%w: %s: max_participants must be > 0", ErrInvalidActivity, a.Name)
	}
	seen := make(map[string]struct{}, len(a.Participants))
	for _, p := range a.Participants {
		if p == "" {
			return fmt.Errorf("%w: %s: empty participant", ErrInvalidActivity, a.Name)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: %s: duplicate participant %s", ErrInvalidActivity, a.Name, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// Enrollment confirms a roster change for one (activity, email) pair.
type Enrollment struct {
	Activity string
	Email    string
}

// SignupMessage is the confirmation shown after a successful signup.
func (e Enrollment) SignupMessage() string {
	return fmt.Sprintf("Signed up %s for %s", e.Email, e.Activity)
}

// UnregisterMessage is the confirmation shown after a successful unregister.
func (e Enrollment) UnregisterMessage() string {
	return fmt.Sprintf("Unregistered %s from %s", e.Email, e.Activity)
}
