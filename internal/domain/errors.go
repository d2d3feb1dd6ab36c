package domain

import "errors"

var (
	// ErrInvalidRole is returned when a role outside the known questionnaires is selected.
	ErrInvalidRole = errors.New("invalid role")
	// ErrTeamRequired is returned when a team_member submits without choosing a team.
	ErrTeamRequired = errors.New("team selection required")
	// ErrInvalidTransition indicates an action that is not legal from the current view.
	ErrInvalidTransition = errors.New("invalid survey transition")
	// ErrSubmissionNotFound indicates no prior submission exists for the identity.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmitInFlight indicates a submit attempt was dropped because one is already running.
	ErrSubmitInFlight = errors.New("submission already in flight")
)
