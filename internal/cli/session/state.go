package session

import "github.com/ainewshub/newshub/internal/cli/client"

// Status is the coarse authentication state derived from State
type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusPending       Status = "pending"
	StatusAuthenticated Status = "authenticated"
)

// State is the authentication state of the running client
type State struct {
	User            client.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
}

// Status derives the coarse state. A stored token that the server has not
// confirmed yet still counts as anonymous.
func (s State) Status() Status {
	switch {
	case s.IsLoading:
		return StatusPending
	case s.IsAuthenticated && s.Token != "":
		return StatusAuthenticated
	default:
		return StatusAnonymous
	}
}

// clone copies the user map so subscribers cannot mutate store state
func (s State) clone() State {
	s.User = s.User.Clone()
	return s
}

// Result is what Login and Register report to the caller. Failures carry
// the backend message instead of an error.
type Result struct {
	Success bool
	Message string
}
