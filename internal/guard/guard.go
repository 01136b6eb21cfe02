// Package guard decides whether a view is reachable for the current session
// state and role. It is a pure function over the session package's types; the
// web middleware and any UI shell consume its decisions.
package guard

import "github.com/akranjan/facemark/internal/session"

// View names the navigable surfaces of the client.
type View string

const (
	ViewLogin              View = "login"
	ViewHome               View = "home"
	ViewRegister           View = "register"
	ViewAttendance         View = "attendance"
	ViewStudentsList       View = "students"
	ViewProfessorDashboard View = "professor_dashboard"
	ViewTestRecognition    View = "test_recognition"
)

// Outcome is the kind of decision the guard makes.
type Outcome int

const (
	// Allow renders the requested view.
	Allow Outcome = iota
	// Redirect sends the visitor to Decision.Target instead.
	Redirect
	// Wait renders a neutral loading state; no navigation decision is made
	// while authentication is still in flight.
	Wait
)

// Decision is the guard's answer for one view request.
type Decision struct {
	Outcome Outcome
	Target  View
}

// professorViews is the reachable set for the professor role.
var professorViews = map[View]bool{
	ViewProfessorDashboard: true,
	ViewStudentsList:       true,
	ViewTestRecognition:    true,
}

// studentViews is the reachable set for the student role and for sessions
// whose role has not been resolved yet.
var studentViews = map[View]bool{
	ViewHome:         true,
	ViewRegister:     true,
	ViewAttendance:   true,
	ViewStudentsList: true,
}

// Resolve maps session state and role to a decision for the requested view.
// The login view is always reachable.
func Resolve(state session.State, role session.Role, view View) Decision {
	if view == ViewLogin {
		return Decision{Outcome: Allow}
	}

	switch state {
	case session.StateAuthenticating:
		return Decision{Outcome: Wait}
	case session.StateAuthenticated:
		if reachable(role)[view] {
			return Decision{Outcome: Allow}
		}
		return Decision{Outcome: Redirect, Target: Home(role)}
	default:
		return Decision{Outcome: Redirect, Target: ViewLogin}
	}
}

// Home is the landing view for a role.
func Home(role session.Role) View {
	if role == session.RoleProfessor {
		return ViewProfessorDashboard
	}
	return ViewHome
}

func reachable(role session.Role) map[View]bool {
	if role == session.RoleProfessor {
		return professorViews
	}
	return studentViews
}
