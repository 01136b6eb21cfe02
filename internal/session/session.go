// Package session holds the client-side authentication state: which role
// (if any) is currently signed in, and the transitions between states.
// Exactly one session is live per process; a new sign-in overwrites it.
package session

// Role is the closed set of roles a session can carry.
type Role int

const (
	RoleNone Role = iota
	RoleProfessor
	RoleStudent
)

func (r Role) String() string {
	switch r {
	case RoleProfessor:
		return "professor"
	case RoleStudent:
		return "student"
	default:
		return "none"
	}
}

// ParseRole maps a wire value to a Role. Unknown values map to RoleNone.
func ParseRole(s string) Role {
	switch s {
	case "professor":
		return RoleProfessor
	case "student":
		return RoleStudent
	default:
		return RoleNone
	}
}

// State is the authentication state machine position.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateSigningOut
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateSigningOut:
		return "signing_out"
	default:
		return "unauthenticated"
	}
}

// Session is the live authentication record.
type Session struct {
	ID    string
	Email string
	Role  Role
}
