package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// ErrInvalidCredentials indicates the professor credential pair did not
// match the configured pair. The session is unchanged.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Identity is an opaque identity returned by an external provider.
type Identity struct {
	ID    string
	Email string
}

// IdentityProvider is the external OAuth-style identity collaborator.
type IdentityProvider interface {
	Authenticate(ctx context.Context) (Identity, error)
	SignOut(ctx context.Context) error
}

// Listener observes state transitions. Listeners run synchronously before
// the transition call returns, so consumers never act on a stale role.
type Listener func(state State, session *Session)

// Manager owns the session and its state machine. It is safe for use from
// HTTP handlers; transitions are serialized.
type Manager struct {
	mu        sync.Mutex
	state     State
	session   *Session
	provider  IdentityProvider // provider used for the current real sign-in, nil for mock roles
	listeners []Listener

	professorUsername string
	professorPassword string
}

// NewManager creates a manager in the unauthenticated state. The credential
// pair guards the mock professor sign-in path.
func NewManager(professorUsername, professorPassword string) *Manager {
	return &Manager{
		state:             StateUnauthenticated,
		professorUsername: professorUsername,
		professorPassword: professorPassword,
	}
}

// Subscribe registers a listener for state transitions.
func (m *Manager) Subscribe(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Current returns the state and a copy of the live session (nil when signed out).
func (m *Manager) Current() (State, *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return m.state, nil
	}
	s := *m.session
	return m.state, &s
}

// transition updates the state and notifies listeners while holding the lock,
// so no consumer observes an intermediate state.
func (m *Manager) transition(state State, session *Session) {
	m.state = state
	m.session = session
	for _, fn := range m.listeners {
		fn(state, session)
	}
}

// SignIn authenticates through the external identity provider. The resulting
// session carries RoleNone until the backend resolves the role.
func (m *Manager) SignIn(ctx context.Context, provider IdentityProvider) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transition(StateAuthenticating, nil)

	identity, err := provider.Authenticate(ctx)
	if err != nil {
		m.transition(StateUnauthenticated, nil)
		return nil, fmt.Errorf("could not sign in: %w", err)
	}

	session := &Session{ID: identity.ID, Email: identity.Email, Role: RoleNone}
	m.provider = provider
	m.transition(StateAuthenticated, session)
	return session, nil
}

// SignInAsProfessor is the trust-on-claim professor path: the credential pair
// is checked locally against the configured pair, with no backend involved.
func (m *Manager) SignInAsProfessor(username, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.professorUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.professorPassword)) == 1
	if m.professorUsername == "" || !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	session := &Session{ID: uuid.NewString(), Email: username, Role: RoleProfessor}
	m.provider = nil
	m.transition(StateAuthenticated, session)
	return session, nil
}

// SignInAsStudent grants student access unconditionally. This mirrors the
// open registration flow; it is a development stub, not a security boundary.
func (m *Manager) SignInAsStudent() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := &Session{ID: uuid.NewString(), Email: "student@local", Role: RoleStudent}
	m.provider = nil
	m.transition(StateAuthenticated, session)
	return session
}

// SignOut clears the session. The local session is destroyed even when the
// remote sign-out call fails, so the client can never get stuck
// authenticated; a remote failure is reported as a warning only.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	provider := m.provider
	m.transition(StateSigningOut, m.session)
	m.mu.Unlock()

	if provider != nil {
		if err := provider.SignOut(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: remote sign-out failed: %v\n", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider = nil
	m.transition(StateUnauthenticated, nil)
}
