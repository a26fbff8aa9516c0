package session

import (
	"context"
	"errors"
	"sync"

	"github.com/fbellini/daybook-server/internal/client/api"
)

// State is the client's view of the current session.
type State int

const (
	// StateUnknown holds before the first resolution attempt; nothing
	// should be rendered for it.
	StateUnknown State = iota
	// StateLoading holds while a resolution attempt is in flight.
	StateLoading
	// StateAuthenticated holds a signed-in account.
	StateAuthenticated
	// StateAnonymous holds when there is no valid session.
	StateAnonymous
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Provider is the API surface the manager drives. *api.Client
// satisfies it.
type Provider interface {
	Login(ctx context.Context, handle, password string) (api.Session, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (api.Account, error)
}

// Listener observes session transitions. The account is zero except in
// StateAuthenticated.
type Listener func(state State, account api.Account)

// Manager resolves and tracks the session. Every transition is pushed
// to the subscribed listeners, so the UI always reflects the current
// state without polling.
type Manager struct {
	provider Provider

	mu        sync.Mutex
	state     State
	account   api.Account
	listeners []Listener
}

// NewManager creates a manager in StateUnknown.
func NewManager(provider Provider) *Manager {
	return &Manager{
		provider: provider,
		state:    StateUnknown,
	}
}

// Subscribe registers a listener and immediately delivers the current
// state to it.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	state, account := m.state, m.account
	m.mu.Unlock()

	l(state, account)
}

// Current returns the current state and, when authenticated, the account.
func (m *Manager) Current() (State, api.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.account
}

// Start resolves the session once. Any stored token pair is checked
// against the server; failure of any kind lands in StateAnonymous, so
// the UI never acts on a stale session.
func (m *Manager) Start(ctx context.Context) {
	m.transition(StateLoading, api.Account{})

	account, err := m.provider.Me(ctx)
	if err != nil {
		m.transition(StateAnonymous, api.Account{})
		return
	}

	m.transition(StateAuthenticated, account)
}

// Login signs in. On success the session flips to StateAuthenticated;
// on failure it stays anonymous and the error describes why.
func (m *Manager) Login(ctx context.Context, handle, password string) error {
	m.transition(StateLoading, api.Account{})

	session, err := m.provider.Login(ctx, handle, password)
	if err != nil {
		m.transition(StateAnonymous, api.Account{})
		return err
	}

	m.transition(StateAuthenticated, session.Account)
	return nil
}

// Logout revokes the session and flips to StateAnonymous regardless of
// whether the server call succeeded.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.provider.Logout(ctx)
	m.transition(StateAnonymous, api.Account{})
	return err
}

// Expire handles a mid-session rejection: a blocked account or a token
// pair that stopped refreshing. The session flips to StateAnonymous and
// the caller reports the reason to the user.
func (m *Manager) Expire(err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) && !errors.Is(err, api.ErrAccountBlocked) {
		return false
	}
	m.transition(StateAnonymous, api.Account{})
	return true
}

func (m *Manager) transition(state State, account api.Account) {
	m.mu.Lock()
	m.state = state
	m.account = account
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, l := range listeners {
		l(state, account)
	}
}
