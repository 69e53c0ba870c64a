package leagueclient

// State is the client-side auth state observed by UI layers. Token presence
// is the sole authenticated-session predicate.
type State struct {
	User                      *User
	Token                     string
	Loading                   bool
	Err                       error
	RequiresEmailVerification bool
	PendingEmail              string
}

// Authenticated reports whether a session is held.
func (s State) Authenticated() bool { return s.Token != "" }

// AuthEvent is the sealed sum type of auth state transitions. Every network
// action emits EventStarted followed by exactly one success or failure
// event.
type AuthEvent interface{ isAuthEvent() }

// EventStarted marks the beginning of a network action.
type EventStarted struct{}

// EventRegistered marks a completed registration: the account now sits in
// the pending-verification holding state.
type EventRegistered struct{ Email string }

// EventLoginSucceeded carries an issued session.
type EventLoginSucceeded struct {
	Token string
	User  User
}

// EventVerificationRequired is the unverified-login branch. Not a failure:
// the UI switches to the code-entry path for Email.
type EventVerificationRequired struct{ Email string }

// EventFailed surfaces an error; the session, if any, is kept.
type EventFailed struct{ Err error }

// EventErrorCleared drops the surfaced error. Idempotent.
type EventErrorCleared struct{}

// EventLoggedOut returns to the anonymous state.
type EventLoggedOut struct{}

func (EventStarted) isAuthEvent()              {}
func (EventRegistered) isAuthEvent()           {}
func (EventLoginSucceeded) isAuthEvent()       {}
func (EventVerificationRequired) isAuthEvent() {}
func (EventFailed) isAuthEvent()               {}
func (EventErrorCleared) isAuthEvent()         {}
func (EventLoggedOut) isAuthEvent()            {}

// Reduce applies one event to the state and returns the next state. Pure:
// no I/O, no token persistence; the Manager handles those around it.
func Reduce(s State, event AuthEvent) State {
	switch ev := event.(type) {
	case EventStarted:
		s.Loading = true
		s.Err = nil
	case EventRegistered:
		s.Loading = false
		s.Err = nil
		s.RequiresEmailVerification = true
		s.PendingEmail = ev.Email
	case EventLoginSucceeded:
		user := ev.User
		s = State{User: &user, Token: ev.Token}
	case EventVerificationRequired:
		s.Loading = false
		s.Err = nil
		s.Token = ""
		s.User = nil
		s.RequiresEmailVerification = true
		s.PendingEmail = ev.Email
	case EventFailed:
		s.Loading = false
		s.Err = ev.Err
	case EventErrorCleared:
		s.Err = nil
	case EventLoggedOut:
		s = State{}
	}
	return s
}
