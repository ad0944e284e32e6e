package session

import "time"

// Actor selects which account type a Manager serves.
type Actor string

const (
	ActorClient Actor = "client"
	ActorWriter Actor = "writer"
)

// Session is one authenticated actor.
type Session struct {
	Email     string
	SubjectID string
	UserID    string

	AccessToken       string
	RefreshToken      string
	AccessTokenExpiry time.Time // zero when the token could not be decoded

	PasswordIsTemporary bool
}

type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateFresh
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateFresh:
		return "fresh"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unauthenticated"
	}
}

// Destination is a navigation target signalled to the hosting application.
type Destination string

const (
	DestinationLogin          Destination = "login"
	DestinationDashboard      Destination = "dashboard"
	DestinationChangePassword Destination = "change-password"
)

// Path returns the route of d for actor a. Writer routes live under /writer.
func (d Destination) Path(a Actor) string {
	if a == ActorWriter {
		return "/writer/" + string(d)
	}
	return "/" + string(d)
}

// Navigator receives navigation signals. Implementations must not call back
// into the Manager synchronously while holding their own locks.
type Navigator interface {
	Navigate(actor Actor, dest Destination)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(actor Actor, dest Destination)

func (f NavigatorFunc) Navigate(actor Actor, dest Destination) { f(actor, dest) }

// CookieMirror mirrors the access token into a cookie.
type CookieMirror interface {
	SetAccessToken(token string)
	Clear()
}

type noopNavigator struct{}

func (noopNavigator) Navigate(Actor, Destination) {}

type noopCookies struct{}

func (noopCookies) SetAccessToken(string) {}
func (noopCookies) Clear()                {}
