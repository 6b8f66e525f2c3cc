package session

import "fmt"

// State is the lifecycle phase of the session.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	// StateFailed follows a failed login and behaves like StateUnauthenticated.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Tokens is the persisted token pair. A zero Tokens means logged out.
type Tokens struct {
	Access  string `json:"access" yaml:"accessToken"`
	Refresh string `json:"refresh" yaml:"refreshToken"`
}

func (t Tokens) IsZero() bool {
	return t.Access == "" && t.Refresh == ""
}

type Profile struct {
	PhotoURL string `json:"foto_perfil,omitempty"`
}

// UserProfile is the account of the logged in user as returned by /users/me/.
type UserProfile struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Profile   *Profile `json:"perfil,omitempty"`
	Role      string   `json:"rol"`
	FullName  string   `json:"nombre_completo"`
}

// ProfileUpdate holds the editable fields of the own account. Nil fields are not sent.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
}

type PasswordChange struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// Status is a snapshot of the session for display.
type Status struct {
	State       State
	User        *UserProfile
	TokenExpiry *TokenExpiry
}
