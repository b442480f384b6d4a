// internal/pkg/guard/guard.go
package guard

import (
	"console-service/internal/pkg/rbac"
	authsvc "console-service/internal/service/auth"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

type Outcome int

const (
	// Pending means identity is not settled yet; nothing is rendered.
	Pending Outcome = iota
	Allow
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating a guard against a state snapshot.
type Decision struct {
	Outcome Outcome
	Target  string
}

func allow() Decision { return Decision{Outcome: Allow} }
func pending() Decision { return Decision{Outcome: Pending} }
func redirect(path string) Decision { return Decision{Outcome: Redirect, Target: path} }

// Authenticated gates a route on the presence of a user.
func Authenticated(st authsvc.State) Decision {
	if st.Loading {
		return pending()
	}
	if st.User == nil {
		return redirect(LoginPath)
	}
	return allow()
}

// RoleGate additionally requires one of allowed. An empty allow-list never
// grants access.
func RoleGate(st authsvc.State, allowed []string) Decision {
	if d := Authenticated(st); d.Outcome != Allow {
		return d
	}
	if !rbac.HasAnyRole(st.User.RoleNames(), allowed) {
		return redirect(DashboardPath)
	}
	return allow()
}

// Guest keeps signed-in users away from the credential pages.
func Guest(st authsvc.State) Decision {
	if st.Loading {
		return pending()
	}
	if st.User != nil {
		return redirect(DashboardPath)
	}
	return allow()
}
