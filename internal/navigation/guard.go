package navigation

// Decision is the outcome of the guard. When Redirect is set the navigation
// goes to that route instead of the requested one.
type Decision struct {
	Redirect string
}

func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Allow lets the navigation proceed.
var Allow = Decision{}

// Decide runs the guard for a navigation to target.
func Decide(target Route, authenticated bool) Decision {
	switch {
	case target.RequiresAuth() && !authenticated:
		return Decision{Redirect: RouteLogin}
	case target.Name == RouteLogin && authenticated:
		return Decision{Redirect: RouteDashboard}
	default:
		return Allow
	}
}
