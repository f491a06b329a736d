package auth

// Known OAuth scopes used by the training core.
const (
	ScopeRecoveryWrite = "recovery:write"
	ScopeRecoveryRead  = "recovery:read"
	ScopeReadinessRead = "readiness:read"
	ScopePlansWrite    = "plans:write"
	ScopePlansRead     = "plans:read"
	ScopeAnalyticsRead = "analytics:read"
)

// readImpliedBy lists the write scope that also grants each read scope.
var readImpliedBy = map[string]string{
	ScopeRecoveryRead:  ScopeRecoveryWrite,
	ScopeReadinessRead: ScopeRecoveryWrite,
	ScopePlansRead:     ScopePlansWrite,
}

// Allows reports whether claims grant scope, treating write scopes as implying
// their matching read scope.
func Allows(claims *Claims, scope string) bool {
	if claims.HasScope(scope) {
		return true
	}
	if implied, ok := readImpliedBy[scope]; ok {
		return claims.HasScope(implied)
	}
	return false
}
