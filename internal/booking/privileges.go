package booking

// PrivilegeValidator decides whether a user may perform a lifecycle
// operation. It is a plug point for the boundary layer; the engine itself
// never calls it.
type PrivilegeValidator interface {
	Authorize(userID, operation string, req *TradeRequest) bool
}

// AllowAll grants every operation. The desk's role-based policy
// (superuser / trader-sales / middle-office / support) is disabled pending a
// fix to the user-profile data, so the bypass is preserved here.
// TODO: restore the role-based policy once user profiles carry a user type.
type AllowAll struct{}

var _ PrivilegeValidator = AllowAll{}

func (AllowAll) Authorize(userID, operation string, req *TradeRequest) bool {
	return true
}
