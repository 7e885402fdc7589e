package station

// Actor is the identity/role context the caller supplies on every operation.
// The core never manages sessions; it only consults the role.
type Actor struct {
	UserID string
	Role   Role
}
