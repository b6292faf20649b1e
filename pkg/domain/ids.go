package domain

// TenantID identifies a tenant organization. It is a domain primitive so
// tenant identifiers cannot be confused with other strings at call sites.
type TenantID string

// IsNil returns true if the tenant id is empty.
func (t TenantID) IsNil() bool {
	return t == ""
}

// String returns the string representation of the tenant id.
func (t TenantID) String() string {
	return string(t)
}

// ActorID identifies the user who triggered an action, when known.
type ActorID string

// IsNil returns true if the actor id is empty.
func (a ActorID) IsNil() bool {
	return a == ""
}

// String returns the string representation of the actor id.
func (a ActorID) String() string {
	return string(a)
}
