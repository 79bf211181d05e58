package domain

// Principal identifies the caller of an operation. Requests without an
// authenticated owner run as the reserved demo principal.
type Principal struct {
	OwnerID string
	Demo    bool
}

// Authenticated reports whether the principal carries a usable owner identity.
func (p Principal) Authenticated() bool {
	return p.OwnerID != ""
}

// NewDemoPrincipal returns the reserved demo identity.
func NewDemoPrincipal(ownerID string) Principal {
	return Principal{OwnerID: ownerID, Demo: true}
}
