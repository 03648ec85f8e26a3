package auth

import "github.com/spec-kit/helpdesk/internal/domain"

// Capability names a permission grantable to a role. Typed constants close
// off the free-string permission checks the role table cannot grant.
type Capability string

const (
	CapViewTickets      Capability = "view_tickets"
	CapCreateTickets    Capability = "create_tickets"
	CapManageOwnTickets Capability = "manage_own_tickets"
	CapManageAllTickets Capability = "manage_all_tickets"
	CapDeleteTickets    Capability = "delete_tickets"
	CapManageUsers      Capability = "manage_users"
)

// Identity is the authenticated caller, threaded explicitly through
// service calls. A nil *Identity is the anonymous caller.
type Identity struct {
	ID       string
	Username string
	Role     domain.Role
}

// roleCapabilities is the static role table. It is intentionally small and
// not a policy engine.
var roleCapabilities = map[domain.Role]map[Capability]struct{}{
	domain.RoleUser: {
		CapViewTickets:      {},
		CapCreateTickets:    {},
		CapManageOwnTickets: {},
	},
	domain.RoleAdmin: {
		CapViewTickets:      {},
		CapCreateTickets:    {},
		CapManageAllTickets: {},
		CapDeleteTickets:    {},
		CapManageUsers:      {},
	},
}

// Authorize answers whether the identity may perform the capability,
// optionally scoped to a resource owner. Ownership applies only to
// manage_own_tickets: the identity must own the resource, or the resource
// must be ownerless. manage_all_tickets supersedes ownership entirely.
func Authorize(identity *Identity, capability Capability, resourceOwnerID *string) bool {
	if identity == nil {
		return false
	}
	granted, ok := roleCapabilities[identity.Role]
	if !ok {
		return false
	}
	if _, has := granted[capability]; !has {
		return false
	}
	if capability == CapManageOwnTickets {
		return resourceOwnerID == nil || *resourceOwnerID == identity.ID
	}
	return true
}

// CanManageTicket answers the composed edit question: admins manage all
// tickets, users manage their own and ownerless ones.
func CanManageTicket(identity *Identity, resourceOwnerID *string) bool {
	if Authorize(identity, CapManageAllTickets, nil) {
		return true
	}
	return Authorize(identity, CapManageOwnTickets, resourceOwnerID)
}

// IdentityOf builds an Identity from a user record.
func IdentityOf(user *domain.User) *Identity {
	if user == nil {
		return nil
	}
	return &Identity{ID: user.ID, Username: user.Username, Role: user.Role}
}
