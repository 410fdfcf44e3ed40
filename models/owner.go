package models

import "fmt"

// OwnerKind distinguishes authenticated users from anonymous guest sessions.
type OwnerKind string

const (
	OwnerUser  OwnerKind = "user"
	OwnerGuest OwnerKind = "guest"
)

// Owner is the identity a cart line or order belongs to: either a verified
// user id or an opaque guest-session id, never both.
type Owner struct {
	Kind    OwnerKind
	UserID  int64  // set when Kind == OwnerUser
	GuestID string // set when Kind == OwnerGuest
	Role    string // carried from the verified token payload, user owners only
}

// UserOwner builds an authenticated owner.
func UserOwner(id int64, role string) Owner {
	return Owner{Kind: OwnerUser, UserID: id, Role: role}
}

// GuestOwner builds an anonymous owner from a guest-session id.
func GuestOwner(sessionID string) Owner {
	return Owner{Kind: OwnerGuest, GuestID: sessionID}
}

// IsUser reports whether the owner is an authenticated user.
func (o Owner) IsUser() bool { return o.Kind == OwnerUser }

func (o Owner) String() string {
	if o.IsUser() {
		return fmt.Sprintf("user:%d", o.UserID)
	}
	return "guest:" + o.GuestID
}
