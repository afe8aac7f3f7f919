package auth

import (
	"fmt"

	"github.com/FACorreiaa/go-user-admin-api/internal/api"
)

// Operation identifies what the caller is attempting, independent of the
// transport route it arrived on.
type Operation string

const (
	OpRegister   Operation = "register"
	OpListUsers  Operation = "list_users"
	OpGetUser    Operation = "get_user"
	OpDeleteUser Operation = "delete_user"
	OpGetSelf    Operation = "get_self"
)

// DenyDescription is the fixed description returned with every 403.
const DenyDescription = "You are not allowed to view this resource"

// Authorize decides whether the identity carried by claims may perform op.
// It is a pure function over its inputs: no store access, no re-check that
// the subject still exists. targetID is the user id the operation acts on and
// is ignored by operations without a target.
//
// The role check runs before the identity match, so administrators bypass
// ownership entirely. Unrecognized operations are denied.
func Authorize(claims *Claims, op Operation, targetID int64) error {
	if claims == nil {
		return fmt.Errorf("no claims presented: %w", api.ErrUnauthenticated)
	}

	switch op {
	case OpRegister, OpListUsers:
		if claims.Role == api.RoleAdmin {
			return nil
		}
	case OpGetUser, OpDeleteUser:
		if claims.Role == api.RoleAdmin {
			return nil
		}
		if claims.UserID == targetID {
			return nil
		}
	case OpGetSelf:
		return nil
	}

	return fmt.Errorf("operation %q denied for user %d: %w", op, claims.UserID, api.ErrForbidden)
}
