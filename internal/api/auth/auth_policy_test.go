package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-user-admin-api/internal/api"
)

func TestAuthorize(t *testing.T) {
	admin := &Claims{UserID: 1, Role: api.RoleAdmin}
	alice := &Claims{UserID: 2, Role: api.RoleUser}

	tests := []struct {
		name     string
		claims   *Claims
		op       Operation
		targetID int64
		allowed  bool
	}{
		{"AdminRegister", admin, OpRegister, 0, true},
		{"UserRegister", alice, OpRegister, 0, false},
		{"AdminListUsers", admin, OpListUsers, 0, true},
		{"UserListUsers", alice, OpListUsers, 0, false},

		{"AdminGetAnyUser", admin, OpGetUser, 2, true},
		{"UserGetSelf", alice, OpGetUser, 2, true},
		{"UserGetOther", alice, OpGetUser, 3, false},
		{"AdminDeleteAnyUser", admin, OpDeleteUser, 2, true},
		{"UserDeleteSelf", alice, OpDeleteUser, 2, true},
		{"UserDeleteOther", alice, OpDeleteUser, 1, false},

		// Admins bypass the identity match entirely, even on themselves.
		{"AdminGetOwnRecord", admin, OpGetUser, 1, true},

		{"AdminSelfLookup", admin, OpGetSelf, 0, true},
		{"UserSelfLookup", alice, OpGetSelf, 0, true},

		{"UnknownOperation", admin, Operation("drop_tables"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.claims, tt.op, tt.targetID)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, api.ErrForbidden)
			}
		})
	}

	t.Run("NilClaims", func(t *testing.T) {
		err := Authorize(nil, OpGetSelf, 0)
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
	})
}
