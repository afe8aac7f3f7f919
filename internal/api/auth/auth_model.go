package auth

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/go-user-admin-api/internal/api"
)

// Token failure kinds. Handlers and middleware translate these to 401s with
// the appropriate description.
var (
	// ErrTokenExpired means signature checked out but the token is past exp.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signature, malformed structure and
	// unsupported signing algorithms.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the payload embedded in an access token: who the token was issued
// for (uid, mirrored into the registered sub claim) and their role.
type Claims struct {
	UserID int64 `json:"uid"` // Custom claim for the numeric user ID.
	Role   int   `json:"rol"` // Custom claim for the user role.
	jwt.RegisteredClaims
}

// ClaimsBuilder derives the custom claim set for a user. Passed explicitly
// into the codec at construction instead of registered on a shared manager.
type ClaimsBuilder func(user *api.User) Claims

// SubjectExtractor derives the registered sub claim for a user.
type SubjectExtractor func(user *api.User) string

// DefaultClaimsBuilder encodes the user's id and role.
func DefaultClaimsBuilder(user *api.User) Claims {
	return Claims{
		UserID: user.ID,
		Role:   user.Role,
	}
}

// DefaultSubjectExtractor keys tokens by the numeric user id, which is stable
// across username changes.
func DefaultSubjectExtractor(user *api.User) string {
	return strconv.FormatInt(user.ID, 10)
}
