// Package authn defines the authentication failure taxonomy shared by the
// gate middleware, the policy middleware and the handlers. Every rejection
// carries an explicit Kind so callers branch on it directly instead of
// string-inspecting a generic failure.
package authn

import (
	"net/http"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
)

// Kind enumerates the ways a request can fail authentication or
// authorization.
type Kind string

const (
	// KindMissingCredential: no bearer header and no session cookie.
	KindMissingCredential Kind = "missing_credential"

	// KindMalformedCredential: unparseable token or bad signature.
	KindMalformedCredential Kind = "malformed_credential"

	// KindExpiredCredential: well-signed token past its natural expiry.
	KindExpiredCredential Kind = "expired_credential"

	// KindRevokedCredential: token explicitly blacklisted by logout.
	KindRevokedCredential Kind = "revoked_credential"

	// KindSupersededCredential: token issued before the subject's
	// logout-all cutoff.
	KindSupersededCredential Kind = "superseded_credential"

	// KindUnknownPrincipal: token verified but the subject no longer
	// exists in the directory.
	KindUnknownPrincipal Kind = "unknown_principal"

	// KindDirectoryUnavailable: transient directory or store failure.
	// The only kind eligible for caller-side retry.
	KindDirectoryUnavailable Kind = "directory_unavailable"

	// KindInsufficientRole: authenticated but the role is not in the
	// endpoint's allowed set.
	KindInsufficientRole Kind = "insufficient_role"
)

// Error is a terminal request rejection. The message texts deliberately
// distinguish malformed/expired/revoked/superseded/unknown for legitimate
// clients; that disclosure trade-off is inherited API behavior.
type Error struct {
	Kind    Kind
	Message string

	// Role is set only for KindInsufficientRole, where the contract
	// echoes the caller's own role on one policy variant.
	Role domain.Role

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Kind) + ": " + e.cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus maps the kind onto the wire: 401 for every gate rejection,
// 403 for policy rejections, 503 for transient store failures.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInsufficientRole:
		return http.StatusForbidden
	case KindDirectoryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}

func ErrMissingCredential() *Error {
	return &Error{Kind: KindMissingCredential, Message: "you are not logged in"}
}

func ErrMalformedCredential() *Error {
	return &Error{Kind: KindMalformedCredential, Message: "invalid token, please log in again"}
}

func ErrExpiredCredential() *Error {
	return &Error{Kind: KindExpiredCredential, Message: "token has expired, please log in again"}
}

func ErrRevokedCredential() *Error {
	return &Error{Kind: KindRevokedCredential, Message: "token has been invalidated, please log in again"}
}

func ErrSupersededCredential() *Error {
	return &Error{Kind: KindSupersededCredential, Message: "session has been terminated, please log in again"}
}

func ErrUnknownPrincipal() *Error {
	return &Error{Kind: KindUnknownPrincipal, Message: "the user belonging to this token no longer exists"}
}

func ErrDirectoryUnavailable(cause error) *Error {
	return &Error{Kind: KindDirectoryUnavailable, Message: "service temporarily unavailable", cause: cause}
}

func ErrInsufficientRole(role domain.Role) *Error {
	return &Error{Kind: KindInsufficientRole, Message: "you do not have permission to perform this action", Role: role}
}
