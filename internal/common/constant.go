// Package common holds the wire-level names shared by the API client and
// its tests.
package common

import "strings"

// HTTP headers sent with every API request.
const (
	AuthorizationHeader = "Authorization"
	RequestIDHeader     = "X-Request-ID"
	bearerPrefix        = "Bearer "
)

// BearerValue formats token for the Authorization header.
func BearerValue(token string) string {
	return bearerPrefix + token
}

// TokenFromBearer extracts the token from an Authorization header value.
// It returns "" if the value does not use the bearer scheme.
func TokenFromBearer(v string) string {
	t, ok := strings.CutPrefix(v, bearerPrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(t)
}
