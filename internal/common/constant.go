// Package common contains shared constants and sentinel errors used across
// GopherBlog components.
package common

// APIPrefix is the version segment every HTTP route is mounted under.
const APIPrefix = "/api/v1"

// Session cookie names shared by the server and the CLI client.
const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
	LoggedInCookieName     = "logged_in"
)

// Default user role assigned at registration.
const RoleUser = "user"
