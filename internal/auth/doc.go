// Package auth issues and validates the HS256 bearer tokens that protect the
// API when a JWT secret is configured. Tokens identify a client by subject;
// there are no user accounts.
package auth
