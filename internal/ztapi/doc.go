// Package ztapi provides HTTP clients for the two ZeroTier backends the
// dashboard reads from and acts on.
//
// LocalClient talks to the ZeroTier One service on loopback
// (http://127.0.0.1:9993), authenticated with the X-ZT1-Auth header
// carrying the contents of authtoken.secret. It lists, joins and leaves
// networks.
//
// CentralClient talks to ZeroTier Central (https://api.zerotier.com/api/v1),
// authenticated with "Authorization: token <api token>". It lists members,
// renames, authorizes, deauthorizes and deletes them, and reads and replaces
// network rules. Requests are paced by a token bucket.
//
// Neither client caches anything: every call returns a fresh value the
// caller owns.
//
// # Errors
//
// Every failure is an *APIError with an ErrorType:
//
//	ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS, ErrTypeNetwork  transport
//	ErrTypeAuth         HTTP 401 or 403
//	ErrTypeNotFound     HTTP 404
//	ErrTypeRateLimited  HTTP 429
//	ErrTypeHTTP         any other non-2xx
//	ErrTypeParse        malformed body
//	ErrTypeConfig       missing token
//
// Use IsAuthError, IsNotFound and IsRetryable to branch on them and
// ShortMessage for a one-line description.
package ztapi
