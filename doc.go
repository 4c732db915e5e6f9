// Package auth implements the credential lifecycle for the cocktail catalog
// service: token issuance, bearer validation with live fingerprint
// revocation, the two phase password reset protocol, and admin claim
// management.
//
// Tokens embed a snapshot of the identity's claims and its revocation
// fingerprint. Validation re-reads the fingerprint from the credential store
// on every request, so rotating it (password change or reset) immediately
// invalidates every previously issued token without a blacklist.
package auth
