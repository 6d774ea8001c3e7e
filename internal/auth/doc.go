// Package auth gates the remote MCP transport.
//
// Bearer tokens are self-issued HS256 JWTs, handed out by /auth/callback
// after an authorization-code exchange with the configured identity
// provider. Verification is stateless: signature and expiry only, no
// token store and no revocation. Unauthorized requests receive a 401 with
// a JSON-RPC error body plus WWW-Authenticate and discovery Link headers
// pointing clients at the authorization flow.
package auth
