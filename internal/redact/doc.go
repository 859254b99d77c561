// Package redact scrubs secrets from diff text before it is sent to a
// generation backend.
//
// Detection is regex based and covers common credential shapes: generic key
// and password assignments, cloud provider keys, JWTs, private key headers
// and provider tokens. Files whose paths match a redaction glob are replaced
// wholesale instead of being scanned.
package redact
