// Package localauth is an in-process authentication provider for
// development and tests. Accounts live in memory, passwords are stored as
// argon2id hashes, and access tokens are HS256 JWTs.
//
// It implements the same provider contract as a remote backend, including
// the auth state stream, so a guard wired against it behaves exactly as it
// would in production. It is not meant to sit behind real traffic.
package localauth
