// Package password provides local password policy validation and argon2id
// credential hashing.
//
// [Policy] enforces complexity rules client-side so invalid passwords never
// reach the network. [Hasher] produces PHC-formatted argon2id hashes and is
// used by provider implementations that store credentials themselves.
package password
