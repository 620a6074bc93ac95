// Package cryptox holds the credential hashing used for user accounts.
//
// Two algorithms are supported: argon2id (default) and bcrypt. Both produce
// self-describing encoded strings, so Verify works on any stored hash
// regardless of which Hasher is currently configured:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//	$2a$10$...
package cryptox
