package port

// CredentialVerifier hashes and verifies account secrets.
//
// Verify must be resistant to timing attacks on the comparison and must
// return false for an absent stored hash.
type CredentialVerifier interface {
	Hash(secret string) (string, error)
	Verify(secret string, encoded string) (bool, error)
}
