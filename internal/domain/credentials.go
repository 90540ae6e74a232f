package domain

// CredentialProvider resolves the password for a database connection tuple.
// Implementations must never log or persist the resolved password.
type CredentialProvider interface {
	Lookup(host string, port int, database, user string) (string, error)
}
