package token

// Repo is durable key/value storage for the token pair. Values survive
// process restarts. Get returns errors.ErrNotFound for absent keys.
type Repo interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
