package redis

// Keyspace builds the Redis keys used by the adapters in this package.
// All keys share Prefix so several deployments can share one Redis.
type Keyspace struct {
	Prefix string
}

// DefaultKeyspace is used when no prefix is configured.
var DefaultKeyspace = Keyspace{Prefix: "aihub:"}

func (k Keyspace) prefix() string {
	if k.Prefix == "" {
		return DefaultKeyspace.Prefix
	}
	return k.Prefix
}

// Session is the key prefix for session records.
func (k Keyspace) Session() string { return k.prefix() + "session:" }

// UserChat is the list of one user's messages, newest first.
func (k Keyspace) UserChat(userID string) string { return k.prefix() + "chat:user:" + userID }

// AllChat is the list of every user's messages, newest first.
func (k Keyspace) AllChat() string { return k.prefix() + "chat:all" }

// ChatCount counts the prompts a user has sent.
func (k Keyspace) ChatCount(userID string) string { return k.prefix() + "chat:count:" + userID }

// Credits holds a user's balance as an integer.
func (k Keyspace) Credits(userID string) string { return k.prefix() + "credits:" + userID }
