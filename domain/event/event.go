// Package event defines the closed set of outbound events the server
// pushes to connections. Kind returns the wire name used by clients.
package event

type Event interface {
	Kind() string
}

// CodeUpdate carries the full authoritative document text.
type CodeUpdate struct {
	Code string
}

func (CodeUpdate) Kind() string { return "codeUpdate" }

// UserJoined carries the room's full member list. Order is irrelevant;
// clients treat it as a set.
type UserJoined struct {
	Members []string
}

func (UserJoined) Kind() string { return "userJoined" }

type UserTyping struct {
	UserName string
}

func (UserTyping) Kind() string { return "userTyping" }

// TypingCleared is emitted when a typing marker expires without being
// refreshed.
type TypingCleared struct {
	UserName string
}

func (TypingCleared) Kind() string { return "typingCleared" }

type LanguageUpdate struct {
	Language string
}

func (LanguageUpdate) Kind() string { return "languageUpdate" }

// CodeResponse carries the normalized output of an execution run,
// or an error-shaped message when the run failed.
type CodeResponse struct {
	Output string
}

func (CodeResponse) Kind() string { return "codeResponse" }

// Toast is a human-readable notice. DurationMs hints how long clients
// should display it before expiring it locally.
type Toast struct {
	Message    string
	DurationMs int
}

func (Toast) Kind() string { return "toast" }
