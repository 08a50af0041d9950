package models

// Tone classifies a user-facing message.
type Tone string

const (
	ToneOK    Tone = "ok"
	ToneError Tone = "error"
)

// Message is the single outcome line shown to the user after an operation.
type Message struct {
	Text string
	Tone Tone
}

// Empty reports whether there is nothing to show.
func (m Message) Empty() bool {
	return m.Text == ""
}
