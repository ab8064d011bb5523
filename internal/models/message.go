package models

// ChatMessage is an inbound message seen in the watched channel.
type ChatMessage struct {
	Workspace string
	Channel   string
	User      string
	Text      string
}
