// Package queue provides the broker behind asynchronous history writes.
// The pipeline publishes executed commands as events; a worker subscribes
// and persists them, so a slow database never delays the voice response.
package queue

// MessageQueue is the event bus contract the history service depends on.
// Subjects are dot-separated event names such as "assistant.command.executed".
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}
