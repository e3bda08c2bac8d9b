// Package transcript folds stream frames into an ordered message list.
//
// Every function here is pure: inputs are never mutated and a new slice is
// returned whenever the transcript changes.
package transcript

import (
	"slices"

	"github.com/tailored-agentic-units/interview/core/protocol"
	"github.com/tailored-agentic-units/interview/stream"
)

const (
	// FailureMessage replaces an assistant message whose response failed
	// before producing any text, or that the relay reported as an error.
	FailureMessage = "Sorry, something went wrong while generating a response. Please try again."

	// FailureSuffix is appended to partial content when the stream breaks
	// after text has arrived.
	FailureSuffix = "\n\n[response interrupted: connection lost]"
)

// Reduce applies frame to the message with ID targetID and returns the next
// transcript. Text frames append to the target's content; error frames replace
// it with FailureMessage; metadata and done frames leave the transcript as is.
// A missing target is a no-op.
func Reduce(msgs []protocol.Message, targetID string, frame stream.Frame) []protocol.Message {
	switch {
	case frame.IsText():
		return update(msgs, targetID, func(m *protocol.Message) {
			m.Content += frame.Text
		})
	case frame.Kind == stream.KindError:
		return update(msgs, targetID, func(m *protocol.Message) {
			m.Content = FailureMessage
		})
	default:
		return msgs
	}
}

// MarkFailed records a broken stream on the target message. An empty
// placeholder gets FailureMessage; partial content is kept and FailureSuffix
// appended.
func MarkFailed(msgs []protocol.Message, targetID string) []protocol.Message {
	return update(msgs, targetID, func(m *protocol.Message) {
		if m.Content == "" {
			m.Content = FailureMessage
			return
		}
		m.Content += FailureSuffix
	})
}

// Append returns a transcript with added appended at the end.
func Append(msgs []protocol.Message, added ...protocol.Message) []protocol.Message {
	next := make([]protocol.Message, 0, len(msgs)+len(added))
	next = append(next, msgs...)
	return append(next, added...)
}

// Remove returns a transcript without the messages whose IDs are listed.
func Remove(msgs []protocol.Message, ids ...string) []protocol.Message {
	next := make([]protocol.Message, 0, len(msgs))
	for _, m := range msgs {
		if !slices.Contains(ids, m.ID) {
			next = append(next, m)
		}
	}
	return next
}

// Find returns the message with the given ID.
func Find(msgs []protocol.Message, id string) (protocol.Message, bool) {
	i := index(msgs, id)
	if i < 0 {
		return protocol.Message{}, false
	}
	return msgs[i], true
}

// Exchanges counts user messages that have an assistant reply after them.
func Exchanges(msgs []protocol.Message) int {
	count := 0
	pending := false
	for _, m := range msgs {
		switch m.Role {
		case protocol.RoleUser:
			pending = true
		case protocol.RoleAssistant:
			if pending {
				count++
				pending = false
			}
		}
	}
	return count
}

func update(msgs []protocol.Message, id string, fn func(*protocol.Message)) []protocol.Message {
	i := index(msgs, id)
	if i < 0 {
		return msgs
	}
	next := slices.Clone(msgs)
	fn(&next[i])
	return next
}

func index(msgs []protocol.Message, id string) int {
	return slices.IndexFunc(msgs, func(m protocol.Message) bool {
		return m.ID == id
	})
}
