// Package stream decodes the relay's line-framed response body into logical
// frames.
//
// The relay writes lines of the form "data: <payload>". A payload is either the
// sentinel [DONE], a JSON object with optional content, message_count and
// error fields, or opaque text that is treated as content.
package stream

import "fmt"

// Prefix marks a line that carries a payload.
const Prefix = "data: "

// DoneSentinel terminates a stream.
const DoneSentinel = "[DONE]"

// Kind tags the variant held by a Frame.
type Kind int

const (
	KindContent Kind = iota
	KindMetadata
	KindDone
	KindError
	KindUnparsed
)

func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindMetadata:
		return "metadata"
	case KindDone:
		return "done"
	case KindError:
		return "error"
	case KindUnparsed:
		return "unparsed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Frame is one logical unit of a streamed response.
//
// Text holds the delta for KindContent, the raw payload for KindUnparsed and
// the server message for KindError. MessageCount is set for KindMetadata and
// is an absolute count, not an increment.
type Frame struct {
	Kind         Kind
	Text         string
	MessageCount int
}

// Content returns a content delta frame.
func Content(text string) Frame { return Frame{Kind: KindContent, Text: text} }

// Metadata returns a metadata frame carrying the server's message count.
func Metadata(count int) Frame { return Frame{Kind: KindMetadata, MessageCount: count} }

// Done returns the terminal frame.
func Done() Frame { return Frame{Kind: KindDone} }

// Error returns a server-reported error frame.
func Error(message string) Frame { return Frame{Kind: KindError, Text: message} }

// Unparsed returns a frame for a payload that was not structured data.
func Unparsed(raw string) Frame { return Frame{Kind: KindUnparsed, Text: raw} }

// IsText reports whether the frame appends text to the assistant message.
func (f Frame) IsText() bool {
	return (f.Kind == KindContent || f.Kind == KindUnparsed) && f.Text != ""
}

func (f Frame) String() string {
	switch f.Kind {
	case KindMetadata:
		return fmt.Sprintf("%s(%d)", f.Kind, f.MessageCount)
	case KindDone:
		return f.Kind.String()
	default:
		return fmt.Sprintf("%s(%q)", f.Kind, f.Text)
	}
}
