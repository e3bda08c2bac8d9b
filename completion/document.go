package completion

import (
	"fmt"
	"strings"
	"time"

	"github.com/tailored-agentic-units/interview/core/protocol"
	"github.com/tailored-agentic-units/interview/session"
)

const (
	generatedLayout = "January 2, 2006 at 03:04 PM MST"
	stampLayout     = "1/2/2006, 3:04:05 PM"
)

// RenderDocument renders a session transcript as the plain-text document fed
// to knowledge-base training.
func RenderDocument(req session.CompletionRequest, generated time.Time) []byte {
	var b strings.Builder

	b.WriteString("Chat Conversation\n\n")
	fmt.Fprintf(&b, "Participant: %s\n", req.ContactIdentity)
	fmt.Fprintf(&b, "Session ID: %s\n", req.SessionKey)
	fmt.Fprintf(&b, "User ID: %s\n", req.AccountID)
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format(generatedLayout))
	fmt.Fprintf(&b, "Total Messages: %d\n\n", len(req.Messages))
	b.WriteString("Conversation History\n")
	b.WriteString("===================\n\n")

	for i, m := range req.Messages {
		if !m.Timestamp.IsZero() {
			fmt.Fprintf(&b, "[%s]\n", m.Timestamp.Format(stampLayout))
		}
		fmt.Fprintf(&b, "%s: %s\n\n", label(m.Role), m.Content)
		if i < len(req.Messages)-1 {
			b.WriteString("---\n\n")
		}
	}

	b.WriteString("\nEnd of Conversation\n")
	return []byte(b.String())
}

func label(r protocol.Role) string {
	switch r {
	case protocol.RoleUser:
		return "User"
	case protocol.RoleAssistant:
		return "Assistant"
	case "":
		return "unknown"
	default:
		return string(r)
	}
}
