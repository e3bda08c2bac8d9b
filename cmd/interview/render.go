package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/tailored-agentic-units/interview/core/protocol"
	"github.com/tailored-agentic-units/interview/session"
)

var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	stampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

func roleLabel(r protocol.Role) string {
	switch r {
	case protocol.RoleUser:
		return userStyle.Render("You")
	case protocol.RoleAssistant:
		return assistantStyle.Render("Agent")
	default:
		return string(r)
	}
}

func renderMessage(w io.Writer, m protocol.Message) {
	stamp := ""
	if !m.Timestamp.IsZero() {
		stamp = " " + stampStyle.Render(m.Timestamp.Local().Format("15:04"))
	}
	fmt.Fprintf(w, "%s%s\n%s\n\n", roleLabel(m.Role), stamp, m.Content)
}

func renderHeader(w io.Writer, key session.Key, status protocol.Status, count int) {
	fmt.Fprintln(w, headerStyle.Render(key.String()))
	fmt.Fprintf(w, "%s  %d/%d exchanges\n\n",
		stampStyle.Render(string(status)), count, protocol.CompletionThreshold)
}

// streamPrinter writes the growing tail of the newest assistant message as
// snapshots arrive. It only prints while armed, so loading history is quiet.
type streamPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	armed   bool
	id      string
	printed string
}

func (p *streamPrinter) arm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.armed = true
	p.id = ""
	p.printed = ""
}

func (p *streamPrinter) disarm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.armed && p.id != "" {
		fmt.Fprint(p.w, "\n\n")
	}
	p.armed = false
}

func (p *streamPrinter) update(msgs []protocol.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.armed || len(msgs) == 0 {
		return
	}
	last := msgs[len(msgs)-1]
	if last.Role != protocol.RoleAssistant {
		return
	}

	if last.ID != p.id {
		p.id = last.ID
		p.printed = ""
		fmt.Fprintf(p.w, "%s\n", roleLabel(protocol.RoleAssistant))
	}

	if rest, ok := strings.CutPrefix(last.Content, p.printed); ok {
		fmt.Fprint(p.w, rest)
	} else {
		// content was replaced, not extended
		fmt.Fprintf(p.w, "\n%s", last.Content)
	}
	p.printed = last.Content
}
