package transcript_test

import (
	"reflect"
	"testing"

	"github.com/tailored-agentic-units/interview/core/protocol"
	"github.com/tailored-agentic-units/interview/stream"
	"github.com/tailored-agentic-units/interview/transcript"
)

func seed() []protocol.Message {
	return []protocol.Message{
		{ID: "u1", Role: protocol.RoleUser, Content: "Hello"},
		{ID: "a1", Role: protocol.RoleAssistant, Content: ""},
	}
}

func TestReduce_ContentAccumulates(t *testing.T) {
	msgs := seed()
	for _, f := range []stream.Frame{stream.Content("Hi"), stream.Content(" there")} {
		msgs = transcript.Reduce(msgs, "a1", f)
	}

	if got := msgs[1].Content; got != "Hi there" {
		t.Errorf("got content %q, want %q", got, "Hi there")
	}
	if got := msgs[0].Content; got != "Hello" {
		t.Errorf("user message changed: %q", got)
	}
}

func TestReduce_UnparsedTreatedAsContent(t *testing.T) {
	msgs := transcript.Reduce(seed(), "a1", stream.Unparsed("raw text"))

	if got := msgs[1].Content; got != "raw text" {
		t.Errorf("got content %q, want %q", got, "raw text")
	}
}

func TestReduce_NoMutationFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame stream.Frame
	}{
		{"metadata", stream.Metadata(4)},
		{"done", stream.Done()},
		{"empty content", stream.Content("")},
		{"empty unparsed", stream.Unparsed("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := seed()
			got := transcript.Reduce(msgs, "a1", tt.frame)
			if !reflect.DeepEqual(got, seed()) {
				t.Errorf("got %v, want unchanged", got)
			}
		})
	}
}

func TestReduce_ErrorReplacesContent(t *testing.T) {
	msgs := transcript.Reduce(seed(), "a1", stream.Content("partial"))
	msgs = transcript.Reduce(msgs, "a1", stream.Error("agent failed"))

	if got := msgs[1].Content; got != transcript.FailureMessage {
		t.Errorf("got content %q, want %q", got, transcript.FailureMessage)
	}
}

func TestReduce_MissingTargetIsNoOp(t *testing.T) {
	msgs := seed()
	got := transcript.Reduce(msgs, "missing", stream.Content("x"))

	if !reflect.DeepEqual(got, seed()) {
		t.Errorf("got %v, want unchanged", got)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	msgs := seed()
	_ = transcript.Reduce(msgs, "a1", stream.Content("x"))
	_ = transcript.Reduce(msgs, "a1", stream.Error("x"))

	if msgs[1].Content != "" {
		t.Errorf("input mutated: %q", msgs[1].Content)
	}
}

func TestReduce_DoneAfterFinalizationIsIdempotent(t *testing.T) {
	msgs := transcript.Reduce(seed(), "a1", stream.Content("final"))
	once := transcript.Reduce(msgs, "a1", stream.Done())
	twice := transcript.Reduce(once, "a1", stream.Done())

	if !reflect.DeepEqual(once, msgs) || !reflect.DeepEqual(twice, msgs) {
		t.Errorf("done mutated transcript: %v", twice)
	}
}

func TestReduce_ArrivalOrder(t *testing.T) {
	frames := []string{"a", "b", "c", "d"}
	msgs := seed()
	for _, f := range frames {
		msgs = transcript.Reduce(msgs, "a1", stream.Content(f))
	}

	if got := msgs[1].Content; got != "abcd" {
		t.Errorf("got content %q, want %q", got, "abcd")
	}
}

func TestMarkFailed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty placeholder", "", transcript.FailureMessage},
		{"partial content", "Some par", "Some par" + transcript.FailureSuffix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := seed()
			msgs[1].Content = tt.content

			got := transcript.MarkFailed(msgs, "a1")
			if got[1].Content != tt.want {
				t.Errorf("got content %q, want %q", got[1].Content, tt.want)
			}
			if msgs[1].Content != tt.content {
				t.Errorf("input mutated: %q", msgs[1].Content)
			}
		})
	}
}

func TestAppendRemoveFind(t *testing.T) {
	msgs := seed()
	extra := protocol.Message{ID: "u2", Role: protocol.RoleUser, Content: "Again"}

	appended := transcript.Append(msgs, extra)
	if len(appended) != 3 || len(msgs) != 2 {
		t.Fatalf("got lengths %d and %d, want 3 and 2", len(appended), len(msgs))
	}

	found, ok := transcript.Find(appended, "u2")
	if !ok || found.Content != "Again" {
		t.Errorf("Find(u2) = %v, %v", found, ok)
	}

	removed := transcript.Remove(appended, "u1", "a1")
	if len(removed) != 1 || removed[0].ID != "u2" {
		t.Errorf("got %v, want only u2", removed)
	}
	if _, ok := transcript.Find(removed, "a1"); ok {
		t.Error("a1 should be removed")
	}
}

func TestExchanges(t *testing.T) {
	u := protocol.Message{Role: protocol.RoleUser}
	a := protocol.Message{Role: protocol.RoleAssistant}

	tests := []struct {
		name string
		msgs []protocol.Message
		want int
	}{
		{"empty", nil, 0},
		{"one exchange", []protocol.Message{u, a}, 1},
		{"greeting first", []protocol.Message{a, u, a}, 1},
		{"unanswered", []protocol.Message{u, a, u}, 1},
		{"double user", []protocol.Message{u, u, a, u, a}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transcript.Exchanges(tt.msgs); got != tt.want {
				t.Errorf("Exchanges() = %d, want %d", got, tt.want)
			}
		})
	}
}
