package memory

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Transcript is one archived session document.
type Transcript struct {
	AccountID string
	Contact   string
	Document  []byte
}

// Archive stores rendered transcripts by account and contact on top of a
// Store.
type Archive struct {
	store Store
}

// NewArchive wraps store.
func NewArchive(store Store) *Archive {
	return &Archive{store: store}
}

// Put saves the document for one session, replacing any previous version.
func (a *Archive) Put(ctx context.Context, accountID, contact string, doc []byte) error {
	return a.store.Save(ctx, Entry{Key: TranscriptKey(accountID, contact), Value: doc})
}

// Get loads the document for one session.
func (a *Archive) Get(ctx context.Context, accountID, contact string) (*Transcript, error) {
	entries, err := a.store.Load(ctx, TranscriptKey(accountID, contact))
	if err != nil {
		return nil, err
	}
	return &Transcript{AccountID: accountID, Contact: contact, Document: entries[0].Value}, nil
}

// Contacts lists the contacts with an archived transcript under accountID.
// An empty accountID lists every account as "<account>/<contact>".
func (a *Archive) Contacts(ctx context.Context, accountID string) ([]string, error) {
	prefix := NamespaceTranscripts + "/"
	if accountID != "" {
		prefix = path.Join(NamespaceTranscripts, segment(accountID)) + "/"
	}

	keys, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}

	contacts := make([]string, 0, len(keys))
	for _, k := range keys {
		name, ok := strings.CutSuffix(strings.TrimPrefix(k, prefix), ".txt")
		if !ok {
			continue
		}
		contacts = append(contacts, name)
	}
	return contacts, nil
}
