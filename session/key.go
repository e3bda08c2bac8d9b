package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KeyDelimiter joins an account ID and a contact identity into a session key.
// Contact identities never contain it; account IDs may, which is why Split
// cuts at the last occurrence.
const KeyDelimiter = "+"

// Key identifies one chat or interview session.
type Key struct {
	AccountID       string
	ContactIdentity string
}

// Compose joins accountID and contact into a session key string.
func Compose(accountID, contact string) (string, error) {
	k := Key{AccountID: accountID, ContactIdentity: contact}
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k.String(), nil
}

// Split recovers the Key from a composed session key by cutting at the last
// delimiter.
func Split(key string) (Key, error) {
	i := strings.LastIndex(key, KeyDelimiter)
	if i < 0 {
		return Key{}, fmt.Errorf("%w: %q has no %q delimiter", ErrInvalidKey, key, KeyDelimiter)
	}

	k := Key{AccountID: key[:i], ContactIdentity: key[i+len(KeyDelimiter):]}
	if k.AccountID == "" || k.ContactIdentity == "" {
		return Key{}, fmt.Errorf("%w: %q has an empty account or contact", ErrInvalidKey, key)
	}
	return k, nil
}

// NewChatKey builds a key for a fresh agent chat that has no contact yet.
func NewChatKey(accountID string) (Key, error) {
	k := Key{
		AccountID:       accountID,
		ContactIdentity: "chat_" + strconv.FormatInt(time.Now().UnixMilli(), 10),
	}
	return k, k.Validate()
}

// Validate reports whether k composes into a key that splits back to k.
func (k Key) Validate() error {
	if k.AccountID == "" {
		return fmt.Errorf("%w: empty account id", ErrInvalidKey)
	}
	if k.ContactIdentity == "" {
		return fmt.Errorf("%w: empty contact identity", ErrInvalidKey)
	}
	if strings.Contains(k.ContactIdentity, KeyDelimiter) {
		return fmt.Errorf("%w: contact identity %q contains %q", ErrInvalidKey, k.ContactIdentity, KeyDelimiter)
	}
	return nil
}

// String returns the composed session key. It does not validate.
func (k Key) String() string {
	return k.AccountID + KeyDelimiter + k.ContactIdentity
}
