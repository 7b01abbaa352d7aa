// Package plaintext normalises plain text files.
package plaintext

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text files.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns "plaintext".
func (n *Normaliser) Name() string {
	return "plaintext"
}

// Extensions returns the extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".text", ".rst"}
}

// Normalise returns the text with Windows line endings and a byte order mark removed.
func (n *Normaliser) Normalise(content []byte) (string, error) {
	if err := CheckText(content); err != nil {
		return "", err
	}
	text := strings.TrimPrefix(string(content), "\uFEFF")
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}

// CheckText rejects content that is not valid UTF-8 text.
func CheckText(content []byte) error {
	if !utf8.Valid(content) {
		return fmt.Errorf("%w: content is not UTF-8 text", domain.ErrInvalidInput)
	}
	return nil
}
