package driven

// Normaliser extracts readable text from one file format before chunking.
type Normaliser interface {
	// Name returns the normaliser name for logging.
	Name() string

	// Extensions returns the lower-cased file extensions handled, with the dot.
	Extensions() []string

	// Normalise returns the plain text of content.
	// Content that is not valid UTF-8 is rejected with domain.ErrInvalidInput.
	Normalise(content []byte) (string, error)
}
