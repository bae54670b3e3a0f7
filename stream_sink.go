package wikf

// Stream receives tokens from the parser in document order.
type Stream interface {
	WriteToken(Token) error
	Flush() error
}

// StreamFunc adapts a function to a Stream with a no-op Flush.
type StreamFunc func(Token) error

// WriteToken calls f(tok).
func (f StreamFunc) WriteToken(tok Token) error {
	return f(tok)
}

// Flush does nothing.
func (f StreamFunc) Flush() error {
	return nil
}
