package scrum

import (
	"errors"
	"fmt"
)

// ErrForbidden: Benutzer ist authentifiziert, hat aber nicht die
// erforderliche Rolle. Führt zu 403, ohne Zustandsänderung.
var ErrForbidden = errors.New("zugriff verweigert")

// ErrNotFound: Entität existiert nicht oder ist für den Aufrufer nicht
// sichtbar. Führt zu 404.
var ErrNotFound = errors.New("nicht gefunden")

// ValidationError ist eine verletzte Geschäftsregel. Führt zu 400; die
// Meldung benennt die Regel.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation prüft, ob ein Fehler eine Regelverletzung ist.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
