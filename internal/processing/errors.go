package processing

import "errors"

// ErrAlreadyProcessing rejects a second run request while one is in
// flight for the same document.
var ErrAlreadyProcessing = errors.New("document is already being processed")

// ErrNotEligible rejects processing of documents whose file type the
// collaborator cannot extract text from.
var ErrNotEligible = errors.New("document file type is not processable")
