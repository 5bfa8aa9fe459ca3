package errors

import "fmt"

var (
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrUnsupportedLanguage = fmt.Errorf("unsupported language")
	ErrRetriesExhausted    = fmt.Errorf("retries exhausted")
	ErrEmptyLanguageTable  = fmt.Errorf("no languages have been found")
)
