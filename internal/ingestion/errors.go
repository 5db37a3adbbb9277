package ingestion

import "errors"

var (
	ErrSessionNotFound = errors.New("ingestion session not found")
	ErrItemNotFound    = errors.New("ingestion item not found")
	ErrNoReadyItems    = errors.New("no items ready to commit")
	ErrItemNotEditable = errors.New("item can no longer be edited")
)
