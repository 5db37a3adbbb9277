package ingestion

import "fmt"

// Event drives a status transition.
type Event string

const (
	EventStart   Event = "start"
	EventSucceed Event = "succeed"
	EventFail    Event = "fail"
)

// IllegalTransitionError reports an event applied in a state that does
// not accept it. The caller decides whether that is a programming error
// or a rejected user action.
type IllegalTransitionError struct {
	From  string
	Event Event
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s does not accept %s", e.From, e.Event)
}

// NextUploadStatus is the upload state machine. Upload states are
// one-way: uploaded and error are terminal, re-upload means staging the
// file again as a new item.
func NextUploadStatus(from UploadStatus, event Event) (UploadStatus, error) {
	switch {
	case from == UploadReady && event == EventStart:
		return UploadInFlight, nil
	case from == UploadInFlight && event == EventSucceed:
		return UploadSucceeded, nil
	case from == UploadInFlight && event == EventFail:
		return UploadFailed, nil
	}
	return from, &IllegalTransitionError{From: string(from), Event: event}
}

// NextAIStatus is the processing state machine. Processed and failed
// both accept a new start: re-processing is always allowed once no run
// is in flight.
func NextAIStatus(from AIStatus, event Event) (AIStatus, error) {
	switch {
	case (from == AINotProcessed || from == AIProcessed || from == AIFailed) && event == EventStart:
		return AIProcessing, nil
	case from == AIProcessing && event == EventSucceed:
		return AIProcessed, nil
	case from == AIProcessing && event == EventFail:
		return AIFailed, nil
	}
	return from, &IllegalTransitionError{From: string(from), Event: event}
}
