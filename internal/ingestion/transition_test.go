package ingestion

import (
	"errors"
	"testing"
)

func TestNextUploadStatus(t *testing.T) {
	cases := []struct {
		from    UploadStatus
		event   Event
		want    UploadStatus
		illegal bool
	}{
		{UploadReady, EventStart, UploadInFlight, false},
		{UploadInFlight, EventSucceed, UploadSucceeded, false},
		{UploadInFlight, EventFail, UploadFailed, false},
		{UploadReady, EventSucceed, UploadReady, true},
		{UploadSucceeded, EventStart, UploadSucceeded, true},
		{UploadFailed, EventStart, UploadFailed, true},
	}
	for _, tc := range cases {
		got, err := NextUploadStatus(tc.from, tc.event)
		if tc.illegal {
			var illegal *IllegalTransitionError
			if !errors.As(err, &illegal) {
				t.Errorf("%s+%s: err = %v, want IllegalTransitionError", tc.from, tc.event, err)
			}
			if got != tc.from {
				t.Errorf("%s+%s: state changed to %s on illegal event", tc.from, tc.event, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s+%s: %v", tc.from, tc.event, err)
		}
		if got != tc.want {
			t.Errorf("%s+%s = %s, want %s", tc.from, tc.event, got, tc.want)
		}
	}
}

func TestNextAIStatusAllowsReentry(t *testing.T) {
	for _, from := range []AIStatus{AINotProcessed, AIProcessed, AIFailed} {
		got, err := NextAIStatus(from, EventStart)
		if err != nil {
			t.Errorf("%s+start: %v", from, err)
		}
		if got != AIProcessing {
			t.Errorf("%s+start = %s, want processing", from, got)
		}
	}
}

func TestNextAIStatusSingleInFlight(t *testing.T) {
	_, err := NextAIStatus(AIProcessing, EventStart)
	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("processing+start = %v, want IllegalTransitionError", err)
	}
}

func TestNextAIStatusStorageOnlyNeverStarts(t *testing.T) {
	_, err := NextAIStatus(AIStorageOnly, EventStart)
	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("storage_only+start = %v, want IllegalTransitionError", err)
	}
}

func TestNextAIStatusSettles(t *testing.T) {
	if got, err := NextAIStatus(AIProcessing, EventSucceed); err != nil || got != AIProcessed {
		t.Fatalf("processing+succeed = %s, %v", got, err)
	}
	if got, err := NextAIStatus(AIProcessing, EventFail); err != nil || got != AIFailed {
		t.Fatalf("processing+fail = %s, %v", got, err)
	}
}
