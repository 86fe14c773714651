package event_test

import (
	"errors"
	"strings"
	"testing"

	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/event"
)

func TestParseTypeRoundTripsNames(t *testing.T) {
	t.Parallel()
	for _, typ := range []event.Type{event.ActivityResumed, event.ScreenNonInteractive, event.ScrollMeasured, event.ServiceStopped} {
		parsed, err := event.ParseType(strings.ToLower(typ.String()))
		if err != nil {
			t.Fatalf("parse %s: %v", typ, err)
		}
		if parsed != typ {
			t.Fatalf("expected %s, got %s", typ, parsed)
		}
	}
	if _, err := event.ParseType("SCREEN_ON"); !errors.Is(err, apperrors.ErrUnknownEventType) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
	if event.TypeUnknown.Valid() || event.TypeUnknown.String() != "UNKNOWN" {
		t.Fatalf("TypeUnknown should not be valid")
	}
}

func TestClassifyCodes(t *testing.T) {
	t.Parallel()
	cases := map[int]event.Type{
		1:    event.ActivityResumed,
		2:    event.ActivityPaused,
		23:   event.ActivityStopped,
		15:   event.ScreenInteractive,
		16:   event.ScreenNonInteractive,
		18:   event.KeyguardHidden,
		1000: event.UserUnlocked,
		1002: event.ScrollMeasured,
		1007: event.NotificationRemoved,
	}
	for code, want := range cases {
		got, ok := event.Classify(code)
		if !ok || got != want {
			t.Fatalf("code %d: expected %s, got %s (%v)", code, want, got, ok)
		}
	}
	if _, ok := event.Classify(999); ok {
		t.Fatalf("code 999 should not classify")
	}
}

func TestTypePredicates(t *testing.T) {
	t.Parallel()
	if !event.UserPresent.IsUnlock() || !event.KeyguardHidden.IsUnlock() || event.ScreenInteractive.IsUnlock() {
		t.Fatalf("unexpected unlock classification")
	}
	if !event.ScreenNonInteractive.IsLock() || !event.ScreenNonInteractive.IsLifecycle() {
		t.Fatalf("screen off should be a lock and a lifecycle event")
	}
	if !event.ScrollInferred.IsScroll() || !event.ScrollInferred.IsInteraction() {
		t.Fatalf("inferred scroll should be a scroll interaction")
	}
	if event.NotificationPosted.IsInteraction() {
		t.Fatalf("notifications are not interactions")
	}
}

func TestDecodeLineAcceptsNamesAndCodes(t *testing.T) {
	t.Parallel()
	named, err := event.DecodeLine([]byte(`{"package":"com.app","type":"scroll_measured","ts":1000,"dx":3,"dy":-4}`))
	if err != nil {
		t.Fatalf("decode named: %v", err)
	}
	if named.Type != event.ScrollMeasured || named.ScrollDeltaY == nil || *named.ScrollDeltaY != -4 {
		t.Fatalf("unexpected named event: %+v", named)
	}

	coded, err := event.DecodeLine([]byte(`{"package":"com.app","code":1,"ts":2000}`))
	if err != nil {
		t.Fatalf("decode coded: %v", err)
	}
	if coded.Type != event.ActivityResumed || coded.TimestampMs != 2000 {
		t.Fatalf("unexpected coded event: %+v", coded)
	}

	for _, line := range []string{
		`{"package":"com.app","ts":1000}`,
		`{"package":"com.app","type":"ACTIVITY_RESUMED"}`,
		`{"package":"com.app","code":999,"ts":1000}`,
		`{"package":"com.app","type":"BOGUS","ts":1000}`,
		`not json`,
	} {
		if _, err := event.DecodeLine([]byte(line)); err == nil {
			t.Fatalf("expected error for %s", line)
		}
	}
}

func TestEncodeLineKeepsEvent(t *testing.T) {
	t.Parallel()
	dx := int64(12)
	in := event.RawEvent{PackageName: "com.app", ClassName: "Main", Type: event.ScrollInferred, TimestampMs: 5000, LocalDate: "2026-03-10", ScrollDeltaX: &dx}
	line, err := event.EncodeLine(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if line[len(line)-1] != '\n' {
		t.Fatalf("encoded line must end with newline")
	}
	out, err := event.DecodeLine(line[:len(line)-1])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.PackageName != in.PackageName || out.Type != in.Type || out.LocalDate != in.LocalDate || *out.ScrollDeltaX != dx {
		t.Fatalf("event changed through NDJSON: %+v", out)
	}
}
