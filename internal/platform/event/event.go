// Package event defines the raw device-interaction events consumed by the
// capture and daily modules.
package event

import (
	"fmt"
	"strings"

	apperrors "usagetrail/internal/platform/errors"
)

type Type int

const (
	TypeUnknown Type = iota
	ActivityResumed
	ActivityPaused
	ActivityStopped
	ScreenInteractive
	ScreenNonInteractive
	KeyguardShown
	KeyguardHidden
	UserPresent
	UserUnlocked
	UserInteraction
	ScrollMeasured
	ScrollInferred
	AccessibilityClick
	AccessibilityFocus
	AccessibilityTyping
	NotificationPosted
	NotificationRemoved
	ServiceStarted
	ServiceStopped
)

var typeNames = map[Type]string{
	ActivityResumed:      "ACTIVITY_RESUMED",
	ActivityPaused:       "ACTIVITY_PAUSED",
	ActivityStopped:      "ACTIVITY_STOPPED",
	ScreenInteractive:    "SCREEN_INTERACTIVE",
	ScreenNonInteractive: "SCREEN_NON_INTERACTIVE",
	KeyguardShown:        "KEYGUARD_SHOWN",
	KeyguardHidden:       "KEYGUARD_HIDDEN",
	UserPresent:          "USER_PRESENT",
	UserUnlocked:         "USER_UNLOCKED",
	UserInteraction:      "USER_INTERACTION",
	ScrollMeasured:       "SCROLL_MEASURED",
	ScrollInferred:       "SCROLL_INFERRED",
	AccessibilityClick:   "ACCESSIBILITY_CLICK",
	AccessibilityFocus:   "ACCESSIBILITY_FOCUS",
	AccessibilityTyping:  "ACCESSIBILITY_TYPING",
	NotificationPosted:   "NOTIFICATION_POSTED",
	NotificationRemoved:  "NOTIFICATION_REMOVED",
	ServiceStarted:       "SERVICE_STARTED",
	ServiceStopped:       "SERVICE_STOPPED",
}

var typesByName = func() map[string]Type {
	out := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		out[name] = t
	}
	return out
}()

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

func ParseType(raw string) (Type, error) {
	t, ok := typesByName[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return TypeUnknown, fmt.Errorf("%w: %q", apperrors.ErrUnknownEventType, raw)
	}
	return t, nil
}

// Producer codes as emitted by the device-side collector. The usage-stats
// constants share their numeric values with the platform API; the collector's
// own synthetic events start at 1000.
const (
	codeActivityResumed      = 1
	codeActivityPaused       = 2
	codeActivityStopped      = 23
	codeUserInteraction      = 7
	codeNotificationPosted   = 12
	codeScreenInteractive    = 15
	codeScreenNonInteractive = 16
	codeKeyguardShown        = 17
	codeKeyguardHidden       = 18
	codeUserUnlocked         = 1000
	codeUserPresent          = 1001
	codeScrollMeasured       = 1002
	codeScrollInferred       = 1003
	codeAccessibilityClick   = 1004
	codeAccessibilityFocus   = 1005
	codeAccessibilityTyping  = 1006
	codeNotificationRemoved  = 1007
	codeServiceStarted       = 1008
	codeServiceStopped       = 1009
)

// Classify maps a producer event code onto Type. Codes outside the known set
// report false and are skipped by callers.
func Classify(code int) (Type, bool) {
	switch code {
	case codeActivityResumed:
		return ActivityResumed, true
	case codeActivityPaused:
		return ActivityPaused, true
	case codeActivityStopped:
		return ActivityStopped, true
	case codeUserInteraction:
		return UserInteraction, true
	case codeNotificationPosted:
		return NotificationPosted, true
	case codeScreenInteractive:
		return ScreenInteractive, true
	case codeScreenNonInteractive:
		return ScreenNonInteractive, true
	case codeKeyguardShown:
		return KeyguardShown, true
	case codeKeyguardHidden:
		return KeyguardHidden, true
	case codeUserUnlocked:
		return UserUnlocked, true
	case codeUserPresent:
		return UserPresent, true
	case codeScrollMeasured:
		return ScrollMeasured, true
	case codeScrollInferred:
		return ScrollInferred, true
	case codeAccessibilityClick:
		return AccessibilityClick, true
	case codeAccessibilityFocus:
		return AccessibilityFocus, true
	case codeAccessibilityTyping:
		return AccessibilityTyping, true
	case codeNotificationRemoved:
		return NotificationRemoved, true
	case codeServiceStarted:
		return ServiceStarted, true
	case codeServiceStopped:
		return ServiceStopped, true
	default:
		return TypeUnknown, false
	}
}

func (t Type) IsUnlock() bool {
	return t == UserUnlocked || t == UserPresent || t == KeyguardHidden
}

func (t Type) IsLock() bool {
	return t == ScreenNonInteractive
}

func (t Type) IsScroll() bool {
	return t == ScrollMeasured || t == ScrollInferred
}

// IsInteraction reports whether the event counts as user activity inside a
// foreground interval.
func (t Type) IsInteraction() bool {
	switch t {
	case ScrollMeasured, ScrollInferred, AccessibilityTyping, AccessibilityClick, AccessibilityFocus, UserInteraction:
		return true
	default:
		return false
	}
}

func (t Type) IsLifecycle() bool {
	switch t {
	case ActivityResumed, ActivityPaused, ActivityStopped, ScreenNonInteractive:
		return true
	default:
		return false
	}
}

// RawEvent is one immutable device-interaction event.
type RawEvent struct {
	PackageName  string
	ClassName    string
	Type         Type
	TimestampMs  int64
	LocalDate    string
	Source       string
	ScrollDeltaX *int64
	ScrollDeltaY *int64
	Value        *int64
}

// ScrollDelta returns the scroll distance carried by the event. Records
// written before per-axis deltas existed carry a single vertical value.
func (e RawEvent) ScrollDelta() (dx, dy int64, ok bool) {
	if e.ScrollDeltaX == nil && e.ScrollDeltaY == nil {
		if e.Value == nil || *e.Value == 0 {
			return 0, 0, false
		}
		return 0, *e.Value, true
	}
	if e.ScrollDeltaX != nil {
		dx = *e.ScrollDeltaX
	}
	if e.ScrollDeltaY != nil {
		dy = *e.ScrollDeltaY
	}
	if dx == 0 && dy == 0 {
		return 0, 0, false
	}
	return dx, dy, true
}

func Int64(v int64) *int64 { return &v }
