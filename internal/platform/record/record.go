// Package record holds the derived behavioural records persisted per local
// date.
package record

type DataType string

const (
	DataMeasured DataType = "MEASURED"
	DataInferred DataType = "INFERRED"
)

// Merge returns Measured when either side was measured.
func (d DataType) Merge(other DataType) DataType {
	if d == DataMeasured || other == DataMeasured {
		return DataMeasured
	}
	return DataInferred
}

type EndReason string

const (
	EndAppSwitch      EndReason = "APP_SWITCH"
	EndScreenOff      EndReason = "SCREEN_OFF"
	EndServiceStopped EndReason = "SERVICE_STOPPED"
	EndRecoveredDraft EndReason = "RECOVERED_DRAFT"
	EndManual         EndReason = "MANUAL"
	EndGap            EndReason = "GAP"
	EndPackageChange  EndReason = "PACKAGE_CHANGE"
	EndTypeChange     EndReason = "TYPE_CHANGE"
	EndOfData         EndReason = "END_OF_DATA"
	EndLock           EndReason = "LOCK"
	EndGhost          EndReason = "GHOST"
)

type ScrollSession struct {
	PackageName   string
	ScrollAmountX int64
	ScrollAmountY int64
	ScrollAmount  int64
	SessionStart  int64
	SessionEnd    int64
	DateString    string
	DataType      DataType
	EndReason     EndReason
}

type AppUsage struct {
	PackageName       string
	DateString        string
	UsageTimeMillis   int64
	ActiveTimeMillis  int64
	AppOpenCount      int
	NotificationCount int
}

type DeviceSummary struct {
	DateString             string
	TotalUsageTimeMillis   int64
	TotalUnlockCount       int
	TotalNotificationCount int
	TotalAppOpens          int
	FirstUnlockTimestamp   *int64
	LastUnlockTimestamp    *int64
}

type SessionType string

const (
	SessionGlance      SessionType = "GLANCE"
	SessionIntentional SessionType = "INTENTIONAL"
)

// UnlockSession is open while LockTimestamp is nil.
type UnlockSession struct {
	UnlockTimestamp                   int64
	LockTimestamp                     *int64
	DurationMillis                    *int64
	DateString                        string
	FirstAppPackageName               string
	TriggeringNotificationPackageName string
	SessionType                       SessionType
	EndReason                         EndReason
	IsCompulsive                      bool
}

func (u UnlockSession) Open() bool {
	return u.LockTimestamp == nil
}

type InsightKey string

const (
	InsightFirstUnlockTime          InsightKey = "first_unlock_time"
	InsightLastUnlockTime           InsightKey = "last_unlock_time"
	InsightFirstAppUsed             InsightKey = "first_app_used"
	InsightLastAppUsed              InsightKey = "last_app_used"
	InsightNightOwlLastApp          InsightKey = "night_owl_last_app"
	InsightBusiestUnlockHour        InsightKey = "busiest_unlock_hour"
	InsightTopCompulsiveApp         InsightKey = "top_compulsive_app"
	InsightTopNotificationUnlockApp InsightKey = "top_notification_unlock_app"
)

type Insight struct {
	DateString  string
	Key         InsightKey
	StringValue *string
	LongValue   *int64
	DoubleValue *float64
}

// DayResult is everything derived for one local date. It replaces any
// previously stored result for that date as a whole.
type DayResult struct {
	Date           string
	ScrollSessions []ScrollSession
	AppUsage       []AppUsage
	Summary        DeviceSummary
	UnlockSessions []UnlockSession
	Insights       []Insight
}

func String(v string) *string    { return &v }
func Int64(v int64) *int64       { return &v }
func Float64(v float64) *float64 { return &v }
