package dto

type ProcessDayInput struct {
	Date   string
	DryRun bool
}

type ProcessRangeInput struct {
	From   string
	To     string
	DryRun bool
}

type DayOutput struct {
	Date             string
	Events           int
	ScrollSessions   int
	AppUsageRows     int
	UnlockSessions   int
	Insights         int
	TotalUsageMillis int64
	TotalUnlocks     int
	TotalAppOpens    int
	Written          bool
}

type DayFailure struct {
	Date  string
	Error string
}

type RangeOutput struct {
	RunID    string
	Days     []DayOutput
	Failures []DayFailure
}
