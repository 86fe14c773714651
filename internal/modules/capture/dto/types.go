package dto

type StateOutput struct {
	Tracking     bool
	PackageName  string
	ActivityName string
	ScrollAmount int64
	StartTime    int64
	LastUpdate   int64
	Measured     bool
}

type DraftOutput struct {
	PackageName    string
	ActivityName   string
	ScrollAmount   int64
	StartTime      int64
	LastUpdateTime int64
	Measured       bool
}

type RecoverOutput struct {
	Recovered    bool
	PackageName  string
	ScrollAmount int64
	StartTime    int64
	EndTime      int64
}

type RunOutput struct {
	Handled int
	Skipped int
}
