package consts

// ReportReason is one entry of the report reason picker.
type ReportReason struct {
	Key   string
	Label string
}

// ReportReasons in menu order.
var ReportReasons = []ReportReason{
	{Key: "child_abuse", Label: "Child Abuse"},
	{Key: "copyright", Label: "Copyright"},
	{Key: "fake_account", Label: "Fake Account"},
	{Key: "fraud", Label: "Fraud"},
	{Key: "harassment", Label: "Harassment"},
	{Key: "hate_speech", Label: "Hate Speech"},
	{Key: "illegal_drugs", Label: "Illegal Drugs"},
	{Key: "impersonation", Label: "Impersonation"},
	{Key: "pornography", Label: "Pornography"},
	{Key: "promotes_suicide", Label: "Promotes Suicide"},
	{Key: "scam", Label: "Scam"},
	{Key: "spam", Label: "Spam"},
	{Key: "terrorism", Label: "Terrorism"},
	{Key: "violence", Label: "Violence"},
	{Key: "other", Label: "Other"},
}

// Report target types
const (
	TargetBot     = "bot"
	TargetGroup   = "group"
	TargetChannel = "channel"
	TargetUser    = "user"
	TargetPost    = "post"
)
