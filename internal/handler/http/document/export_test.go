package document

var (
	StatusFor       = statusFor
	SummaryFileName = summaryFileName
)
