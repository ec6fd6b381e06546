package email

const (
	subjectSanctionLetterFmt = "Your loan is approved - sanction letter %s"
	subjectManualReviewFmt   = "Manual review required for application %s"
)
