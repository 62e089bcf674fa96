package models

import "time"

type GrievanceStatus string

const (
	// GrievanceStatusAnalyzing is the initial state: the text has been
	// queued for classification and spam detection.
	GrievanceStatusAnalyzing  GrievanceStatus = "analyzing"
	GrievanceStatusSubmitted  GrievanceStatus = "submitted"
	GrievanceStatusInProgress GrievanceStatus = "in_progress"
	GrievanceStatusResolved   GrievanceStatus = "resolved"
	GrievanceStatusRejected   GrievanceStatus = "rejected"
)

type Grievance struct {
	ID                 string
	UserID             string
	Title              string
	Description        string
	Category           string
	Status             GrievanceStatus
	SpamFlag           bool
	SpamConfidence     *float64
	CategoryConfidence *float64
	AttachmentBucket   string
	AttachmentKey      string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
