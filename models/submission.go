package models

import "time"

type SubmissionKind string

const (
	SubmissionCase           SubmissionKind = "case"
	SubmissionKYC            SubmissionKind = "kyc"
	SubmissionConsultation   SubmissionKind = "consultation"
	SubmissionReferral       SubmissionKind = "referral"
	SubmissionWallet         SubmissionKind = "wallet"
	SubmissionSecurityAlert  SubmissionKind = "security_alert"
	SubmissionPropertyUpdate SubmissionKind = "property_update"
)

// Submission is an inquiry, case or tracked wallet collected by a bot. Never persisted.
type Submission struct {
	Kind      SubmissionKind `json:"kind"`
	Persona   string         `json:"persona"`
	User      string         `json:"user"`
	ChatID    int64          `json:"chat_id"`
	Status    string         `json:"status"`
	Detail    string         `json:"detail,omitempty"`
	Code      string         `json:"code,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
