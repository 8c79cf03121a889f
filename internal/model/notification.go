package model

import "time"

// Category classifies a notification by the business rule that produced it.
// (member, category) is the deduplication key.
type Category string

const (
	CategoryBenefitReminder   Category = "benefit_reminder"
	CategoryPaymentStatus     Category = "payment_status"
	CategorySection40Outreach Category = "section40_outreach"
	CategorySystem            Category = "system"
)

// Channel is one delivery mechanism.
type Channel string

const (
	// ChannelInApp persists a notification row. The dedup guard reads the
	// same table back, so dedup-sensitive categories must always request it.
	ChannelInApp Channel = "push"
	ChannelLine  Channel = "line"
	ChannelSMS   Channel = "sms"
)

// Candidate is an in-memory intent to notify one member. Prediction tasks
// build candidates fresh on every run; only the in-app channel's insert
// survives as state afterwards.
type Candidate struct {
	MemberID   string
	Category   Category
	Title      string
	Body       string
	Channels   []Channel
	LineUserID string // resolved LINE handle, empty when the member has none
	Phone      string // E.164 phone number, empty when unknown
}

// HasChannel reports whether ch was requested.
func (c Candidate) HasChannel(ch Channel) bool {
	for _, have := range c.Channels {
		if have == ch {
			return true
		}
	}
	return false
}

// SkipReasonDuplicate marks an outcome suppressed by the dedup guard.
const SkipReasonDuplicate = "duplicate_skipped"

// Outcome is the result of dispatching one Candidate.
type Outcome struct {
	MemberID string    `json:"member_id"`
	Success  bool      `json:"success"`
	Channels []Channel `json:"channels"`
	Error    string    `json:"error,omitempty"`
}

// Skipped reports whether the outcome was a dedup suppression, which
// counts as success but not as a send.
func (o Outcome) Skipped() bool {
	return o.Error == SkipReasonDuplicate && len(o.Channels) == 0
}

// Notification is a persisted in-app notification row.
type Notification struct {
	ID       int
	MemberID string
	Category Category
	Title    string
	Body     string
	Channel  Channel
	IsRead   bool
	SentAt   time.Time
}

// Summary aggregates one prediction run.
type Summary struct {
	Total      int            `json:"total"`
	Sent       int            `json:"sent"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failed"`
	Breakdown  map[string]int `json:"breakdown"`
	DurationMS int64          `json:"duration_ms"`
}
