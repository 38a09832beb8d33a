// Package queue defines the shift lifecycle events exchanged over the
// message broker and the background consumer that turns them into
// notification records.
package queue

// Event types published on the shift.events queue.
const (
	EventShiftPosted    = "shift.posted"
	EventShiftClaimed   = "shift.claimed"
	EventShiftCompleted = "shift.completed"
	EventShiftStopped   = "shift.stopped"
)

// ShiftEvent is published whenever a shift changes state. It carries
// everything the downstream notifier needs (who, when, where) so
// consumers never have to query the primary database. Client contact
// details are limited to the privacy-preserving first-name projection
// except on claim, where the assigned worker needs the full address.
type ShiftEvent struct {
	Type            string `json:"type"`
	ShiftID         string `json:"shift_id"`
	BookingID       string `json:"booking_id"`
	ClientFirstName string `json:"client_first_name"`
	PatientAddress  string `json:"patient_address,omitempty"`
	PostalCode      string `json:"postal_code"`
	ScheduledDate   string `json:"scheduled_date"`
	ScheduledStart  string `json:"scheduled_start"`
	ScheduledEnd    string `json:"scheduled_end"`
	PSWID           uint64 `json:"psw_id,omitempty"`
	PSWName         string `json:"psw_name,omitempty"`
	Status          string `json:"status"`
	Reason          string `json:"reason,omitempty"`
	OccurredAt      string `json:"occurred_at"`
}
