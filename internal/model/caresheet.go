package model

// CareSheet is the structured post-visit report a worker submits at
// sign-out. A completed care sheet is required to finish a shift
// normally; only an admin override sign-out may skip it.
//
// Fields:
//  MoodOnArrival     – client mood when the worker arrived.
//  MoodOnDeparture   – client mood when the worker left.
//  TasksCompleted    – service tasks performed during the visit.
//  Observations      – free-text notes; screened for contact details.
//  HospitalDischarge – set when the visit ended in a discharge.
//  DischargeDocument – reference to an uploaded discharge document.
type CareSheet struct {
	MoodOnArrival     string
	MoodOnDeparture   string
	TasksCompleted    []string
	Observations      string
	HospitalDischarge bool
	DischargeDocument string
}
