package model

import "time"

// Booking is the client-submitted request for a care visit as stored
// in the `bookings` table. Posting a booking opens exactly one shift
// in the available pool; the shift carries the matching preferences
// forward and the booking id keys the posting-time log used by the
// language reopen rule.
//
// Fields:
//  ID                 – primary key identifier (UUID).
//  ClientUserID       – account that placed the booking.
//  ClientName         – client full name.
//  ClientPhone        – client contact number.
//  PatientAddress     – visit address.
//  PostalCode         – postal code of the visit address.
//  ScheduledDate      – calendar date (YYYY-MM-DD).
//  ScheduledStart     – scheduled start time.
//  ScheduledEnd       – scheduled end time.
//  Services           – ordered service labels.
//  PreferredLanguages – optional language codes.
//  PreferredGender    – MALE, FEMALE or NO_PREFERENCE.
//  CreatedAt          – when the booking was placed.
type Booking struct {
	ID                 string
	ClientUserID       uint64
	ClientName         string
	ClientPhone        string
	PatientAddress     string
	PostalCode         string
	ScheduledDate      string
	ScheduledStart     time.Time
	ScheduledEnd       time.Time
	Services           []string
	PreferredLanguages []string
	PreferredGender    string
	CreatedAt          time.Time
}
