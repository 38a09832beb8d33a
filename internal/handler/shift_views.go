package handler

import (
	"time"

	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// poolShiftView is the projection workers browsing the available pool
// receive. Client identity is reduced to first name plus last initial
// and the address is withheld until the shift is claimed.
type poolShiftView struct {
	ID              string    `json:"id"`
	ClientFirstName string    `json:"client_first_name"`
	PostalCode      string    `json:"postal_code"`
	ScheduledDate   string    `json:"scheduled_date"`
	ScheduledStart  time.Time `json:"scheduled_start"`
	ScheduledEnd    time.Time `json:"scheduled_end"`
	Services        []string  `json:"services"`
	ServiceKind     string    `json:"service_kind"`
	PostedAt        time.Time `json:"posted_at"`
}

func toPoolView(s *model.Shift) poolShiftView {
	return poolShiftView{
		ID:              s.ID,
		ClientFirstName: s.ClientFirstName(),
		PostalCode:      s.PostalCode,
		ScheduledDate:   s.ScheduledDate,
		ScheduledStart:  s.ScheduledStart,
		ScheduledEnd:    s.ScheduledEnd,
		Services:        s.Services,
		ServiceKind:     s.ServiceKind,
		PostedAt:        s.PostedAt,
	}
}

func toPoolViews(shifts []*model.Shift) []poolShiftView {
	out := make([]poolShiftView, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, toPoolView(s))
	}
	return out
}

// shiftView is the full record returned to the assigned worker and to
// admins: client contact details, lifecycle timestamps, the care sheet
// and the override audit trail.
type shiftView struct {
	ID                 string                `json:"id"`
	BookingID          string                `json:"booking_id"`
	ClientName         string                `json:"client_name"`
	ClientPhone        string                `json:"client_phone"`
	PatientAddress     string                `json:"patient_address"`
	PostalCode         string                `json:"postal_code"`
	ScheduledDate      string                `json:"scheduled_date"`
	ScheduledStart     time.Time             `json:"scheduled_start"`
	ScheduledEnd       time.Time             `json:"scheduled_end"`
	Services           []string              `json:"services"`
	ServiceKind        string                `json:"service_kind"`
	PreferredLanguages []string              `json:"preferred_languages,omitempty"`
	PreferredGender    string                `json:"preferred_gender,omitempty"`
	PSWID              uint64                `json:"psw_id,omitempty"`
	PSWName            string                `json:"psw_name,omitempty"`
	PSWPhotoURL        string                `json:"psw_photo_url,omitempty"`
	Status             string                `json:"status"`
	PostedAt           time.Time             `json:"posted_at"`
	AgreementAccepted  bool                  `json:"agreement_accepted"`
	CheckedInAt        *time.Time            `json:"checked_in_at,omitempty"`
	CheckInLat         *float64              `json:"check_in_lat,omitempty"`
	CheckInLng         *float64              `json:"check_in_lng,omitempty"`
	SignedOutAt        *time.Time            `json:"signed_out_at,omitempty"`
	OvertimeMinutes    int                   `json:"overtime_minutes"`
	FlaggedForOvertime bool                  `json:"flagged_for_overtime"`
	CareSheet          *model.CareSheet      `json:"care_sheet,omitempty"`
	OverrideLog        []model.OverrideEntry `json:"override_log,omitempty"`
}

func toShiftView(s *model.Shift) shiftView {
	return shiftView{
		ID:                 s.ID,
		BookingID:          s.BookingID,
		ClientName:         s.ClientName,
		ClientPhone:        s.ClientPhone,
		PatientAddress:     s.PatientAddress,
		PostalCode:         s.PostalCode,
		ScheduledDate:      s.ScheduledDate,
		ScheduledStart:     s.ScheduledStart,
		ScheduledEnd:       s.ScheduledEnd,
		Services:           s.Services,
		ServiceKind:        s.ServiceKind,
		PreferredLanguages: s.PreferredLanguages,
		PreferredGender:    s.PreferredGender,
		PSWID:              s.PSWID,
		PSWName:            s.PSWName,
		PSWPhotoURL:        s.PSWPhotoURL,
		Status:             s.Status,
		PostedAt:           s.PostedAt,
		AgreementAccepted:  s.AgreementAccepted,
		CheckedInAt:        s.CheckedInAt,
		CheckInLat:         s.CheckInLat,
		CheckInLng:         s.CheckInLng,
		SignedOutAt:        s.SignedOutAt,
		OvertimeMinutes:    s.OvertimeMinutes,
		FlaggedForOvertime: s.FlaggedForOvertime,
		CareSheet:          s.CareSheet,
		OverrideLog:        s.OverrideLog,
	}
}

func toShiftViews(shifts []*model.Shift) []shiftView {
	out := make([]shiftView, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, toShiftView(s))
	}
	return out
}
