package model

import (
	"strings"
	"time"
)

// WorkerProfile holds the matching- and payroll-relevant attributes of
// a PSW as stored in the `worker_profiles` table. The eligibility
// filter reads Gender, Languages and HomePostalCode; the risk scanner
// reads BankingOnFile.
//
// Fields:
//  UserID         – owning user account.
//  DisplayName    – name shown to clients and admins.
//  Phone          – contact number.
//  PhotoURL       – profile photo shown on claimed shifts.
//  Gender         – declared gender; empty when undeclared. Values
//                   other than MALE/FEMALE (e.g. OTHER) never match a
//                   shift's stated gender preference.
//  Languages      – spoken language codes (e.g. "en", "fr").
//  HomePostalCode – used for the distance filter; empty disables it.
//  BankingOnFile  – whether payout banking details were provided.
type WorkerProfile struct {
	UserID         uint64
	DisplayName    string
	Phone          string
	PhotoURL       string
	Gender         string
	Languages      []string
	HomePostalCode string
	BankingOnFile  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SpeaksAny reports whether the worker speaks at least one of the
// given language codes. Comparison is case-insensitive.
func (w *WorkerProfile) SpeaksAny(codes []string) bool {
	for _, want := range codes {
		for _, have := range w.Languages {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}
