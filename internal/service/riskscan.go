package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tiffarshi-web/pswdirect/internal/logging"
	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// Thresholds for the fixed rule table. Durations that drift past these
// limits turn into alerts on the next scan.
const (
	excessiveShiftDuration = 12 * time.Hour
	stalePayrollAge        = 14 * 24 * time.Hour
	staleActiveOverrun     = 2 * time.Hour
)

// AlertStore is the persistence surface for risk alerts.
type AlertStore interface {
	Insert(ctx context.Context, a *model.RiskAlert) error
	ListAll(ctx context.Context) ([]*model.RiskAlert, error)
	Resolve(ctx context.Context, id, resolvedBy string, at time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteUnresolved(ctx context.Context) (int64, error)
}

// WorkerLister enumerates worker profiles for the banking rule.
type WorkerLister interface {
	ListAll(ctx context.Context) ([]*model.WorkerProfile, error)
}

// ScanReport summarizes one scan pass. Skipped counts records the
// scanner could not evaluate; a partial pass with a skip count beats
// an aborted one.
type ScanReport struct {
	Alerts  []*model.RiskAlert
	Scanned int
	Skipped int
}

// RiskScanner batch-evaluates the shift and payroll record sets
// against a fixed rule table and emits categorized alerts. Scans are
// read-only over their inputs: an alert is a diagnosis, never a
// mutation of the record it points at.
type RiskScanner struct {
	shifts  ShiftStore
	payroll PayrollStore
	workers WorkerLister
	alerts  AlertStore
	now     func() time.Time
}

func NewRiskScanner(shifts ShiftStore, payroll PayrollStore, workers WorkerLister, alerts AlertStore) *RiskScanner {
	return &RiskScanner{
		shifts:  shifts,
		payroll: payroll,
		workers: workers,
		alerts:  alerts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source. Tests only.
func (r *RiskScanner) SetClock(now func() time.Time) { r.now = now }

// Scan clears prior unresolved alerts and re-evaluates the full record
// set, so rerunning never duplicates an alert for a condition that is
// still present. Resolved alerts are kept as history. Records that
// cannot be evaluated are counted as skipped rather than failing the
// pass.
func (r *RiskScanner) Scan(ctx context.Context, actor Actor) (*ScanReport, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	if _, err := r.alerts.DeleteUnresolved(ctx); err != nil {
		return nil, err
	}

	report := &ScanReport{}
	now := r.now()

	shifts, err := r.shifts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range shifts {
		report.Scanned++
		if a, skip := r.checkShift(s, now); skip {
			report.Skipped++
		} else if a != nil {
			report.Alerts = append(report.Alerts, a...)
		}
	}

	entries, err := r.payroll.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	banking := r.bankingIndex(ctx, entries, report)
	for _, e := range entries {
		report.Scanned++
		report.Alerts = append(report.Alerts, r.checkPending(e, banking, now)...)
	}

	for _, a := range report.Alerts {
		a.ID = uuid.NewString()
		a.CreatedAt = now
		if err := r.alerts.Insert(ctx, a); err != nil {
			return nil, err
		}
	}
	logging.Log.WithFields(logrus.Fields{
		"scanned": report.Scanned,
		"skipped": report.Skipped,
		"alerts":  len(report.Alerts),
	}).Info("risk scan completed")
	return report, nil
}

// checkShift applies the shift-side rules. A completed shift with no
// usable timestamps cannot be judged and is skipped.
func (r *RiskScanner) checkShift(s *model.Shift, now time.Time) ([]*model.RiskAlert, bool) {
	var out []*model.RiskAlert
	switch s.Status {
	case model.ShiftCompleted:
		if s.CheckedInAt == nil || s.SignedOutAt == nil {
			return nil, true
		}
		// A logged check-in override already explains the missing fix.
		if (s.CheckInLat == nil || s.CheckInLng == nil) && !hasOverride(s, "checkin_override") {
			out = append(out, &model.RiskAlert{
				Category:          model.AlertShift,
				Severity:          model.SeverityHigh,
				Title:             "Completed shift without GPS verification",
				DetectedIssue:     fmt.Sprintf("Shift %s reached completion with no verified check-in location and no logged override.", s.ID),
				WhyItMatters:      "Unverified attendance weakens billing evidence and invites time-theft disputes.",
				LikelyRootCause:   "The worker's device failed to transmit coordinates, or the check-in was faked.",
				RecommendedAction: "Confirm attendance with the client; record an override if the visit happened.",
				SourceRef:         s.ID,
			})
		}
		out = append(out, r.checkDuration(s, s.SignedOutAt.Sub(*s.CheckedInAt))...)
	case model.ShiftActive:
		if s.CheckedInAt != nil {
			out = append(out, r.checkDuration(s, now.Sub(*s.CheckedInAt))...)
		}
		if now.Sub(s.ScheduledEnd) > staleActiveOverrun {
			out = append(out, &model.RiskAlert{
				Category:          model.AlertOperational,
				Severity:          model.SeverityMedium,
				Title:             "Shift still active long past scheduled end",
				DetectedIssue:     fmt.Sprintf("Shift %s was scheduled to end at %s and is still active.", s.ID, s.ScheduledEnd.Format(time.RFC3339)),
				WhyItMatters:      "The worker may have forgotten to sign out, silently accruing overtime.",
				LikelyRootCause:   "Missed sign-out, or a genuinely extended visit nobody reported.",
				RecommendedAction: "Contact the worker; sign out or stop the shift as appropriate.",
				SourceRef:         s.ID,
			})
		}
	case model.ShiftClaimed:
		if now.After(s.ScheduledEnd) {
			out = append(out, &model.RiskAlert{
				Category:          model.AlertOperational,
				Severity:          model.SeverityMedium,
				Title:             "Claimed shift never checked in",
				DetectedIssue:     fmt.Sprintf("Shift %s passed its scheduled end at %s without a check-in.", s.ID, s.ScheduledEnd.Format(time.RFC3339)),
				WhyItMatters:      "The client may have been left without care and nobody was told.",
				LikelyRootCause:   "No-show, or the worker attended but never opened the app.",
				RecommendedAction: "Contact the worker and the client; stop the shift or record an override.",
				SourceRef:         s.ID,
			})
		}
	}
	return out, false
}

// checkDuration flags active or completed shifts that ran past the
// duration limit without picking up the overtime flag.
func (r *RiskScanner) checkDuration(s *model.Shift, worked time.Duration) []*model.RiskAlert {
	if worked <= excessiveShiftDuration || s.FlaggedForOvertime {
		return nil
	}
	return []*model.RiskAlert{{
		Category:          model.AlertShift,
		Severity:          model.SeverityMedium,
		Title:             "Excessive shift duration without overtime flag",
		DetectedIssue:     fmt.Sprintf("Shift %s ran %.1f hours but was never flagged for overtime.", s.ID, worked.Hours()),
		WhyItMatters:      "Long unflagged shifts bypass overtime pay and labour-compliance review.",
		LikelyRootCause:   "Forgotten sign-out corrected much later, or a clock fault on the device.",
		RecommendedAction: "Verify the actual hours with the worker and regenerate payroll for this shift.",
		SourceRef:         s.ID,
	}}
}

func hasOverride(s *model.Shift, action string) bool {
	for _, e := range s.OverrideLog {
		if e.Action == action {
			return true
		}
	}
	return false
}

// checkPending applies the payroll-side rules to one pending entry.
func (r *RiskScanner) checkPending(e *model.PayrollEntry, banking map[uint64]bool, now time.Time) []*model.RiskAlert {
	var out []*model.RiskAlert
	if now.Sub(e.CreatedAt) > stalePayrollAge {
		out = append(out, &model.RiskAlert{
			Category:          model.AlertPayroll,
			Severity:          model.SeverityHigh,
			Title:             "Payroll pending beyond clearing window",
			DetectedIssue:     fmt.Sprintf("Entry for shift %s has been pending since %s.", e.ShiftID, e.CreatedAt.Format("2006-01-02")),
			WhyItMatters:      "Late payouts erode worker trust and can breach employment-standards timelines.",
			LikelyRootCause:   "The entry was generated but never reviewed and cleared.",
			RecommendedAction: "Review and clear the entry, or document why it is held.",
			SourceRef:         e.ShiftID,
		})
	}
	if onFile, known := banking[e.PSWID]; known && !onFile {
		out = append(out, &model.RiskAlert{
			Category:          model.AlertFinancial,
			Severity:          model.SeverityCritical,
			Title:             "Pending payout with no banking details",
			DetectedIssue:     fmt.Sprintf("%s is owed a pending payout but has no banking information on file.", e.PSWName),
			WhyItMatters:      "The payout cannot be executed; clearing the entry would record a payment that never happened.",
			LikelyRootCause:   "Worker onboarding finished without the banking step.",
			RecommendedAction: "Ask the worker to submit banking details before clearing this entry.",
			SourceRef:         e.ShiftID,
		})
	}
	return out
}

// bankingIndex maps worker id to banking-on-file for the workers that
// appear in the pending entries. A directory failure degrades to an
// empty index with the affected entries counted as skipped for the
// banking rule, rather than aborting the scan.
func (r *RiskScanner) bankingIndex(ctx context.Context, entries []*model.PayrollEntry, report *ScanReport) map[uint64]bool {
	idx := make(map[uint64]bool)
	profiles, err := r.workers.ListAll(ctx)
	if err != nil {
		logging.Log.WithError(err).Warn("risk scan: worker directory unavailable, skipping banking rule")
		report.Skipped += len(entries)
		return idx
	}
	for _, p := range profiles {
		idx[p.UserID] = p.BankingOnFile
	}
	return idx
}

// ResolveAlert marks an alert as handled, recording who resolved it.
func (r *RiskScanner) ResolveAlert(ctx context.Context, id string, actor Actor) error {
	if !actor.IsAdmin() {
		return ErrNotAuthorized
	}
	if err := r.alerts.Resolve(ctx, id, actor.Name, r.now()); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// DeleteAlert removes an alert entirely.
func (r *RiskScanner) DeleteAlert(ctx context.Context, id string, actor Actor) error {
	if !actor.IsAdmin() {
		return ErrNotAuthorized
	}
	if err := r.alerts.Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// ListAlerts returns the current alert set, unresolved first.
func (r *RiskScanner) ListAlerts(ctx context.Context, actor Actor) ([]*model.RiskAlert, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return r.alerts.ListAll(ctx)
}
