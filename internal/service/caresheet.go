package service

import (
	"regexp"
	"strings"

	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// Contact-information patterns screened out of care-sheet free text.
// Workers and clients must exchange contact details through the
// office, never through visit notes.
var (
	// Ten or more digits in a row, allowing common phone separators.
	phonePattern = regexp.MustCompile(`(?:\d[\s().-]*){10,}`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// ValidateCareSheet checks a submitted care sheet for completeness and
// for contact-information leakage in its free-text fields. It returns
// a *ValidationError describing the first problem found, or nil.
func ValidateCareSheet(cs *model.CareSheet) error {
	if cs == nil {
		return validationf("a completed care sheet is required to sign out")
	}
	if strings.TrimSpace(cs.MoodOnArrival) == "" {
		return validationf("mood on arrival is required")
	}
	if strings.TrimSpace(cs.MoodOnDeparture) == "" {
		return validationf("mood on departure is required")
	}
	if len(cs.TasksCompleted) == 0 {
		return validationf("at least one completed task must be recorded")
	}
	if strings.TrimSpace(cs.Observations) == "" {
		return validationf("visit observations are required")
	}
	if err := screenContactInfo(cs.Observations); err != nil {
		return err
	}
	for _, task := range cs.TasksCompleted {
		if err := screenContactInfo(task); err != nil {
			return err
		}
	}
	return nil
}

// screenContactInfo rejects text containing phone numbers or email
// addresses.
func screenContactInfo(text string) error {
	if phonePattern.MatchString(text) {
		return validationf("notes must not contain phone numbers; please remove contact details")
	}
	if emailPattern.MatchString(text) {
		return validationf("notes must not contain email addresses; please remove contact details")
	}
	return nil
}
