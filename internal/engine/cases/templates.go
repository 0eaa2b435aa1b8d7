package cases

import "complyhr/internal/platform/models"

type StepTemplate struct {
	Title       string
	Description string
}

var disciplinarySteps = []StepTemplate{
	{"Investigation", "Gather facts and evidence. Interview witnesses if needed."},
	{"Notification Letter", "Write to employee outlining allegations and invite to hearing."},
	{"Disciplinary Hearing", "Hold formal hearing. Employee may bring companion."},
	{"Decision & Outcome", "Decide on outcome: no action, warning, or dismissal."},
	{"Outcome Letter", "Confirm decision in writing with right of appeal."},
	{"Appeal (if requested)", "Hear appeal with different manager if possible."},
}

var grievanceSteps = []StepTemplate{
	{"Written Grievance Received", "Employee submits formal grievance in writing."},
	{"Acknowledge Receipt", "Acknowledge grievance within 5 working days."},
	{"Investigation", "Investigate the grievance. Gather evidence."},
	{"Grievance Meeting", "Hold formal meeting. Employee may bring companion."},
	{"Decision & Response", "Communicate outcome in writing with right of appeal."},
	{"Appeal (if requested)", "Hear appeal with different manager if possible."},
}

var outcomes = map[string][]string{
	models.CaseDisciplinary: {"no_action", "verbal_warning", "first_written_warning", "final_written_warning", "dismissal"},
	models.CaseGrievance:    {"upheld", "partially_upheld", "not_upheld"},
}

var referencePrefix = map[string]string{
	models.CaseDisciplinary: "DIS-",
	models.CaseGrievance:    "GRV-",
}

// Steps returns the ordered workflow for a case type, or nil for an unknown type.
func Steps(caseType string) []StepTemplate {
	switch caseType {
	case models.CaseDisciplinary:
		return disciplinarySteps
	case models.CaseGrievance:
		return grievanceSteps
	default:
		return nil
	}
}

func Outcomes(caseType string) []string {
	return outcomes[caseType]
}
