package model

import "fmt"

// Severity is the display tone of a status.
type Severity string

const (
	SeverityNeutral Severity = "neutral"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// StatusView is the display projection of a JobStatus.
type StatusView struct {
	Label    string   `json:"label"    yaml:"label"`
	Severity Severity `json:"severity" yaml:"severity"`
	// Recognized is false when the input was not a known status; the view then renders as pending.
	Recognized bool `json:"recognized" yaml:"recognized"`
}

// ProjectStatus maps a status to its label and severity.
func ProjectStatus(status JobStatus) StatusView {
	switch status {
	case JobStatusPending:
		return StatusView{Label: "Pending", Severity: SeverityNeutral, Recognized: true}
	case JobStatusCompleted:
		return StatusView{Label: "Completed", Severity: SeveritySuccess, Recognized: true}
	case JobStatusFailed:
		return StatusView{Label: "Failed", Severity: SeverityError, Recognized: true}
	default:
		return StatusView{Label: "Pending", Severity: SeverityNeutral, Recognized: false}
	}
}

// ConsistencyWarning flags a job whose status the projection did not recognize.
type ConsistencyWarning struct {
	JobID  string    `json:"job_id" yaml:"job_id"`
	Status JobStatus `json:"status" yaml:"status"`
}

func (w ConsistencyWarning) String() string {
	return fmt.Sprintf("job %s has unrecognized status %q; shown as pending", w.JobID, w.Status)
}

// CheckStatuses returns a warning for every job with an unrecognized status.
func CheckStatuses(jobs []Job) []ConsistencyWarning {
	var out []ConsistencyWarning
	for i := range jobs {
		if !ProjectStatus(jobs[i].Status).Recognized {
			out = append(out, ConsistencyWarning{JobID: jobs[i].ID, Status: jobs[i].Status})
		}
	}
	return out
}
