// Package timeline projects an article status onto progress steps.
package timeline

import "github.com/noah-isme/journal-desk-api/internal/models"

// StepState is the render state of a single progress step.
type StepState string

const (
	StateDone    StepState = "done"
	StateCurrent StepState = "current"
	StatePending StepState = "pending"
)

// Step is one entry of a rendered timeline.
type Step struct {
	Label    models.ArticleStatus `json:"label"`
	State    StepState            `json:"state"`
	Terminal bool                 `json:"terminal,omitempty"`
}

// Timeline is the projection of one status.
type Timeline struct {
	Status models.ArticleStatus `json:"status"`
	Raw    string               `json:"raw_status"`
	Steps  []Step               `json:"steps"`
}

// Project maps a raw backend status onto the lifecycle steps.
//
// Rejected marks Submitted and Under Review done and appends a terminal
// Rejected step; the later lifecycle steps are omitted. An unrecognised status
// reports Unknown with every step pending.
func Project(raw string) Timeline {
	status, _ := models.ParseArticleStatus(raw)
	out := Timeline{Status: status, Raw: raw}

	if status == models.StatusRejected {
		reviewed := models.StatusUnderReview.Index()
		out.Steps = make([]Step, 0, reviewed+2)
		for _, label := range models.ArticleLifecycle[:reviewed+1] {
			out.Steps = append(out.Steps, Step{Label: label, State: StateDone})
		}
		out.Steps = append(out.Steps, Step{Label: models.StatusRejected, State: StateCurrent, Terminal: true})
		return out
	}

	current := status.Index()
	out.Steps = make([]Step, len(models.ArticleLifecycle))
	for i, label := range models.ArticleLifecycle {
		state := StatePending
		switch {
		case current < 0:
		case i < current:
			state = StateDone
		case i == current:
			state = StateCurrent
		}
		out.Steps[i] = Step{Label: label, State: state}
	}
	return out
}

// Done counts the steps rendered as done.
func (t Timeline) Done() int {
	n := 0
	for _, step := range t.Steps {
		if step.State == StateDone {
			n++
		}
	}
	return n
}
