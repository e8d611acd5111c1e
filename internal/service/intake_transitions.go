package service

import "github.com/spec-kit/checkin-service/internal/domain"

// intakeAction names a step request made against a workflow.
type intakeAction string

const (
	actionSubmitNewClient  intakeAction = "submit_new_client"
	actionSubmitPhone      intakeAction = "submit_phone"
	actionSelectCandidate  intakeAction = "select_candidate"
	actionConfirm          intakeAction = "confirm"
	actionSubmitIssue      intakeAction = "submit_issue"
	actionFileTicket       intakeAction = "file_ticket"
	actionProceedToPayment intakeAction = "proceed_to_payment"
	actionComplete         intakeAction = "complete"
)

// identificationSteps are the states from which a client may (re)identify.
// Once a ticket exists the identity is frozen for the rest of the workflow.
var identificationSteps = []domain.Step{
	domain.StepStart,
	domain.StepDisambiguating,
	domain.StepIdentified,
	domain.StepConfirmed,
	domain.StepFollowupsReady,
}

var allowedFrom = map[intakeAction][]domain.Step{
	actionSubmitNewClient:  identificationSteps,
	actionSubmitPhone:      identificationSteps,
	actionSelectCandidate:  {domain.StepDisambiguating},
	actionConfirm:          {domain.StepIdentified, domain.StepConfirmed},
	actionSubmitIssue:      {domain.StepConfirmed, domain.StepFollowupsReady},
	actionFileTicket:       {domain.StepFollowupsReady},
	actionProceedToPayment: {domain.StepTicketed, domain.StepPaymentPending},
	actionComplete:         {domain.StepPaymentPending},
}

func isAllowed(action intakeAction, current domain.Step) bool {
	for _, candidate := range allowedFrom[action] {
		if candidate == current {
			return true
		}
	}
	return false
}
