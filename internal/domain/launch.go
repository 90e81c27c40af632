package domain

import (
	"errors"
	"fmt"
)

type LaunchStep string

const (
	StepMapShare             LaunchStep = "map_share"
	StepRegisterCredential   LaunchStep = "register_credential"
	StepRunClient            LaunchStep = "run_client"
	StepUnregisterCredential LaunchStep = "unregister_credential"
	StepUnmapShare           LaunchStep = "unmap_share"
)

// LaunchSteps lists the launch sequence in execution order.
var LaunchSteps = []LaunchStep{
	StepMapShare,
	StepRegisterCredential,
	StepRunClient,
	StepUnregisterCredential,
	StepUnmapShare,
}

// LaunchResult collects the failures of a launch. A step absent from
// StepErrors completed without error.
type LaunchResult struct {
	StepErrors map[LaunchStep]error
}

func NewLaunchResult() LaunchResult {
	return LaunchResult{StepErrors: map[LaunchStep]error{}}
}

func (r LaunchResult) Failed(step LaunchStep) bool {
	return r.StepErrors[step] != nil
}

func (r LaunchResult) Err() error {
	errs := make([]error, 0, len(r.StepErrors))
	for _, step := range LaunchSteps {
		if err := r.StepErrors[step]; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step, err))
		}
	}

	return errors.Join(errs...)
}
