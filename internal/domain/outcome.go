package domain

type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeBadCredentials OutcomeKind = "bad_credentials"
	OutcomeTransient      OutcomeKind = "transient"
	OutcomeTimeout        OutcomeKind = "timeout"
)

// Outcome is the terminal result of one acquisition attempt. Endpoint is set
// only for OutcomeSuccess.
type Outcome struct {
	Kind     OutcomeKind
	Endpoint string
}

func Success(endpoint string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Endpoint: endpoint}
}

func BadCredentials() Outcome {
	return Outcome{Kind: OutcomeBadCredentials}
}

func Transient() Outcome {
	return Outcome{Kind: OutcomeTransient}
}

func Timeout() Outcome {
	return Outcome{Kind: OutcomeTimeout}
}

func (o Outcome) Code() StatusCode {
	switch o.Kind {
	case OutcomeSuccess:
		return StatusSuccess
	case OutcomeBadCredentials:
		return StatusBadCredentials
	default:
		return StatusProblem
	}
}

// StatusCode is the only thing the front end learns about an operation.
type StatusCode int

const (
	StatusSuccess        StatusCode = 1
	StatusBadCredentials StatusCode = 2
	StatusProblem        StatusCode = 3
)

func (c StatusCode) Message() string {
	switch c {
	case StatusSuccess:
		return "Connection success"
	case StatusBadCredentials:
		return "Wrong user name or password"
	default:
		return "Unknown problem, please try again later"
	}
}
