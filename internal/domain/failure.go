package domain

// Failure kinds as reported by the runner
const (
	KindFailure = "Failure"
	KindError   = "Error"
)

// Failure represents a failed or errored test case parsed from a run report
type Failure struct {
	Index   int    `json:"index"`
	Kind    string `json:"kind"`
	Suite   string `json:"suite"`
	Test    string `json:"test"`
	Message string `json:"message"`
}

// AssertionError is returned by a test case whose assertion did not hold
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return e.Message
}
