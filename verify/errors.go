package verify

// MismatchError reports that a device-produced result fell outside the
// tolerance of its expectation. It is distinct from a backend failure
// (compute.RuntimeError) so callers can branch on the kind without
// parsing messages.
type MismatchError struct {
	Outcome Outcome
}

func (e *MismatchError) Error() string {
	return "verification failed: " + e.Outcome.Message
}
