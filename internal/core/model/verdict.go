package model

// Verdict is the outcome of one equivalence question.
// Err is set when the oracle could not answer; Match is always false in that case.
type Verdict struct {
	Match bool
	Err   error
}

// OK reports whether the oracle produced an answer.
func (v Verdict) OK() bool {
	return v.Err == nil
}
