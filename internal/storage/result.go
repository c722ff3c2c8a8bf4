package storage

// Result is the outcome of a boundary operation. Message is human-readable
// and intended to be shown or logged verbatim.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Succeeded returns a successful Result carrying msg.
func Succeeded(msg string) Result {
	return Result{Success: true, Message: msg}
}

// Failed returns a failed Result describing err.
func Failed(err error) Result {
	return Result{Success: false, Message: err.Error()}
}
