package nettools

type shutdownError struct {
	error
}

func (e *shutdownError) Error() string {
	return "shutdown: " + e.error.Error()
}

func (e *shutdownError) Unwrap() error {
	return e.error
}
