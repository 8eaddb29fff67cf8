package apperr

type Kind string

type AppError struct {
	Kind      Kind
	PublicMsg string            // safe to return to the caller
	Fields    map[string]string // validation field errors (optional)
	Err       error             // internal error (for logs)
}
