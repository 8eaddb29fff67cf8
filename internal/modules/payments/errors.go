package payments

import "errors"

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMissingSecret    = errors.New("webhook secret not configured")
	ErrMissingEntity    = errors.New("event carries neither payment nor payment_link entity")
	ErrDuplicateRecord  = errors.New("payment already recorded")
)
