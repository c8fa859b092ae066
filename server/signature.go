package server

import (
	"errors"
	"net/url"

	"github.com/twilio/twilio-go/client"
)

var (
	ErrMissingSignature = errors.New("missing twilio signature")
	ErrInvalidSignature = errors.New("invalid twilio signature")
)

// SignatureValidator checks X-Twilio-Signature headers for one account
type SignatureValidator struct {
	validator client.RequestValidator
}

func NewSignatureValidator(authToken string) *SignatureValidator {
	return &SignatureValidator{validator: client.NewRequestValidator(authToken)}
}

// Verify validates a webhook signature against the public URL Twilio called.
// The URL is tried with and without an explicit port.
func (v *SignatureValidator) Verify(signature, fullURL string, params url.Values) error {
	if signature == "" {
		return ErrMissingSignature
	}

	// Twilio signs the first value of each form parameter
	flat := make(map[string]string, len(params))
	for k := range params {
		flat[k] = params.Get(k)
	}
	if !v.validator.Validate(fullURL, flat, signature) {
		return ErrInvalidSignature
	}
	return nil
}
