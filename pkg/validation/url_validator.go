package validation

import (
	"net/url"
	"slices"
	"strings"

	apperrors "go-property-enhancer/internal/errors"
)

// URLValidator checks the collaborator endpoints the service is configured with.
type URLValidator struct {
	allowedSchemes []string
}

// NewURLValidator accepts http and https endpoints.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
	}
}

// NewURLValidatorWithSchemes creates a validator restricted to schemes.
func NewURLValidatorWithSchemes(schemes []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
	}
}

// ValidateEndpointURL returns a validation error unless endpoint is an
// absolute URL with an allowed scheme, a host, and no query or fragment.
// Generated image URLs are built by appending to the endpoint, so a query
// string there would corrupt them.
func (v *URLValidator) ValidateEndpointURL(endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !slices.Contains(v.allowedSchemes, parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return apperrors.NewValidationError("URL must not carry a query or fragment", nil)
	}

	return nil
}
