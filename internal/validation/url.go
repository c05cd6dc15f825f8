package validation

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// URLValidationError represents a URL or file name validation failure.
type URLValidationError struct {
	Field   string
	Message string
	URL     string
}

func (e URLValidationError) Error() string {
	return fmt.Sprintf("%s: %s (url: %s)", e.Field, e.Message, e.URL)
}

// ValidateURL accepts empty values and absolute http(s) URLs.
func ValidateURL(urlString, fieldName string, requireHTTPS bool) error {
	if urlString == "" {
		return nil
	}
	fail := func(msg string) error {
		return URLValidationError{Field: fieldName, Message: msg, URL: urlString}
	}

	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return fail("invalid URL format")
	}
	if parsedURL.Scheme == "" {
		return fail("URL must include a scheme (http:// or https://)")
	}
	if parsedURL.Host == "" {
		return fail("URL must include a host")
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if requireHTTPS && scheme != "https" {
		return fail("URL must use HTTPS in production")
	}
	if scheme != "http" && scheme != "https" {
		return fail("URL scheme must be http or https")
	}
	return nil
}

// ValidateBaseURL is ValidateURL for service roots such as the API address the
// wizard calls: no path, query or fragment.
func ValidateBaseURL(urlString, fieldName string, requireHTTPS bool) error {
	if err := ValidateURL(urlString, fieldName, requireHTTPS); err != nil || urlString == "" {
		return err
	}
	parsedURL, _ := url.Parse(urlString)

	var msg string
	switch {
	case parsedURL.Path != "" && parsedURL.Path != "/":
		msg = "base URL must not contain a path"
	case parsedURL.RawQuery != "":
		msg = "base URL must not contain query parameters"
	case parsedURL.Fragment != "":
		msg = "base URL must not contain a fragment"
	default:
		return nil
	}
	return URLValidationError{Field: fieldName, Message: msg, URL: urlString}
}

// ValidateFileName accepts a bare file name that can be joined under a
// directory without escaping it.
func ValidateFileName(name, fieldName string) error {
	if name == "" {
		return nil
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || path.Base(name) != name {
		return URLValidationError{Field: fieldName, Message: "must be a file name without directories", URL: name}
	}
	return nil
}
