package aeat

import (
	"fmt"

	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/soap"
)

// ConfigError reports a dispatch that never left the idle state: the
// system/environment pair did not resolve, or the request itself could not
// be turned into an envelope. Nothing was acquired and nothing was sent.
type ConfigError struct {
	cause error
}

func (e *ConfigError) Error() string {
	return "aeat: configuration: " + e.cause.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.cause
}

// CertificateError reports that the PKCS#12 bundle could not be turned into
// usable TLS credentials. It is always raised before any network activity.
type CertificateError struct {
	cause error
}

func (e *CertificateError) Error() string {
	return "aeat: certificate: " + e.cause.Error()
}

func (e *CertificateError) Unwrap() error {
	return e.cause
}

// CommunicationError reports a dispatch that reached the wire but produced
// no interpretable reply: transport failure, unreadable response document,
// or a non-2xx status whose body carries no SOAP Fault.
type CommunicationError struct {
	// StatusCode is the HTTP status received, or zero when the failure
	// happened before any status arrived.
	StatusCode int

	cause error
}

func (e *CommunicationError) Error() string {
	switch {
	case e.StatusCode != 0 && e.cause != nil:
		return fmt.Sprintf("aeat: communication (HTTP %d): %v", e.StatusCode, e.cause)
	case e.StatusCode != 0:
		return fmt.Sprintf("aeat: communication: HTTP %d", e.StatusCode)
	default:
		return "aeat: communication: " + e.cause.Error()
	}
}

func (e *CommunicationError) Unwrap() error {
	return e.cause
}

// FunctionalError reports that AEAT processed the submission and rejected
// it with a SOAP Fault. The wire worked; the business content did not.
type FunctionalError struct {
	Fault *soap.Fault
}

func (e *FunctionalError) Error() string {
	return "aeat: " + e.Fault.Error()
}

func (e *FunctionalError) Unwrap() error {
	return e.Fault
}
