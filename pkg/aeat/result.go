package aeat

import (
	"time"

	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/soap"
)

// Outcome tags how a dispatch that reached the wire ended. Failures that
// occur before the wire (configuration, certificate) have no Outcome; those
// dispatches return an error and no Result.
type Outcome string

const (
	// OutcomeSuccess means AEAT accepted the envelope and answered with a
	// business payload.
	OutcomeSuccess Outcome = "success"

	// OutcomeFunctionalFailure means AEAT answered with a SOAP Fault: the
	// transport worked, the submission was rejected.
	OutcomeFunctionalFailure Outcome = "functional_failure"

	// OutcomeCommunicationFailure means no interpretable reply was obtained.
	OutcomeCommunicationFailure Outcome = "communication_failure"
)

// Result is the outcome of one dispatch. Exactly one of the three variants
// holds, discriminated by Outcome:
//
//   - OutcomeSuccess: Response carries the extracted body payload.
//   - OutcomeFunctionalFailure: Fault carries the parsed SOAP Fault.
//   - OutcomeCommunicationFailure: Cause carries the transport or
//     parse failure.
type Result struct {
	Outcome Outcome

	// Response is the business payload extracted from the reply Body.
	// Set only on success.
	Response []byte

	// Fault is the SOAP Fault AEAT answered with. Set only on
	// functional failure.
	Fault *soap.Fault

	// Cause is the underlying failure. Set only on communication failure.
	Cause error

	// Raw is the reply exactly as received, set whenever a reply arrived
	// regardless of outcome. Callers that archive responses should write
	// this, not Response.
	Raw []byte

	// OperationID correlates log lines, metrics, and archived replies
	// belonging to one dispatch.
	OperationID string

	// Endpoint is the resolved target the envelope was sent to.
	Endpoint *Endpoint

	// StatusCode is the HTTP status received, zero if none arrived.
	StatusCode int

	// Attempts counts connection attempts the transport made. Zero when
	// the transport gave up without reporting a reply.
	Attempts int

	// Duration covers the whole dispatch, credential handling included.
	Duration time.Duration
}

// Succeeded reports whether the dispatch ended in OutcomeSuccess.
func (r *Result) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}
