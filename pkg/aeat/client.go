package aeat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/credential"
	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/metrics"
	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/soap"
	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/transport"
)

// Transport is the HTTPS layer the client dispatches through. Production
// code wires *transport.Client; tests substitute a recorder.
type Transport interface {
	Do(ctx context.Context, req *transport.Request) (*transport.Response, error)
}

// Request describes one submission to AEAT.
type Request struct {
	// System and Environment select the endpoint.
	System      System
	Environment Environment

	// Operation is the local name of the element wrapping the payload,
	// e.g. "SuministroLRFacturasEmitidas".
	Operation string

	// Namespace overrides the endpoint's operation namespace when
	// non-empty.
	Namespace string

	// SOAPAction overrides the endpoint's SOAPAction when non-empty.
	SOAPAction string

	// Payload is the caller-prepared XML fragment. It crosses the wire
	// exactly as given.
	Payload []byte

	// Credentials is the PKCS#12 bundle presented to AEAT.
	Credentials credential.Bundle
}

// Client dispatches submissions to AEAT. It holds no per-dispatch state and
// is safe for concurrent use; each Dispatch materializes and releases its
// own credentials.
type Client struct {
	resolver  EndpointResolver
	transport Transport
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// ClientConfig holds client configuration. Every field is optional: nil
// fields fall back to the published AEAT endpoints, a default transport,
// no-op metrics, and slog.Default.
type ClientConfig struct {
	Resolver EndpointResolver

	// Transport replaces the HTTPS layer entirely. When nil, a
	// *transport.Client is built from TransportOptions.
	Transport Transport

	// TransportOptions configures the built-in transport. Ignored when
	// Transport is set.
	TransportOptions *transport.Options

	Metrics metrics.Recorder
	Logger  *slog.Logger
}

// NewClient creates a new AEAT client.
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	resolver := config.Resolver
	if resolver == nil {
		resolver = DefaultEndpoints()
	}

	tr := config.Transport
	if tr == nil {
		opts := transport.DefaultOptions()
		if config.TransportOptions != nil {
			opts = *config.TransportOptions
		}
		tr = transport.New(opts)
	}

	rec := config.Metrics
	if rec == nil {
		rec = metrics.Noop{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		resolver:  resolver,
		transport: tr,
		metrics:   rec,
		logger:    logger,
	}, nil
}

// Dispatch submits one payload and classifies the reply. Exactly one outcome
// is produced per call:
//
//   - (nil, *ConfigError) or (nil, *CertificateError) when the dispatch
//     failed before anything was sent;
//   - (*Result, *CommunicationError) or (*Result, *FunctionalError) when the
//     wire phase failed, with Result.Outcome tagging the variant;
//   - (*Result, nil) on success.
//
// Callers may branch on the error type or on Result.Outcome; both carry the
// same classification.
func (c *Client) Dispatch(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, &ConfigError{cause: errors.New("request is required")}
	}

	opID := uuid.NewString()
	log := c.logger.With(
		"operation_id", opID,
		"system", req.System.String(),
		"environment", req.Environment.String(),
		"operation", req.Operation,
	)
	start := time.Now()
	c.metrics.DispatchStarted(req.System.String(), req.Environment.String())

	// 1. Resolve endpoint
	ep, err := c.resolver.ResolveEndpoint(req.System, req.Environment)
	if err != nil {
		log.Error("endpoint resolution failed", "error", err)
		return nil, c.abort(req, start, "config_error", &ConfigError{cause: err})
	}
	log = log.With("endpoint", ep.URL)

	// 2. Materialize credentials; released on every path from here on
	km, err := req.Credentials.Materialize()
	if err != nil {
		log.Error("credential materialization failed", "error", err)
		return nil, c.abort(req, start, "certificate_error", &CertificateError{cause: err})
	}
	defer func() {
		km.Release()
		for _, relErr := range km.ReleaseErrors() {
			log.Warn("credential cleanup incomplete", "error", relErr)
		}
	}()

	cert, err := km.TLSCertificate()
	if err != nil {
		log.Error("credential materialization failed", "error", err)
		return nil, c.abort(req, start, "certificate_error", &CertificateError{cause: err})
	}
	log.Debug("credentials materialized",
		"subject", km.Subject,
		"not_after", km.NotAfter,
		"algorithm", km.Algorithm,
	)

	// 3. Build envelope
	action := ep.SOAPAction
	if req.SOAPAction != "" {
		action = req.SOAPAction
	}
	namespace := ep.Namespace
	if req.Namespace != "" {
		namespace = req.Namespace
	}
	envelope, err := soap.Request{
		Operation: req.Operation,
		Namespace: namespace,
		Payload:   req.Payload,
	}.Envelope()
	if err != nil {
		log.Error("envelope construction failed", "error", err)
		return nil, c.abort(req, start, "config_error", &ConfigError{cause: err})
	}
	log.Info("dispatching", "payload_bytes", len(req.Payload))

	result := &Result{
		OperationID: opID,
		Endpoint:    ep,
	}

	// 4. Send via HTTPS
	resp, err := c.transport.Do(ctx, &transport.Request{
		URL:         ep.URL,
		SOAPAction:  action,
		Body:        envelope,
		Certificate: cert,
	})
	if err != nil {
		cerr := &CommunicationError{cause: err}
		result.Outcome = OutcomeCommunicationFailure
		result.Cause = cerr
		c.complete(log, req, result, start)
		return result, cerr
	}

	result.StatusCode = resp.StatusCode
	result.Attempts = resp.Attempts
	result.Raw = resp.Body
	for i := 1; i < resp.Attempts; i++ {
		c.metrics.RetryAttempted(req.System.String())
	}

	// 5. Classify the reply: Fault inspection comes before the HTTP status,
	// because AEAT delivers Faults on 500 responses
	parsed, err := soap.Parse(resp.Body)
	if err != nil {
		cerr := &CommunicationError{StatusCode: resp.StatusCode, cause: err}
		result.Outcome = OutcomeCommunicationFailure
		result.Cause = cerr
		c.complete(log, req, result, start)
		return result, cerr
	}

	if f := parsed.Fault(); f != nil {
		c.metrics.FaultReceived(req.System.String(), f.Code)
		ferr := &FunctionalError{Fault: f}
		result.Outcome = OutcomeFunctionalFailure
		result.Fault = f
		c.complete(log, req, result, start)
		return result, ferr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cerr := &CommunicationError{
			StatusCode: resp.StatusCode,
			cause:      fmt.Errorf("unexpected status %s without a SOAP Fault", resp.Status),
		}
		result.Outcome = OutcomeCommunicationFailure
		result.Cause = cerr
		c.complete(log, req, result, start)
		return result, cerr
	}

	result.Outcome = OutcomeSuccess
	result.Response = parsed.Payload()
	c.complete(log, req, result, start)
	return result, nil
}

// abort records a dispatch that never reached the wire and hands the typed
// error back unchanged.
func (c *Client) abort(req *Request, start time.Time, label string, err error) error {
	c.metrics.DispatchCompleted(
		req.System.String(),
		req.Environment.String(),
		label,
		time.Since(start).Seconds(),
	)
	return err
}

func (c *Client) complete(log *slog.Logger, req *Request, result *Result, start time.Time) {
	result.Duration = time.Since(start)
	c.metrics.DispatchCompleted(
		req.System.String(),
		req.Environment.String(),
		string(result.Outcome),
		result.Duration.Seconds(),
	)

	switch result.Outcome {
	case OutcomeSuccess:
		log.Info("dispatch succeeded",
			"status", result.StatusCode,
			"attempts", result.Attempts,
			"duration", result.Duration,
			"response_bytes", len(result.Response),
		)
	case OutcomeFunctionalFailure:
		log.Error("dispatch rejected by AEAT",
			"status", result.StatusCode,
			"fault_code", result.Fault.Code,
			"fault_message", result.Fault.Message,
			"duration", result.Duration,
		)
	case OutcomeCommunicationFailure:
		log.Error("dispatch failed",
			"status", result.StatusCode,
			"attempts", result.Attempts,
			"duration", result.Duration,
			"error", result.Cause,
		)
	}
}
