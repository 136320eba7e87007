// Copyright (c) 2025 AEAT-Sender Contributors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package aeat dispatches caller-prepared XML payloads to the Spanish tax
agency's SOAP web services: SII (Suministro Inmediato de Información) and
VeriFactu (Sistemas Informáticos de Facturación).

A dispatch resolves the target endpoint, materializes mTLS credentials from
a PKCS#12 bundle, wraps the payload in a SOAP 1.1 envelope, performs the
HTTPS POST and classifies the reply:

	client, err := aeat.NewClient(&aeat.ClientConfig{})
	if err != nil {
		log.Fatal(err)
	}

	result, err := client.Dispatch(ctx, &aeat.Request{
		System:      aeat.SystemSII,
		Environment: aeat.EnvironmentTesting,
		Operation:   "SuministroLRFacturasEmitidas",
		Payload:     payload,
		Credentials: credential.Bundle{Path: "sello.p12", Passphrase: pass},
	})

# Outcomes

Every dispatch that reaches the wire ends in exactly one of three outcomes,
tagged on Result.Outcome and mirrored by the returned error type:

  - OutcomeSuccess: AEAT accepted the envelope; Result.Response holds the
    reply's business payload.
  - OutcomeFunctionalFailure (*FunctionalError): AEAT answered with a SOAP
    Fault. The Fault is inspected before the HTTP status, because AEAT
    delivers Faults on 500 responses.
  - OutcomeCommunicationFailure (*CommunicationError): the reply never
    arrived or could not be read as XML.

Failures before the wire phase, a system/environment pair that does not
resolve (*ConfigError) or a bundle that does not decode (*CertificateError),
return a nil Result: no envelope was sent, so there is no outcome to tag.

# Environments

AEAT operates a pre-production deployment (pruebas) that accepts the same
submissions without legal effect, and the live deployment (produccion).
DefaultEndpoints carries the published URLs for both systems in both
environments; deployments behind different URLs register their own table or
load one from configuration.
*/
package aeat
