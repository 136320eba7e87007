// Copyright (c) 2025 AEAT-Sender Contributors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package aeatsender submits pre-built XML documents to the Spanish tax
agency's (AEAT) SOAP 1.1 web services over mutually-authenticated TLS.

# Overview

AEAT-Sender is a Go library and CLI for the two AEAT submission services:

  - SII (Suministro Inmediato de Información): periodic VAT ledger
    reporting.
  - VeriFactu (Sistemas Informáticos de Facturación): real-time invoice
    verification.

The caller prepares a complete XML payload; AEAT-Sender wraps it in a SOAP
1.1 envelope, authenticates with a client certificate sourced from a
PKCS#12 bundle, performs the HTTPS POST with bounded connection retries,
and classifies the reply into one of three outcomes: success, functional
failure (AEAT answered with a SOAP Fault) or communication failure (no
interpretable reply was obtained).

# Package Structure

	github.com/Mauro-Remeseiro/AEAT-Sender/pkg/aeat        - Dispatch client and error taxonomy
	github.com/Mauro-Remeseiro/AEAT-Sender/pkg/credential  - PKCS#12 to ephemeral PEM bridge
	github.com/Mauro-Remeseiro/AEAT-Sender/pkg/soap        - SOAP 1.1 envelope codec and Fault detection
	github.com/Mauro-Remeseiro/AEAT-Sender/pkg/transport   - Mutual-TLS HTTPS client with bounded retries
	github.com/Mauro-Remeseiro/AEAT-Sender/pkg/metrics     - Pluggable dispatch metrics (noop, Prometheus)
	github.com/Mauro-Remeseiro/AEAT-Sender/cmd/aeat-sender - Command line interface

# Quick Start

To submit a payload:

	import (
	    "github.com/Mauro-Remeseiro/AEAT-Sender/pkg/aeat"
	    "github.com/Mauro-Remeseiro/AEAT-Sender/pkg/credential"
	)

	client, err := aeat.NewClient(&aeat.ClientConfig{})
	if err != nil {
	    log.Fatal(err)
	}

	result, err := client.Dispatch(ctx, &aeat.Request{
	    System:      aeat.SystemSII,
	    Environment: aeat.EnvironmentProduction,
	    Operation:   "SuministroLRFacturasEmitidas",
	    Payload:     payload,
	    Credentials: credential.Bundle{Path: "sello.p12", Passphrase: pass},
	})

Or from the command line:

	aeat-sender send --config config.yaml --system sii --environment production \
	    --operation SuministroLRFacturasEmitidas --input facturas.xml

# Credential Handling

The PKCS#12 bundle is decoded per dispatch into two temporary PEM files
with owner-only permissions, presented to the TLS layer, and deleted
before the dispatch returns on every path. No key material survives an
operation; no passphrase is ever logged.

# Retry Semantics

A submission is not idempotent: a read timeout after the request has been
written may mean AEAT received it. Retries are therefore limited to
connection establishment (DNS, connection refused, TLS handshake), with a
small fixed attempt budget and doubling backoff. Once bytes have been
sent, any failure is final.

# References

  - SII: https://sede.agenciatributaria.gob.es/Sede/iva/suministro-inmediato-informacion.html
  - VeriFactu: https://sede.agenciatributaria.gob.es/Sede/iva/sistemas-informaticos-facturacion-verifactu.html
  - SOAP 1.1: https://www.w3.org/TR/2000/NOTE-SOAP-20000508/

# License

BSD-2-Clause License
*/
package aeatsender
