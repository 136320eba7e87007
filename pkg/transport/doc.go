// Copyright (c) 2025 AEAT-Sender Contributors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport implements the mutual-TLS HTTPS client that carries SOAP
envelopes to the AEAT endpoints.

# TLS Configuration

TLS 1.2 is the floor, matching what the AEAT platform negotiates. The client
certificate comes from the materialized credential pair and is presented on
every attempt; server certificate verification is always on and cannot be
disabled through this package.

# Timeouts

Connect and read phases are bounded separately, mirroring the service's
operational profile: establishing a connection to the AEAT frontends is fast
or fails fast, while a SuministroLR batch can legitimately take tens of
seconds to process before the first response byte arrives.

	opts := transport.DefaultOptions()
	// ConnectTimeout: 10s
	// ReadTimeout:    60s

# Retry Policy

Only connection-establishment failures are retried: DNS resolution errors,
connection refused, resets during dial. Once a request has been written the
client never resends it, whatever happens to the response; an invoice batch
that may already be registered at AEAT must not be submitted twice. Each
dispatch uses a fresh connection, so the standard library's transparent
replay of requests on reused connections never applies.

	resp, err := client.Do(ctx, &transport.Request{
	    URL:         endpoint,
	    Body:        envelope,
	    Certificate: clientCert,
	})

A reply with a non-2xx status is not an error at this layer: the body is
returned alongside the status code so the caller can look for a SOAP Fault
before judging the exchange.
*/
package transport
