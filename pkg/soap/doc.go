// Copyright (c) 2025 AEAT-Sender Contributors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package soap implements the SOAP 1.1 envelope codec used by the AEAT web
services (SII and VeriFactu).

The codec is deliberately thin: AEAT payloads are prepared upstream by the
invoicing system, so this package never validates, re-encodes or normalizes
the business fragment. Building an envelope wraps the fragment byte-for-byte
inside a namespace-qualified operation element; parsing a reply locates the
Fault and Body elements without assuming the server qualified them correctly.

# Building Requests

	req := soap.Request{
	    Operation: "SuministroLRFacturasEmitidas",
	    Namespace: "https://www2.agenciatributaria.gob.es/static_files/common/internet/dep/aplicaciones/es/aeat/ssii/fact/ws/SuministroLR.wsdl",
	    Payload:   payload,
	}
	envelope, err := req.Envelope()

# Parsing Replies

	resp, err := soap.Parse(raw)
	if err != nil {
	    // not XML at all
	}
	if fault := resp.Fault(); fault != nil {
	    // functional failure reported by AEAT
	}
	body := resp.Payload()

# Fault Detection

AEAT's production endpoints qualify Fault elements under the SOAP 1.1
envelope namespace, but intermediate gateways have been observed returning
bare <Fault> documents. Detection therefore runs in two phases: elements
bound to http://schemas.xmlsoap.org/soap/envelope/ win, and unqualified
elements are accepted as a fallback. Elements bound to any other namespace
are never treated as SOAP faults.
*/
package soap
