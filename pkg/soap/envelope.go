package soap

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
)

const (
	// NamespaceEnvelope is the SOAP 1.1 envelope namespace.
	NamespaceEnvelope = "http://schemas.xmlsoap.org/soap/envelope/"

	// ContentType is the media type SOAP 1.1 messages are posted with.
	ContentType = "text/xml; charset=utf-8"
)

// Request describes a single SOAP 1.1 call around a caller-prepared body
// fragment.
type Request struct {
	// Operation is the local name of the element wrapping the payload,
	// e.g. "SuministroLRFacturasEmitidas".
	Operation string

	// Namespace qualifies the operation element as its default namespace.
	// Empty leaves the element unqualified.
	Namespace string

	// Payload is the body fragment. It is embedded verbatim.
	Payload []byte

	// SOAPAction is the value for the SOAPAction header. AEAT services
	// accept the empty string.
	SOAPAction string
}

// Envelope renders the request as a SOAP 1.1 document/literal envelope.
//
// The payload crosses untouched: no parsing, validation or re-encoding
// happens here. Callers own the fragment's correctness.
func (r Request) Envelope() ([]byte, error) {
	if r.Operation == "" {
		return nil, fmt.Errorf("soap: operation name is required")
	}
	if !validElementName(r.Operation) {
		return nil, fmt.Errorf("soap: operation name %q is not a valid element name", r.Operation)
	}

	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<soapenv:Envelope xmlns:soapenv="` + NamespaceEnvelope + `">` + "\n")
	b.WriteString("  <soapenv:Header/>\n")
	b.WriteString("  <soapenv:Body>\n")
	b.WriteString("    <" + r.Operation)
	if r.Namespace != "" {
		b.WriteString(` xmlns="` + escapeAttr(r.Namespace) + `"`)
	}
	if len(r.Payload) == 0 {
		b.WriteString("/>\n")
	} else {
		b.WriteString(">")
		b.Write(r.Payload)
		b.WriteString("</" + r.Operation + ">\n")
	}
	b.WriteString("  </soapenv:Body>\n")
	b.WriteString("</soapenv:Envelope>\n")
	return b.Bytes(), nil
}

// validElementName rejects strings that would break out of the operation
// tag. It is intentionally looser than the XML Name production: AEAT
// operation names are plain ASCII identifiers, and anything stricter here
// would be validation this package promises not to do.
func validElementName(s string) bool {
	for i, r := range s {
		if unicode.IsSpace(r) {
			return false
		}
		switch r {
		case '<', '>', '&', '"', '\'', '/', '=':
			return false
		}
		if i == 0 && (unicode.IsDigit(r) || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	`"`, "&quot;",
)

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
