package soap

import (
	"errors"
	"strings"

	"github.com/beevik/etree"
)

// ParseError reports a reply whose bytes could not be read as an XML
// document. It is distinct from a well-formed document that simply carries
// no recognizable Fault.
type ParseError struct {
	cause error
}

func (e *ParseError) Error() string {
	return "soap: parsing reply: " + e.cause.Error()
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// Fault is a SOAP 1.1 Fault extracted from a reply. Its presence is
// authoritative: when a reply carries a Fault, any business body is ignored.
type Fault struct {
	// Code is the faultcode text, e.g. "soapenv:Client".
	Code string

	// Message is the faultstring text.
	Message string

	// Detail is the inner XML of the detail element, if present.
	Detail string

	// Qualified records whether the Fault element was bound to the SOAP 1.1
	// envelope namespace or accepted through the bare-element fallback.
	Qualified bool

	// Raw is the serialized Fault element, kept for diagnostics when code
	// and message are both absent.
	Raw string
}

// Error renders the operator-facing form used in logs and CLI output.
func (f *Fault) Error() string {
	var parts []string
	if f.Code != "" {
		parts = append(parts, "Código: "+f.Code)
	}
	if f.Message != "" {
		parts = append(parts, "Mensaje: "+f.Message)
	}
	if len(parts) == 0 {
		if f.Raw != "" {
			return f.Raw
		}
		return "SOAP Fault sin código ni mensaje"
	}
	return strings.Join(parts, " ")
}

// Response is a parsed SOAP reply.
type Response struct {
	doc *etree.Document
	raw []byte
}

// Parse reads a reply document. Anything that cannot be parsed as XML
// yields a *ParseError.
func Parse(raw []byte) (*Response, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, &ParseError{cause: err}
	}
	if doc.Root() == nil {
		return nil, &ParseError{cause: errors.New("document has no root element")}
	}
	return &Response{doc: doc, raw: raw}, nil
}

// Raw returns the reply bytes as received.
func (r *Response) Raw() []byte {
	return r.raw
}

// Fault returns the Fault carried by the reply, or nil. Qualified elements
// win over bare ones; elements in foreign namespaces are ignored.
func (r *Response) Fault() *Fault {
	el := r.findQualifiedThenBare("Fault")
	if el == nil {
		return nil
	}

	f := &Fault{
		Code:      childText(el, "faultcode"),
		Message:   childText(el, "faultstring"),
		Qualified: el.NamespaceURI() == NamespaceEnvelope,
		Raw:       serializeElement(el),
	}
	if d := childElement(el, "detail"); d != nil {
		f.Detail = innerXML(d)
	}
	return f
}

// Payload returns the reply's business content: the serialized children of
// the Body element. A reply without a Body, or with an empty one, returns
// the whole document so the caller always has something to inspect.
func (r *Response) Payload() []byte {
	body := r.findQualifiedThenBare("Body")
	if body == nil {
		return r.raw
	}
	if len(body.ChildElements()) == 0 {
		return r.raw
	}
	return []byte(innerXML(body))
}

// findQualifiedThenBare locates an element by local name anywhere in the
// document, preferring one bound to the SOAP 1.1 envelope namespace and
// falling back to an unqualified one.
func (r *Response) findQualifiedThenBare(local string) *etree.Element {
	candidates := r.doc.FindElements("//*[local-name()='" + local + "']")
	for _, el := range candidates {
		if el.NamespaceURI() == NamespaceEnvelope {
			return el
		}
	}
	for _, el := range candidates {
		if el.NamespaceURI() == "" {
			return el
		}
	}
	return nil
}

// childText finds a descendant by bare tag first, then by local name, and
// returns its text. Missing elements read as empty, never as an error.
func childText(parent *etree.Element, name string) string {
	el := childElement(parent, name)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func childElement(parent *etree.Element, name string) *etree.Element {
	if el := parent.FindElement(".//" + name); el != nil {
		return el
	}
	return parent.FindElement(".//*[local-name()='" + name + "']")
}

func serializeElement(el *etree.Element) string {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// innerXML serializes an element's children, elements and character data
// alike, without the enclosing tag.
func innerXML(el *etree.Element) string {
	var sb strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			sb.WriteString(serializeElement(t))
		case *etree.CharData:
			sb.WriteString(t.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}
