package soap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"truncated", `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body>`},
		{"html error page", `<html><body>502 Bad Gateway</body></html `},
		{"plain text", `Service Temporarily Unavailable`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)

			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}

func TestResponse_Fault_Qualified(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <soapenv:Fault>
      <faultcode>Client</faultcode>
      <faultstring>Invalid NIF</faultstring>
      <detail><callstack>ValidarNif:linea 42</callstack></detail>
    </soapenv:Fault>
  </soapenv:Body>
</soapenv:Envelope>`

	resp, err := Parse([]byte(raw))
	require.NoError(t, err)

	fault := resp.Fault()
	require.NotNil(t, fault)
	assert.Equal(t, "Client", fault.Code)
	assert.Equal(t, "Invalid NIF", fault.Message)
	assert.True(t, fault.Qualified)
	assert.Contains(t, fault.Detail, "ValidarNif")
	assert.Equal(t, "Código: Client Mensaje: Invalid NIF", fault.Error())
}

func TestResponse_Fault_BareFallback(t *testing.T) {
	// Some gateways in front of AEAT strip namespaces from error documents.
	raw := `<Envelope><Body><Fault><faultcode>Server</faultcode><faultstring>Servicio no disponible</faultstring></Fault></Body></Envelope>`

	resp, err := Parse([]byte(raw))
	require.NoError(t, err)

	fault := resp.Fault()
	require.NotNil(t, fault)
	assert.Equal(t, "Server", fault.Code)
	assert.Equal(t, "Servicio no disponible", fault.Message)
	assert.False(t, fault.Qualified)
}

func TestResponse_Fault_QualifiedFaultFields(t *testing.T) {
	raw := `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <s:Fault>
      <s:faultcode>s:Server</s:faultcode>
      <s:faultstring>Error interno</s:faultstring>
    </s:Fault>
  </s:Body>
</s:Envelope>`

	resp, err := Parse([]byte(raw))
	require.NoError(t, err)

	fault := resp.Fault()
	require.NotNil(t, fault)
	assert.Equal(t, "s:Server", fault.Code)
	assert.Equal(t, "Error interno", fault.Message)
}

func TestResponse_Fault_QualifiedWinsOverBare(t *testing.T) {
	raw := `<root xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <Fault><faultcode>bare</faultcode></Fault>
  <soapenv:Fault><faultcode>qualified</faultcode></soapenv:Fault>
</root>`

	resp, err := Parse([]byte(raw))
	require.NoError(t, err)

	fault := resp.Fault()
	require.NotNil(t, fault)
	assert.Equal(t, "qualified", fault.Code)
	assert.True(t, fault.Qualified)
}

func TestResponse_Fault_ForeignNamespaceIgnored(t *testing.T) {
	raw := `<Envelope xmlns:w="http://www.w3.org/2003/05/soap-envelope"><Body><w:Fault><faultcode>x</faultcode></w:Fault></Body></Envelope>`

	resp, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Nil(t, resp.Fault())
}

func TestResponse_Fault_Absent(t *testing.T) {
	raw := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body><Respuesta><CSV>ABC123</CSV></Respuesta></soapenv:Body>
</soapenv:Envelope>`

	resp, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Nil(t, resp.Fault())
}

func TestResponse_Fault_EmptyFaultElement(t *testing.T) {
	raw := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body><soapenv:Fault/></soapenv:Body>
</soapenv:Envelope>`

	resp, err := Parse([]byte(raw))
	require.NoError(t, err)

	fault := resp.Fault()
	require.NotNil(t, fault)
	assert.Empty(t, fault.Code)
	assert.Empty(t, fault.Message)
	// Without code or message the serialized element stands in.
	assert.Contains(t, fault.Error(), "Fault")
}

func TestResponse_Payload_ExtractsBodyContent(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <siiR:RespuestaLRFacturasEmitidas xmlns:siiR="urn:aeat:siiR">
      <siiR:CSV>A-7D6S8FAKJ</siiR:CSV>
      <siiR:EstadoEnvio>Correcto</siiR:EstadoEnvio>
    </siiR:RespuestaLRFacturasEmitidas>
  </soapenv:Body>
</soapenv:Envelope>`

	resp, err := Parse([]byte(raw))
	require.NoError(t, err)

	payload := string(resp.Payload())
	assert.Contains(t, payload, "RespuestaLRFacturasEmitidas")
	assert.Contains(t, payload, "A-7D6S8FAKJ")
	assert.NotContains(t, payload, "Envelope")
}

func TestResponse_Payload_BareBody(t *testing.T) {
	raw := `<Envelope><Body><Resultado>OK</Resultado></Body></Envelope>`

	resp, err := Parse([]byte(raw))
	require.NoError(t, err)

	payload := string(resp.Payload())
	assert.Contains(t, payload, "<Resultado>OK</Resultado>")
	assert.NotContains(t, payload, "Envelope")
}

func TestResponse_Payload_NoBodyReturnsWholeDocument(t *testing.T) {
	raw := `<Acuse><Recibido>si</Recibido></Acuse>`

	resp, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, string(resp.Payload()))
}

func TestResponse_Payload_EmptyBodyReturnsWholeDocument(t *testing.T) {
	raw := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body/></soapenv:Envelope>`

	resp, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, string(resp.Payload()))
}

func TestFault_Error_PartialFields(t *testing.T) {
	assert.Equal(t, "Mensaje: solo texto", (&Fault{Message: "solo texto"}).Error())
	assert.Equal(t, "Código: Client", (&Fault{Code: "Client"}).Error())
	assert.Equal(t, "SOAP Fault sin código ni mensaje", (&Fault{}).Error())
}
