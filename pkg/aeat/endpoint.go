package aeat

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrEndpointNotFound is returned when no endpoint is registered for a
	// system/environment pair
	ErrEndpointNotFound = errors.New("endpoint not found")
	// ErrUnknownSystem is returned for system names outside SII/VeriFactu
	ErrUnknownSystem = errors.New("unknown system")
	// ErrUnknownEnvironment is returned for environment names outside
	// pruebas/produccion
	ErrUnknownEnvironment = errors.New("unknown environment")
)

// System identifies one of the two AEAT submission services.
type System string

const (
	// SystemSII is the Suministro Inmediato de Información ledger service.
	SystemSII System = "SII"
	// SystemVerifactu is the VeriFactu invoice verification service.
	SystemVerifactu System = "VERIFACTU"
)

// ParseSystem maps a case-insensitive name to a System.
func ParseSystem(s string) (System, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(SystemSII):
		return SystemSII, nil
	case string(SystemVerifactu):
		return SystemVerifactu, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSystem, s)
	}
}

func (s System) String() string {
	return string(s)
}

// Environment selects the AEAT deployment a dispatch targets. The names
// follow the agency's own terminology: pruebas (pre-production) and
// produccion (live submissions with legal effect).
type Environment string

const (
	// EnvironmentTesting targets the prewww pre-production hosts.
	EnvironmentTesting Environment = "pruebas"
	// EnvironmentProduction targets the live agenciatributaria hosts.
	EnvironmentProduction Environment = "produccion"
)

// ParseEnvironment maps a case-insensitive name to an Environment. The
// English aliases testing/production are accepted alongside the canonical
// Spanish names.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(EnvironmentTesting), "testing":
		return EnvironmentTesting, nil
	case string(EnvironmentProduction), "production":
		return EnvironmentProduction, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, s)
	}
}

func (e Environment) String() string {
	return string(e)
}

// Endpoint describes where and how one system/environment cell is reached.
type Endpoint struct {
	// URL is the service URL the envelope is POSTed to.
	URL string

	// Namespace qualifies the operation element wrapping the payload.
	// Empty means the operation element carries no xmlns attribute.
	Namespace string

	// SOAPAction is the value sent in the SOAPAction header. AEAT accepts
	// the empty action, which is the default.
	SOAPAction string
}

// EndpointResolver resolves a system/environment pair to endpoint information.
// The static resolver covers the fixed AEAT deployment; the interface leaves
// room for config-driven or per-tenant tables.
type EndpointResolver interface {
	// ResolveEndpoint resolves a system/environment pair to an endpoint
	ResolveEndpoint(system System, environment Environment) (*Endpoint, error)
}

// StaticEndpointResolver implements a fixed endpoint table.
type StaticEndpointResolver struct {
	mu        sync.RWMutex
	endpoints map[endpointKey]*Endpoint
}

type endpointKey struct {
	system      System
	environment Environment
}

// NewStaticEndpointResolver creates an empty resolver. Use Register to add
// cells, or DefaultEndpoints for the published AEAT table.
func NewStaticEndpointResolver() *StaticEndpointResolver {
	return &StaticEndpointResolver{
		endpoints: make(map[endpointKey]*Endpoint),
	}
}

// Register adds or replaces the endpoint for a system/environment pair.
func (r *StaticEndpointResolver) Register(system System, environment Environment, ep *Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints[endpointKey{system, environment}] = ep
}

// ResolveEndpoint implements EndpointResolver
func (r *StaticEndpointResolver) ResolveEndpoint(system System, environment Environment) (*Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.endpoints[endpointKey{system, environment}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrEndpointNotFound, system, environment)
	}
	if ep.URL == "" {
		return nil, fmt.Errorf("%w: %s/%s has no URL", ErrEndpointNotFound, system, environment)
	}

	return ep, nil
}

// DefaultEndpoints returns a resolver preloaded with the AEAT service URLs
// published for SII and VeriFactu.
func DefaultEndpoints() *StaticEndpointResolver {
	r := NewStaticEndpointResolver()
	r.Register(SystemSII, EnvironmentTesting, &Endpoint{
		URL: "https://prewww1.aeat.es/wlpl/SSII-FACT/ws/fe/SiiFactFEV1SOAP",
	})
	r.Register(SystemSII, EnvironmentProduction, &Endpoint{
		URL: "https://www1.agenciatributaria.gob.es/wlpl/SSII-FACT/ws/fe/SiiFactFEV1SOAP",
	})
	r.Register(SystemVerifactu, EnvironmentTesting, &Endpoint{
		URL: "https://prewww1.aeat.es/wlpl/TIKE-CONT/ws/SistemaFacturacion/VerifactuSOAP",
	})
	r.Register(SystemVerifactu, EnvironmentProduction, &Endpoint{
		URL: "https://www1.agenciatributaria.gob.es/wlpl/TIKE-CONT/ws/SistemaFacturacion/VerifactuSOAP",
	})
	return r
}
