package credential

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"software.sslmate.com/src/go-pkcs12"
)

// Bundle is a caller-supplied credential source. Constructing one performs
// no I/O; the passphrase is held in memory only.
type Bundle struct {
	// Path to the .pfx/.p12 file.
	Path string

	// Passphrase protecting the container. Empty is legal: seal
	// certificates are sometimes exported without one.
	Passphrase string
}

// Materialize reads the bundle file and converts it to an ephemeral PEM pair.
func (b Bundle) Materialize() (*KeyMaterial, error) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return nil, fmt.Errorf("reading certificate bundle: %w", err)
	}
	return Materialize(data, b.Passphrase)
}

// KeyMaterial is a materialized client credential: two temporary PEM files
// plus the leaf certificate's metadata for diagnostics. Callers must
// Release it when the operation finishes.
type KeyMaterial struct {
	// CertFile holds the certificate chain in PEM form, leaf first.
	CertFile string

	// KeyFile holds the private key as unencrypted PKCS#8 PEM.
	KeyFile string

	// Leaf certificate metadata.
	Subject   string
	Issuer    string
	NotBefore time.Time
	NotAfter  time.Time
	Algorithm string
	KeySize   int

	mu          sync.Mutex
	released    bool
	releaseErrs []error
}

// Materialize decodes a PKCS#12 container and writes the certificate and
// key PEM files. On failure nothing is left on disk.
func Materialize(data []byte, passphrase string) (*KeyMaterial, error) {
	key, leaf, chain, err := pkcs12.DecodeChain(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("decoding PKCS#12 container: %w", err)
	}
	if key == nil || leaf == nil {
		return nil, errors.New("PKCS#12 container is missing the private key or certificate")
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("encoding private key as PKCS#8: %w", err)
	}

	var certPEM []byte
	certPEM = append(certPEM, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: leaf.Raw})...)
	for _, ca := range chain {
		certPEM = append(certPEM, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: ca.Raw})...)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	certFile, err := writeTemp("aeat-cert-*.pem", certPEM)
	if err != nil {
		return nil, err
	}
	keyFile, err := writeTemp("aeat-key-*.pem", keyPEM)
	if err != nil {
		os.Remove(certFile)
		return nil, err
	}

	return &KeyMaterial{
		CertFile:  certFile,
		KeyFile:   keyFile,
		Subject:   leaf.Subject.String(),
		Issuer:    leaf.Issuer.String(),
		NotBefore: leaf.NotBefore,
		NotAfter:  leaf.NotAfter,
		Algorithm: keyAlgorithmName(leaf.PublicKey),
		KeySize:   keySize(leaf.PublicKey),
	}, nil
}

// TLSCertificate loads the materialized pair for use in a tls.Config. It
// doubles as the round-trip check that the written PEMs are consistent.
func (m *KeyMaterial) TLSCertificate() (tls.Certificate, error) {
	return tls.LoadX509KeyPair(m.CertFile, m.KeyFile)
}

// Release deletes both PEM files. It is idempotent, and deletion failures
// are recorded rather than raised so release can run on every exit path.
func (m *KeyMaterial) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return
	}
	m.released = true

	for _, path := range []string{m.CertFile, m.KeyFile} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.releaseErrs = append(m.releaseErrs, fmt.Errorf("removing %s: %w", path, err))
		}
	}
}

// ReleaseErrors reports deletion failures recorded by Release.
func (m *KeyMaterial) ReleaseErrors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.releaseErrs...)
}

// os.CreateTemp creates with mode 0600, which is exactly the owner-only
// permission the key files need.
func writeTemp(pattern string, data []byte) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing %s: %w", f.Name(), err)
	}
	return f.Name(), nil
}

func keyAlgorithmName(pub any) string {
	switch pub.(type) {
	case *ecdsa.PublicKey:
		return "EC"
	case *rsa.PublicKey:
		return "RSA"
	default:
		return "Unknown"
	}
}

func keySize(pub any) int {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		return k.Curve.Params().BitSize
	case *rsa.PublicKey:
		return k.N.BitLen()
	default:
		return 0
	}
}
