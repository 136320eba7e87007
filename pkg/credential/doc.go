// Copyright (c) 2025 AEAT-Sender Contributors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package credential bridges PKCS#12 certificate bundles (.pfx/.p12, as issued
by the FNMT and other Spanish CAs) to the PEM pair the TLS layer consumes.

Materializing a bundle decodes the container and writes exactly two temporary
files: the certificate chain in PEM form and the private key as unencrypted
PKCS#8. Both are created with owner-only permissions. The pair exists only
for the duration of one dispatch; Release deletes both files, is safe to call
more than once, and records deletion failures instead of raising them so it
can run on every exit path.

	material, err := credential.Bundle{Path: "sello.pfx", Passphrase: pw}.Materialize()
	if err != nil {
	    // wrong passphrase, corrupt container, unreadable file
	}
	defer material.Release()

	cert, err := material.TLSCertificate()

The one place key material exists outside memory is these two files, so the
exposure window is the single operation between Materialize and Release.
Wrong-passphrase failures surface pkcs12.ErrIncorrectPassword through the
error chain; the passphrase itself never appears in errors or files.

Both modern (PBES2/AES) and legacy (3DES/RC2) containers decode, which
matters in practice: FNMT-issued seals predate the PBES2 switch.
*/
package credential
