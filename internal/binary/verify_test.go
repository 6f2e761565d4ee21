package binary

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"       //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// writeSigningFixture generates a throwaway key, writes its armored public
// keyring and an armored detached signature of content. It returns
// (contentPath, signaturePath, keyringPath).
func writeSigningFixture(t *testing.T, content []byte) (string, string, string) {
	t.Helper()

	dir := t.TempDir()
	entity, err := openpgp.NewEntity("mdnls test", "", "test@example.com", nil)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	var pub bytes.Buffer
	w, err := armor.Encode(&pub, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("failed to create armor encoder: %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatalf("failed to serialize public key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close armor encoder: %v", err)
	}

	var sig bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader(content), nil); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	contentPath := filepath.Join(dir, "archive.tar.gz")
	sigPath := filepath.Join(dir, "archive.tar.gz.asc")
	keyringPath := filepath.Join(dir, "keyring.asc")
	for path, data := range map[string][]byte{
		contentPath: content,
		sigPath:     sig.Bytes(),
		keyringPath: pub.Bytes(),
	} {
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}

	return contentPath, sigPath, keyringPath
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestVerifyGPG(t *testing.T) {
	content := []byte("signed archive bytes")
	contentPath, sigPath, keyringPath := writeSigningFixture(t, content)

	tampered := filepath.Join(t.TempDir(), "tampered.tar.gz")
	if err := os.WriteFile(tampered, []byte("something else"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		archivePath   string
		signaturePath string
		keyringPath   string
		wantErr       bool
	}{
		{name: "valid_signature", archivePath: contentPath, signaturePath: sigPath, keyringPath: keyringPath},
		{name: "tampered_archive", archivePath: tampered, signaturePath: sigPath, keyringPath: keyringPath, wantErr: true},
		{name: "missing_signature", archivePath: contentPath, signaturePath: filepath.Join(t.TempDir(), "none.asc"), keyringPath: keyringPath, wantErr: true},
		{name: "missing_keyring", archivePath: contentPath, signaturePath: sigPath, keyringPath: filepath.Join(t.TempDir(), "none.gpg"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewVerifier(tt.keyringPath).verifyGPG(tt.archivePath, tt.signaturePath)
			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected success, got error: %v", err)
			}
		})
	}
}

func TestVerifySHA256(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("archive content")
	archivePath := filepath.Join(tmpDir, "rari-x86_64-unknown-linux-musl.tar.gz")
	if err := os.WriteFile(archivePath, content, 0644); err != nil {
		t.Fatal(err)
	}

	good := sha256Hex(content)
	bad := strings.Repeat("0", 64)

	tests := []struct {
		name      string
		checksums string
		assetName string
		wantErr   bool
	}{
		{
			name:      "sums_file_match",
			checksums: good + "  rari-x86_64-unknown-linux-musl.tar.gz\n" + bad + "  rari-aarch64-apple-darwin.tar.gz\n",
			assetName: "rari-x86_64-unknown-linux-musl.tar.gz",
		},
		{
			name:      "uppercase_digest",
			checksums: strings.ToUpper(good) + " *rari-x86_64-unknown-linux-musl.tar.gz\n",
			assetName: "rari-x86_64-unknown-linux-musl.tar.gz",
		},
		{
			name:      "bare_digest_file",
			checksums: good + "\n",
			assetName: "rari-x86_64-unknown-linux-musl.tar.gz",
		},
		{
			name:      "default_asset_name_from_path",
			checksums: good + "  rari-x86_64-unknown-linux-musl.tar.gz\n",
		},
		{
			name:      "mismatch",
			checksums: bad + "  rari-x86_64-unknown-linux-musl.tar.gz\n",
			assetName: "rari-x86_64-unknown-linux-musl.tar.gz",
			wantErr:   true,
		},
		{
			name:      "not_listed",
			checksums: good + "  other.tar.gz\n",
			assetName: "rari-x86_64-unknown-linux-musl.tar.gz",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checksumPath := filepath.Join(t.TempDir(), "checksums.txt")
			if err := os.WriteFile(checksumPath, []byte(tt.checksums), 0644); err != nil {
				t.Fatal(err)
			}

			err := NewVerifier("").verifySHA256(archivePath, checksumPath, tt.assetName)
			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestVerifierVerify(t *testing.T) {
	content := []byte("release archive")
	contentPath, sigPath, keyringPath := writeSigningFixture(t, content)

	checksumPath := filepath.Join(t.TempDir(), "SHA256SUMS")
	if err := os.WriteFile(checksumPath, []byte(sha256Hex(content)+"  archive.tar.gz\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		keyringPath   string
		signaturePath string
		checksumPath  string
		wantMethod    VerificationMethod
	}{
		{name: "gpg_preferred", keyringPath: keyringPath, signaturePath: sigPath, checksumPath: checksumPath, wantMethod: VerificationGPG},
		{name: "signature_without_keyring_uses_checksum", signaturePath: sigPath, checksumPath: checksumPath, wantMethod: VerificationSHA256},
		{name: "checksum_only", checksumPath: checksumPath, wantMethod: VerificationSHA256},
		{name: "nothing_published", wantMethod: VerificationNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, err := NewVerifier(tt.keyringPath).Verify(contentPath, tt.signaturePath, tt.checksumPath, "archive.tar.gz")
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if method != tt.wantMethod {
				t.Errorf("method = %v, want %v", method, tt.wantMethod)
			}
		})
	}
}

func TestCalculateSHA256_NonExistentFile(t *testing.T) {
	if _, err := calculateSHA256(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestVerificationMethodString(t *testing.T) {
	tests := []struct {
		method VerificationMethod
		want   string
	}{
		{VerificationNone, "None"},
		{VerificationGPG, "GPG"},
		{VerificationSHA256, "SHA256"},
		{VerificationMethod(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.method.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
