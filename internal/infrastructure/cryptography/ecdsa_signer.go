// Package cryptography signs and verifies archived reports with ECDSA P-256.
package cryptography

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
)

// PEM block types
const (
	privateKeyBlockType = "PRIVATE KEY"
	publicKeyBlockType  = "PUBLIC KEY"
)

// ECDSASigner implements reports.Signer. Without a private key it can only verify.
type ECDSASigner struct {
	privateKey *ecdsa.PrivateKey
	publicKey  *ecdsa.PublicKey
	logger     logger.Logger
}

// NewECDSASigner creates a signer. privateKey may be nil for verification only.
func NewECDSASigner(privateKey *ecdsa.PrivateKey, publicKey *ecdsa.PublicKey, logger logger.Logger) (*ECDSASigner, error) {
	if publicKey == nil && privateKey != nil {
		publicKey = &privateKey.PublicKey
	}
	if publicKey == nil {
		return nil, fmt.Errorf("public key cannot be nil")
	}
	return &ECDSASigner{
		privateKey: privateKey,
		publicKey:  publicKey,
		logger:     logger,
	}, nil
}

// LoadOrGenerateSigner reads the key pair of settings, generating and saving a new P-256 pair when the private key is missing
func LoadOrGenerateSigner(settings *config.SigningSettings, logger logger.Logger) (*ECDSASigner, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	privateKey, err := ReadPrivateKey(settings.PrivateKeyPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("No report signing key at ", settings.PrivateKeyPath, ", generating a new key pair")
		privateKey, err = GenerateKeys()
		if err != nil {
			return nil, err
		}
		if err := SavePrivateKeyToFile(privateKey, settings.PrivateKeyPath); err != nil {
			return nil, err
		}
		if err := SavePublicKeyToFile(&privateKey.PublicKey, settings.PublicKeyPath); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return NewECDSASigner(privateKey, &privateKey.PublicKey, logger)
}

// Sign creates an ASN.1 DER signature over the SHA-256 digest of message
func (s *ECDSASigner) Sign(message []byte) ([]byte, error) {
	if s.privateKey == nil {
		return nil, fmt.Errorf("signer has no private key")
	}
	if s.privateKey.D.Sign() == 0 {
		return nil, fmt.Errorf("invalid private key: D cannot be zero")
	}

	hash := sha256.Sum256(message)
	signature, err := ecdsa.SignASN1(rand.Reader, s.privateKey, hash[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	s.logger.Debug("ECDSA signing succeeded")
	return signature, nil
}

// Verify checks an ASN.1 DER signature over the SHA-256 digest of message
func (s *ECDSASigner) Verify(message, signature []byte) (bool, error) {
	if len(signature) == 0 {
		return false, fmt.Errorf("signature cannot be empty")
	}

	hash := sha256.Sum256(message)
	valid := ecdsa.VerifyASN1(s.publicKey, hash[:], signature)

	s.logger.Debug("ECDSA verification finished, valid: ", valid)
	return valid, nil
}

// PublicKey returns the verification key
func (s *ECDSASigner) PublicKey() *ecdsa.PublicKey {
	return s.publicKey
}

// GenerateKeys generates an ECDSA key pair on P-256
func GenerateKeys() (*ecdsa.PrivateKey, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate elliptic curve keys: %w", err)
	}
	return privateKey, nil
}

// SavePrivateKeyToFile writes the key as a PKCS #8 PEM file readable only by its owner
func SavePrivateKeyToFile(privateKey *ecdsa.PrivateKey, filename string) error {
	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}
	return writePEM(filename, privateKeyBlockType, der, 0o600)
}

// SavePublicKeyToFile writes the key as a PKIX PEM file
func SavePublicKeyToFile(publicKey *ecdsa.PublicKey, filename string) error {
	der, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return fmt.Errorf("failed to marshal public key: %w", err)
	}
	return writePEM(filename, publicKeyBlockType, der, 0o644)
}

// ReadPrivateKey reads a PKCS #8 PEM encoded ECDSA private key. A missing file wraps fs.ErrNotExist.
func ReadPrivateKey(filename string) (*ecdsa.PrivateKey, error) {
	block, err := readPEM(filename, privateKeyBlockType)
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	privateKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key in %s is not an ECDSA key", filename)
	}
	return privateKey, nil
}

// ReadPublicKey reads a PKIX PEM encoded ECDSA public key
func ReadPublicKey(filename string) (*ecdsa.PublicKey, error) {
	block, err := readPEM(filename, publicKeyBlockType)
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	publicKey, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key in %s is not an ECDSA key", filename)
	}
	return publicKey, nil
}

// SaveSignatureToFile saves the signature as hex encoded text
func SaveSignatureToFile(filename string, signature []byte) error {
	if err := os.WriteFile(filepath.Clean(filename), []byte(hex.EncodeToString(signature)), 0o600); err != nil {
		return fmt.Errorf("failed to write signature to file %s: %w", filename, err)
	}
	return nil
}

// ReadSignatureFile reads a hex encoded signature
func ReadSignatureFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return nil, fmt.Errorf("unable to read signature file: %w", err)
	}
	signature, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("signature file %s is not hex encoded: %w", filename, err)
	}
	return signature, nil
}

func writePEM(filename, blockType string, der []byte, perm os.FileMode) error {
	filename = filepath.Clean(filename)
	if err := os.MkdirAll(filepath.Dir(filename), 0o700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(filename, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func readPEM(filename, blockType string) (*pem.Block, error) {
	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return nil, fmt.Errorf("unable to read key file: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != blockType {
		return nil, fmt.Errorf("failed to parse PEM block containing the %s", strings.ToLower(blockType))
	}
	return block, nil
}
