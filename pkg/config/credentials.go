package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/scrypt"
)

// Encrypted credentials file layout: [salt][nonce][ciphertext+tag].
const (
	credentialsFileName = "credentials.json.enc"
	configDirName       = ".ensemble"
	saltSize            = 16
	nonceSize           = 12
	scryptN             = 32768 // 2^15
	scryptR             = 8
	scryptP             = 1
	keySize             = 32 // AES-256
)

func credentialsPath(projectDir string) string {
	return filepath.Join(projectDir, configDirName, credentialsFileName)
}

// CredentialsFileExists checks if an encrypted credentials file is present.
func CredentialsFileExists(projectDir string) bool {
	_, err := os.Stat(credentialsPath(projectDir))
	return err == nil
}

func deriveKey(password []byte, salt []byte) ([]byte, error) {
	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	return key, nil
}

// EncryptCredentialsFile encrypts provider credentials to
// <projectDir>/.ensemble/credentials.json.enc with 0600 permissions.
func EncryptCredentialsFile(projectDir, password string, creds map[string]string) error {
	passwordBytes := []byte(password)
	defer zero(passwordBytes)

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := deriveKey(passwordBytes, salt)
	if err != nil {
		return err
	}
	defer zero(key)

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	fileData := make([]byte, 0, saltSize+nonceSize+len(ciphertext))
	fileData = append(fileData, salt...)
	fileData = append(fileData, nonce...)
	fileData = append(fileData, ciphertext...)

	dir := filepath.Join(projectDir, configDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", configDirName, err)
	}

	if err := os.WriteFile(credentialsPath(projectDir), fileData, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

// DecryptCredentialsFile decrypts and returns credentials from the encrypted file.
func DecryptCredentialsFile(projectDir, password string) (map[string]string, error) {
	path := credentialsPath(projectDir)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat credentials file: %w", err)
	}
	if info.Mode().Perm() != 0600 {
		// Tighten permissions rather than refusing outright.
		if chmodErr := os.Chmod(path, 0600); chmodErr != nil {
			return nil, fmt.Errorf("credentials file has loose permissions (%04o) and chmod failed: %w",
				info.Mode().Perm(), chmodErr)
		}
	}

	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	minSize := saltSize + nonceSize + 16 // 16 is the GCM tag size
	if len(fileData) < minSize {
		return nil, fmt.Errorf("credentials file is corrupted or truncated")
	}

	salt := fileData[:saltSize]
	nonce := fileData[saltSize : saltSize+nonceSize]
	ciphertext := fileData[saltSize+nonceSize:]

	passwordBytes := []byte(password)
	defer zero(passwordBytes)

	key, err := deriveKey(passwordBytes, salt)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials (wrong passphrase?): %w", err)
	}

	var creds map[string]string
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted credentials: %w", err)
	}
	return creds, nil
}

// MergeCredentials overlays file-sourced credentials on top of env credentials.
// File entries win so operators can rotate keys without touching the shell.
func MergeCredentials(env, file map[string]string) map[string]string {
	merged := make(map[string]string, len(env)+len(file))
	for k, v := range env {
		merged[k] = v
	}
	for k, v := range file {
		if v != "" {
			merged[k] = v
		}
	}
	return merged
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
