package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Fatihur/api-baru/internal/model"
	"go.uber.org/zap"
)

const credentialFileName = "creds.json"

// FileCredentialStore keeps credential material in a directory tree:
// <root>/<tenant>/<session>/creds.json. Deleting a namespace or a tenant
// is a recursive remove of the corresponding subtree.
type FileCredentialStore struct {
	root   string
	logger *zap.Logger
}

// NewFileCredentialStore creates a filesystem-backed credential store
func NewFileCredentialStore(root string, logger *zap.Logger) (CredentialStore, error) {
	if root == "" {
		return nil, fmt.Errorf("credential root directory is required")
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credential root: %w", err)
	}
	return &FileCredentialStore{
		root:   root,
		logger: logger,
	}, nil
}

func (s *FileCredentialStore) namespaceDir(key model.SessionKey) string {
	return filepath.Join(s.root, key.TenantID, key.Name)
}

// Namespace ensures the namespace directory exists and returns the stored
// blob, or nil when the session has never paired.
func (s *FileCredentialStore) Namespace(ctx context.Context, key model.SessionKey) ([]byte, error) {
	dir := s.namespaceDir(key)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credential namespace: %w", err)
	}

	blob, err := os.ReadFile(filepath.Join(dir, credentialFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	return blob, nil
}

// Save replaces the namespace's credential blob.
func (s *FileCredentialStore) Save(ctx context.Context, key model.SessionKey, blob []byte) error {
	dir := s.namespaceDir(key)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credential namespace: %w", err)
	}

	path := filepath.Join(dir, credentialFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace credentials: %w", err)
	}
	return nil
}

// Delete removes the session's namespace recursively.
func (s *FileCredentialStore) Delete(ctx context.Context, key model.SessionKey) error {
	if err := os.RemoveAll(s.namespaceDir(key)); err != nil {
		return fmt.Errorf("failed to delete credential namespace: %w", err)
	}
	s.logger.Info("Credential namespace deleted",
		zap.String("tenant_id", key.TenantID),
		zap.String("session", key.Name))
	return nil
}

// DeleteTenant removes every namespace owned by the tenant.
func (s *FileCredentialStore) DeleteTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("tenant id is required")
	}
	if err := os.RemoveAll(filepath.Join(s.root, tenantID)); err != nil {
		return fmt.Errorf("failed to delete tenant credentials: %w", err)
	}
	s.logger.Info("Tenant credential tree deleted", zap.String("tenant_id", tenantID))
	return nil
}

// Close is a no-op for the file backend
func (s *FileCredentialStore) Close() {}
