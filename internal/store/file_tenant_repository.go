package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Fatihur/api-baru/internal/model"
	"go.uber.org/zap"
)

// FileTenantRepository persists tenant records as a single pretty-printed
// JSON file. Writes go through a temp file and rename so a crash mid-write
// never leaves a truncated record set behind.
type FileTenantRepository struct {
	path   string
	logger *zap.Logger
}

// NewFileTenantRepository creates a file-backed tenant repository
func NewFileTenantRepository(path string, logger *zap.Logger) (TenantRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("tenant file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create tenant store directory: %w", err)
	}
	return &FileTenantRepository{
		path:   path,
		logger: logger,
	}, nil
}

// Load reads the full tenant record set. A missing file is an empty set.
func (r *FileTenantRepository) Load(ctx context.Context) (map[string]*model.TenantRecord, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return map[string]*model.TenantRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tenant file: %w", err)
	}

	tenants := map[string]*model.TenantRecord{}
	if len(data) == 0 {
		return tenants, nil
	}
	if err := json.Unmarshal(data, &tenants); err != nil {
		return nil, fmt.Errorf("failed to parse tenant file: %w", err)
	}
	return tenants, nil
}

// Save writes the full tenant record set atomically.
func (r *FileTenantRepository) Save(ctx context.Context, tenants map[string]*model.TenantRecord) error {
	data, err := json.MarshalIndent(tenants, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tenants: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write tenant file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace tenant file: %w", err)
	}

	r.logger.Debug("Tenant file saved",
		zap.String("path", r.path),
		zap.Int("tenants", len(tenants)))
	return nil
}

// Ping verifies the store directory is reachable
func (r *FileTenantRepository) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(r.path))
	return err
}

// Close is a no-op for the file backend
func (r *FileTenantRepository) Close() {}
