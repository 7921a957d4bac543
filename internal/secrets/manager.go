package secrets

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	secretmanager "google.golang.org/api/secretmanager/v1"
)

// Manager accesses Google Secret Manager using application default credentials.
type Manager struct {
	svc *secretmanager.Service
}

var _ Accessor = (*Manager)(nil)

// NewManager creates a Secret Manager accessor. Credentials come from the
// ambient environment (ADC).
func NewManager(ctx context.Context, opts ...option.ClientOption) (*Manager, error) {
	svc, err := secretmanager.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager service: %w", err)
	}
	return &Manager{svc: svc}, nil
}

// AccessVersion fetches and decodes the payload of the given secret version.
func (m *Manager) AccessVersion(ctx context.Context, versionPath string) ([]byte, error) {
	resp, err := m.svc.Projects.Secrets.Versions.Access(versionPath).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to access secret version %s: %w", versionPath, err)
	}
	if resp.Payload == nil {
		return nil, fmt.Errorf("secret version %s has no payload", versionPath)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Payload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode secret payload: %w", err)
	}
	return data, nil
}
