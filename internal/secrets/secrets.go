// Package secrets resolves secret references to Secret Manager version paths
// and fetches their payloads.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrProjectRequired is returned when a bare secret name is given without a
// project to qualify it.
var ErrProjectRequired = errors.New("project is required to resolve a bare secret name")

// Accessor fetches the raw payload of a secret version.
type Accessor interface {
	// AccessVersion returns the payload bytes for a fully-qualified secret
	// version path (projects/{p}/secrets/{s}/versions/{v}).
	AccessVersion(ctx context.Context, versionPath string) ([]byte, error)
}

// LatestVersionPath resolves a secret reference to the path of its latest
// version. A fully-qualified resource path (anything containing a slash) gets
// "/versions/latest" appended; a bare secret name is qualified with the given
// project first.
func LatestVersionPath(secretRef, project string) (string, error) {
	if strings.Contains(secretRef, "/") {
		return secretRef + "/versions/latest", nil
	}
	if project == "" {
		return "", ErrProjectRequired
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, secretRef), nil
}
