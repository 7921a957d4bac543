package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestVersionPath(t *testing.T) {
	testCases := []struct {
		name      string
		secretRef string
		project   string
		want      string
		wantErr   error
	}{
		{
			name:      "bare name with project",
			secretRef: "my-secret",
			project:   "proj-1",
			want:      "projects/proj-1/secrets/my-secret/versions/latest",
		},
		{
			name:      "fully qualified path ignores project",
			secretRef: "projects/proj-1/secrets/my-secret",
			project:   "",
			want:      "projects/proj-1/secrets/my-secret/versions/latest",
		},
		{
			name:      "fully qualified path with different project configured",
			secretRef: "projects/other/secrets/key",
			project:   "proj-1",
			want:      "projects/other/secrets/key/versions/latest",
		},
		{
			name:      "bare name without project",
			secretRef: "my-secret",
			project:   "",
			wantErr:   ErrProjectRequired,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LatestVersionPath(tc.secretRef, tc.project)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
