package aggregate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nao1215/sitescan/internal/model"
)

// decode parses a JSON document the way the client does.
func decode(t *testing.T, doc string) any {
	t.Helper()

	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v))
	return v
}

// loadResponse reads a service response fixture from testdata.
func loadResponse(t *testing.T, name string) model.RawResponse {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	var resp model.RawResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}
