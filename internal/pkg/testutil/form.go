package testutil

import (
	"bytes"
	"mime/multipart"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// ReportFormField is the multipart field carrying an uploaded scanner report
const ReportFormField = "file"

// CreateReportForm builds a multipart body with the given text fields and, when
// fileName is set, one report file part. It returns the body and its content type.
func CreateReportForm(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		require.NoError(t, writer.WriteField(k, fields[k]))
	}

	if fileName != "" {
		part, err := writer.CreateFormFile(ReportFormField, fileName)
		require.NoError(t, err)

		_, err = part.Write(content)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
