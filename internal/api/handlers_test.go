package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartContext(t *testing.T, build func(w *multipart.Writer)) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	build(w)
	require.NoError(t, w.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.Request = req
	return c
}

func TestCollectCodesNumberedFields(t *testing.T) {
	c := multipartContext(t, func(w *multipart.Writer) {
		w.WriteField("codigo_1", "print('a')")
		w.WriteField("codigo_2", "print('b')")
		w.WriteField("nombre_archivo_2", "b.py")
	})

	codes, err := collectCodes(c)

	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "print('a')", codes[0].Codigo)
	assert.Empty(t, codes[0].NombreArchivo)
	assert.Equal(t, "b.py", codes[1].NombreArchivo)
}

func TestCollectCodesStopsAtFirstGap(t *testing.T) {
	c := multipartContext(t, func(w *multipart.Writer) {
		w.WriteField("codigo_1", "a")
		w.WriteField("codigo_3", "c")
	})

	codes, err := collectCodes(c)

	require.NoError(t, err)
	assert.Len(t, codes, 1)
}

func TestCollectCodesReadsUploadedFiles(t *testing.T) {
	c := multipartContext(t, func(w *multipart.Writer) {
		w.WriteField("codigo_1", "inline")
		fw, err := w.CreateFormFile("archivos", "main.go")
		require.NoError(t, err)
		fw.Write([]byte("package main"))
	})

	codes, err := collectCodes(c)

	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "package main", codes[1].Codigo)
	assert.Equal(t, "main.go", codes[1].NombreArchivo)
}

func TestFormBoolFallback(t *testing.T) {
	c := multipartContext(t, func(w *multipart.Writer) {
		w.WriteField("activo", "false")
		w.WriteField("raro", "maybe")
	})

	assert.False(t, formBool(c, "activo", true))
	assert.True(t, formBool(c, "raro", true))
	assert.True(t, formBool(c, "ausente", true))
}
