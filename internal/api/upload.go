package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/smileynet/storefront/internal/catalog"
)

// Upload is an image attached to a create or update.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewUpload builds an Upload from memory. An empty contentType is detected
// from the name, then from the data.
func NewUpload(name, contentType string, data []byte) *Upload {
	if contentType == "" {
		contentType = detectType(name, data)
	}
	return &Upload{Name: name, ContentType: contentType, Data: data}
}

// OpenUpload reads an image file from disk.
func OpenUpload(path string) (*Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("api: reading image: %w", err)
	}
	return NewUpload(filepath.Base(path), "", data), nil
}

// Meta describes the upload for local validation. It is nil-safe.
func (u *Upload) Meta() *catalog.ImageMeta {
	if u == nil {
		return nil
	}
	return &catalog.ImageMeta{Name: u.Name, ContentType: u.ContentType, Size: int64(len(u.Data))}
}

func detectType(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		mt, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

// encodeMultipart writes payload as a JSON "dados" part and img, when
// present, as an "imagem" file part.
func encodeMultipart(payload any, img *Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	dados, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("api: encoding dados: %w", err)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="dados"`)
	h.Set("Content-Type", "application/json")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("api: creating dados part: %w", err)
	}
	if _, err := part.Write(dados); err != nil {
		return nil, "", fmt.Errorf("api: writing dados part: %w", err)
	}

	if img != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "imagem", "filename": img.Name}))
		ct := img.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("api: creating imagem part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("api: writing imagem part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("api: closing multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
