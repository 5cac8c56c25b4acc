package linenotify

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
)

// buildForm assembles the multipart body. Parts appear in the order
// message, imageThumbnail, imageFullsize, imageFile, and only when set.
func (n *Notifier) buildForm() (*bytes.Buffer, string, error) {
	var content []byte
	if n.imageFile != "" {
		data, err := os.ReadFile(n.imageFile)
		if err != nil {
			return nil, "", &FileReadError{Path: n.imageFile, Err: err}
		}
		content = data
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if n.message != "" {
		if err := w.WriteField(FieldMessage, n.message); err != nil {
			return nil, "", err
		}
	}
	if n.hasImagePair() {
		if err := w.WriteField(FieldImageThumbnail, n.imageThumb); err != nil {
			return nil, "", err
		}
		if err := w.WriteField(FieldImageFullsize, n.imageFull); err != nil {
			return nil, "", err
		}
	}
	if n.imageFile != "" {
		part, err := w.CreateFormFile(FieldImageFile, filepath.Base(n.imageFile))
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
