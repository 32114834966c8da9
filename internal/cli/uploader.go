package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/storymarket/go-storymarket/core"
)

// PutUploader sends a blob as the raw body of a PUT to "<resource path>blob/".
// It is the uploader the CLI installs for the upload command; the library
// leaves upload transport to the integrator.
type PutUploader struct {
	// Segment is appended to the resource path. Defaults to "blob".
	Segment string
	// ContentType defaults to application/octet-stream.
	ContentType string
}

func (u *PutUploader) UploadBlob(ctx context.Context, session core.RESTSession, path string, blob io.Reader) error {
	segment := u.Segment
	if segment == "" {
		segment = "blob"
	}
	contentType := u.ContentType
	if contentType == "" {
		contentType = core.ContentTypeOctetStream
	}
	url, err := core.BuildURL(session.GetConfig(), core.BuildResourcePath(path)+segment)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, blob)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set(core.HeaderContentType, contentType)
	_, err = session.Do(req)
	return err
}
