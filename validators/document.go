package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

var (
	ErrDocTooLarge        = errors.New("document too large")
	ErrDocNameTooLong     = errors.New("document name is too long")
	ErrDocTypeUnsupported = errors.New("unsupported document type")
	ErrNoDoc              = errors.New("no document provided")
)

const maxDocNameSize = 255

// allowedDocTypes are the formats asset documents may come in. Deeds,
// statements and scans, not arbitrary uploads
var allowedDocTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// DocumentValidator checks an uploaded asset document before it goes
// anywhere near S3. Returns the HTTP status to respond with on failure
func DocumentValidator(fh *multipart.FileHeader) (int, multipart.File, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoDoc
	}

	if len(fh.Filename) > maxDocNameSize {
		return http.StatusBadRequest, nil, ErrDocNameTooLong
	}

	maxDocSize := viper.GetInt64("upload.max_size")
	if fh.Size > maxDocSize {
		return http.StatusRequestEntityTooLarge, nil, ErrDocTooLarge
	}

	// Headers are easy to spoof so the real check happens on the file
	// contents below. This one just fails fast for legit clients
	ct := fh.Header.Get("Content-Type")
	if ct != "" && !typeAllowed(ct) {
		return http.StatusBadRequest, nil, ErrDocTypeUnsupported
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	if !typeAllowed(mime.String()) {
		return http.StatusBadRequest, nil, ErrDocTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return http.StatusInternalServerError, nil, err
	}

	return 0, f, nil
}

func typeAllowed(ct string) bool {
	return mimetype.EqualsAny(ct, allowedDocTypes...)
}
