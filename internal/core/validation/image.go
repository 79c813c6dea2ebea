package validation

import (
	"errors"
	"net/http"
)

var (
	// ErrImageTooLarge is returned when an upload exceeds the size limit.
	ErrImageTooLarge = errors.New("image is too large")

	// ErrImageUnsupported is returned when the upload is not a supported image.
	ErrImageUnsupported = errors.New("upload a valid image; the file is either not an image or a corrupted image")
)

var imageExtensions = map[string]string{
	"image/gif":  ".gif",
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// DetectImage inspects the first bytes of an upload and returns the canonical
// file extension. size is the full upload size.
func DetectImage(head []byte, size, maxSize int64) (string, error) {
	if maxSize > 0 && size > maxSize {
		return "", ErrImageTooLarge
	}
	if len(head) == 0 {
		return "", ErrImageUnsupported
	}
	ext, ok := imageExtensions[http.DetectContentType(head)]
	if !ok {
		return "", ErrImageUnsupported
	}
	return ext, nil
}
