package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data URI")

// DecodedImage is the payload of a "data:image/<subtype>;base64,<data>" URI.
type DecodedImage struct {
	// ContentType is the declared type, e.g. "image/png".
	ContentType string
	Data        []byte
}

func DecodeBase64Image(dataURI string) (DecodedImage, error) {
	header, payload, ok := strings.Cut(dataURI, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return DecodedImage{}, ErrInvalidDataURI
	}

	contentType := strings.TrimPrefix(header, "data:")
	subtype := strings.TrimPrefix(contentType, "image/")
	if subtype == "" || strings.ContainsAny(subtype, "/ ") {
		return DecodedImage{}, ErrInvalidDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return DecodedImage{}, ErrInvalidDataURI
	}

	return DecodedImage{
		ContentType: contentType,
		Data:        data,
	}, nil
}
