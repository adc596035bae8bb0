package model

import "errors"

var (
	// ErrImport is returned when the model file cannot be imported: the
	// importer failed, returned no scene, an incomplete scene or no root node.
	ErrImport = errors.New("model import failed")

	// ErrTextureDecode marks a texture image that could not be read or uploaded.
	ErrTextureDecode = errors.New("texture decode failed")

	// ErrUnsupportedFormat marks a decoded image with a channel count other than 1, 3 or 4.
	ErrUnsupportedFormat = errors.New("unsupported texture format")
)
