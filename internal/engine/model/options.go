package model

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/modelview/internal/engine/texture"
	"github.com/Faultbox/modelview/internal/logger"
	"github.com/Faultbox/modelview/pkg/formats"
)

// DecodeFunc decodes the image file at path.
type DecodeFunc func(path string) (texture.Image, error)

// DefaultFlags are the post-process steps requested from the importer.
const DefaultFlags = formats.Triangulate | formats.FlipUVs

type options struct {
	position mgl32.Vec3
	importer formats.Importer
	decode   DecodeFunc
	flags    formats.PostProcess
	log      *zap.Logger
}

// Option configures Load.
type Option func(*options)

func defaultOptions() options {
	return options{
		importer: formats.DefaultImporter,
		decode:   texture.Decode,
		flags:    DefaultFlags,
	}
}

// WithPosition sets the initial position of the model. The default is the origin.
func WithPosition(p mgl32.Vec3) Option {
	return func(o *options) {
		o.position = p
	}
}

// WithImporter replaces the scene importer.
func WithImporter(imp formats.Importer) Option {
	return func(o *options) {
		o.importer = imp
	}
}

// WithDecoder replaces the image decoder.
func WithDecoder(fn DecodeFunc) Option {
	return func(o *options) {
		o.decode = fn
	}
}

// WithFlags replaces the importer post-process flags.
func WithFlags(flags formats.PostProcess) Option {
	return func(o *options) {
		o.flags = flags
	}
}

// WithLogger sets the logger used during the load.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func (o *options) logger() *zap.Logger {
	if o.log != nil {
		return o.log
	}
	return logger.Named("model")
}
