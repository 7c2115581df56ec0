package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/liver-risk-server/internal/domain"
)

// Loader deserializes classifier artifacts and keeps them for the life of the process.
// The first Load of a path reads and decodes the file; later calls return the cached
// Classifier without touching storage.
type Loader struct {
	mu       sync.Mutex
	cache    map[string]Classifier
	readFile func(name string) ([]byte, error)
	decode   DecodeFunc
	features int
	logger   *logrus.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithReadFile replaces the function used to read artifact bytes.
func WithReadFile(fn func(name string) ([]byte, error)) LoaderOption {
	return func(l *Loader) {
		l.readFile = fn
	}
}

// WithDecoder replaces the artifact decoder.
func WithDecoder(fn DecodeFunc) LoaderOption {
	return func(l *Loader) {
		l.decode = fn
	}
}

// WithFeatureCount sets the column count a loaded model must accept.
func WithFeatureCount(n int) LoaderOption {
	return func(l *Loader) {
		l.features = n
	}
}

// NewLoader creates a loader that reads from the filesystem and expects
// domain.FeatureCount input columns.
func NewLoader(logger *logrus.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		cache:    make(map[string]Classifier),
		readFile: os.ReadFile,
		decode:   Decode,
		features: domain.FeatureCount,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the classifier stored at path. A missing file yields a
// MODEL_NOT_FOUND error and any other failure a MODEL_LOAD_ERROR; failures
// are not cached, so a later call retries the read.
func (l *Loader) Load(path string) (Classifier, error) {
	key := filepath.Clean(path)

	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.cache[key]; ok {
		return c, nil
	}

	data, err := l.readFile(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.WithField("model_path", key).Error("Model artifact not found")
			return nil, domain.NewModelNotFoundError(path, err)
		}
		l.logger.WithError(err).WithField("model_path", key).Error("Failed to read model artifact")
		return nil, domain.NewModelLoadError(path, err)
	}

	c, err := l.decode(key, data)
	if err != nil {
		l.logger.WithError(err).WithField("model_path", key).Error("Failed to decode model artifact")
		return nil, domain.NewModelLoadError(path, err)
	}
	if c.NumFeatures() != l.features {
		err := fmt.Errorf("model expects %d features, pipeline produces %d", c.NumFeatures(), l.features)
		l.logger.WithError(err).WithField("model_path", key).Error("Model artifact has the wrong shape")
		return nil, domain.NewModelLoadError(path, err)
	}

	l.cache[key] = c
	l.logger.WithFields(logrus.Fields{
		"model_path": key,
		"classes":    c.Classes(),
		"features":   c.NumFeatures(),
	}).Info("Model artifact loaded")

	return c, nil
}

// Loaded reports whether path has already been loaded successfully.
func (l *Loader) Loaded(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[filepath.Clean(path)]
	return ok
}
