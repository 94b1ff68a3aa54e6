package transcribe

import (
	"context"
	"fmt"
	goruntime "runtime"
	"strings"

	"go.uber.org/zap"

	"whisper-batch/internal/config"
	"whisper-batch/internal/logging"
)

// ProgressFunc receives model load progress in percent plus a message.
type ProgressFunc func(spec ModelSpec, percent float64, message string)

// ModelCache owns the single live model handle. It is not safe for
// concurrent use; the batch worker is its only caller.
type ModelCache struct {
	loader  Loader
	rules   []config.ComputeRule
	goos    string
	goarch  string
	logger  *zap.Logger
	current Model
	loads   int
}

// NewModelCache creates an empty cache for the running platform.
func NewModelCache(loader Loader, rules []config.ComputeRule, logger *zap.Logger) *ModelCache {
	return NewModelCacheForTests(loader, rules, goruntime.GOOS, goruntime.GOARCH, logger)
}

// NewModelCacheForTests creates a cache with an explicit platform.
func NewModelCacheForTests(loader Loader, rules []config.ComputeRule, goos, goarch string, logger *zap.Logger) *ModelCache {
	return &ModelCache{
		loader: loader,
		rules:  rules,
		goos:   goos,
		goarch: goarch,
		logger: logging.OrNop(logger),
	}
}

// Resolve applies the platform policy for device "auto". Explicit device and
// compute type selections always win.
func (c *ModelCache) Resolve(name, device, computeType string) ModelSpec {
	spec := ModelSpec{
		Name:        strings.TrimSpace(name),
		Device:      strings.ToLower(strings.TrimSpace(device)),
		ComputeType: strings.TrimSpace(computeType),
	}
	if spec.Device == "" {
		spec.Device = "auto"
	}
	if spec.Device != "auto" {
		return spec
	}

	for _, rule := range c.rules {
		if !rule.Matches(c.goos, c.goarch) {
			continue
		}
		if rule.Device != "" {
			spec.Device = rule.Device
		}
		if spec.ComputeType == "" {
			spec.ComputeType = rule.ComputeType
		}
		break
	}
	return spec
}

// Ensure returns a model for the requested triple, reloading only when it
// differs from the live one. The second result reports whether a load happened.
func (c *ModelCache) Ensure(ctx context.Context, name, device, computeType string, progress ProgressFunc) (Model, bool, error) {
	spec := c.Resolve(name, device, computeType)
	if c.current != nil && c.current.Spec() == spec {
		return c.current, false, nil
	}

	if c.current != nil {
		previous := c.current.Spec()
		if err := c.current.Close(); err != nil {
			c.logger.Warn("release model", zap.String("model", previous.String()), zap.Error(err))
		}
		c.current = nil
		c.logger.Info("model released", zap.String("model", previous.String()))
	}

	emitProgress(progress, spec, 0, fmt.Sprintf("Loading %s model...", spec.Name))
	model, err := c.loader.Load(ctx, spec, func(percent float64, message string) {
		emitProgress(progress, spec, percent, message)
	})
	if err != nil {
		return nil, false, NewTaskError(KindModelLoad, "", fmt.Sprintf("load model %s", spec), err)
	}

	c.current = model
	c.loads++
	c.logger.Info("model loaded", zap.String("model", spec.String()), zap.Int("loads", c.loads))
	emitProgress(progress, spec, 100, fmt.Sprintf("Model %s loaded successfully", spec.Name))
	return model, true, nil
}

// Current returns the live model, or nil.
func (c *ModelCache) Current() Model {
	return c.current
}

// Loads returns how many successful loads the cache performed.
func (c *ModelCache) Loads() int {
	return c.loads
}

// Close releases the live model.
func (c *ModelCache) Close() error {
	if c.current == nil {
		return nil
	}
	err := c.current.Close()
	c.current = nil
	return err
}

func emitProgress(cb ProgressFunc, spec ModelSpec, percent float64, message string) {
	if cb != nil {
		cb(spec, percent, message)
	}
}
