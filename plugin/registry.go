package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit               []OnInit
	onShutdown           []OnShutdown
	onLetterCreated      []OnLetterCreated
	onLetterTransition   []OnLetterTransition
	onDraftGenerated     []OnDraftGenerated
	onGenerationFailed   []OnGenerationFailed
	onCodeCreated        []OnCodeCreated
	onCodeRedeemed       []OnCodeRedeemed
	onRedemptionFailed   []OnRedemptionFailed
	onPointsAwarded      []OnPointsAwarded
	onPlanCreated        []OnPlanCreated
	onNotificationSent   []OnNotificationSent
	onNotificationFailed []OnNotificationFailed
	codeValidators       []CodeValidator
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnLetterCreated); ok {
		r.onLetterCreated = append(r.onLetterCreated, v)
	}
	if v, ok := p.(OnLetterTransition); ok {
		r.onLetterTransition = append(r.onLetterTransition, v)
	}
	if v, ok := p.(OnDraftGenerated); ok {
		r.onDraftGenerated = append(r.onDraftGenerated, v)
	}
	if v, ok := p.(OnGenerationFailed); ok {
		r.onGenerationFailed = append(r.onGenerationFailed, v)
	}
	if v, ok := p.(OnCodeCreated); ok {
		r.onCodeCreated = append(r.onCodeCreated, v)
	}
	if v, ok := p.(OnCodeRedeemed); ok {
		r.onCodeRedeemed = append(r.onCodeRedeemed, v)
	}
	if v, ok := p.(OnRedemptionFailed); ok {
		r.onRedemptionFailed = append(r.onRedemptionFailed, v)
	}
	if v, ok := p.(OnPointsAwarded); ok {
		r.onPointsAwarded = append(r.onPointsAwarded, v)
	}
	if v, ok := p.(OnPlanCreated); ok {
		r.onPlanCreated = append(r.onPlanCreated, v)
	}
	if v, ok := p.(OnNotificationSent); ok {
		r.onNotificationSent = append(r.onNotificationSent, v)
	}
	if v, ok := p.(OnNotificationFailed); ok {
		r.onNotificationFailed = append(r.onNotificationFailed, v)
	}
	if v, ok := p.(CodeValidator); ok {
		r.codeValidators = append(r.codeValidators, v)
	}

	r.logger.Info("plugin registered", "name", p.Name())

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLetterCreated emits a letter created event.
func (r *Registry) EmitLetterCreated(ctx context.Context, letter interface{}) {
	r.mu.RLock()
	plugins := r.onLetterCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLetterCreated(ctx, letter)
		}); err != nil {
			r.logger.Warn("plugin OnLetterCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLetterTransition emits a status transition event.
func (r *Registry) EmitLetterTransition(ctx context.Context, letter interface{}, from, to, actorID string) {
	r.mu.RLock()
	plugins := r.onLetterTransition
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLetterTransition(ctx, letter, from, to, actorID)
		}); err != nil {
			r.logger.Warn("plugin OnLetterTransition failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDraftGenerated emits a draft generated event.
func (r *Registry) EmitDraftGenerated(ctx context.Context, letter interface{}, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onDraftGenerated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDraftGenerated(ctx, letter, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnDraftGenerated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitGenerationFailed emits a generation failure event.
func (r *Registry) EmitGenerationFailed(ctx context.Context, letterID string, genErr error) {
	r.mu.RLock()
	plugins := r.onGenerationFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnGenerationFailed(ctx, letterID, genErr)
		}); err != nil {
			r.logger.Warn("plugin OnGenerationFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCodeCreated emits a code created event.
func (r *Registry) EmitCodeCreated(ctx context.Context, code interface{}) {
	r.mu.RLock()
	plugins := r.onCodeCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCodeCreated(ctx, code)
		}); err != nil {
			r.logger.Warn("plugin OnCodeCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCodeRedeemed emits a redemption committed event.
func (r *Registry) EmitCodeRedeemed(ctx context.Context, usage interface{}, sub interface{}) {
	r.mu.RLock()
	plugins := r.onCodeRedeemed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCodeRedeemed(ctx, usage, sub)
		}); err != nil {
			r.logger.Warn("plugin OnCodeRedeemed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRedemptionFailed emits a redemption failure event.
func (r *Registry) EmitRedemptionFailed(ctx context.Context, code string, redErr error) {
	r.mu.RLock()
	plugins := r.onRedemptionFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRedemptionFailed(ctx, code, redErr)
		}); err != nil {
			r.logger.Warn("plugin OnRedemptionFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPointsAwarded emits a points awarded event.
func (r *Registry) EmitPointsAwarded(ctx context.Context, entry interface{}) {
	r.mu.RLock()
	plugins := r.onPointsAwarded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPointsAwarded(ctx, entry)
		}); err != nil {
			r.logger.Warn("plugin OnPointsAwarded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPlanCreated emits a plan created event.
func (r *Registry) EmitPlanCreated(ctx context.Context, plan interface{}) {
	r.mu.RLock()
	plugins := r.onPlanCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPlanCreated(ctx, plan)
		}); err != nil {
			r.logger.Warn("plugin OnPlanCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitNotificationSent emits a notification delivered event.
func (r *Registry) EmitNotificationSent(ctx context.Context, to, subject string) {
	r.mu.RLock()
	plugins := r.onNotificationSent
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnNotificationSent(ctx, to, subject)
		}); err != nil {
			r.logger.Warn("plugin OnNotificationSent failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitNotificationFailed emits a notification failure event.
func (r *Registry) EmitNotificationFailed(ctx context.Context, to, subject string, sendErr error) {
	r.mu.RLock()
	plugins := r.onNotificationFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnNotificationFailed(ctx, to, subject, sendErr)
		}); err != nil {
			r.logger.Warn("plugin OnNotificationFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// ValidateCode runs all registered code validators. The first rejection
// wins and is returned to the caller.
func (r *Registry) ValidateCode(ctx context.Context, code interface{}, accountID string) error {
	r.mu.RLock()
	validators := r.codeValidators
	r.mu.RUnlock()

	for _, v := range validators {
		if err := v.ValidateCode(ctx, code, accountID); err != nil {
			return err
		}
	}
	return nil
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the letter or redemption pipelines.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
