package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"go.uber.org/zap"
)

var (
	// ErrInterfaceNotFound is returned when the adapter is not present.
	ErrInterfaceNotFound = errors.New("interface not found")
	// ErrModeNotConfirmed is returned when the adapter does not report the
	// requested mode after a successful mode change.
	ErrModeNotConfirmed = errors.New("interface mode change not confirmed")
	// ErrInvalidChannel is returned for non-positive channel numbers.
	ErrInvalidChannel = errors.New("invalid channel")
)

// Options bounds the controller's system commands.
type Options struct {
	ModeTimeout    time.Duration
	ChannelTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ModeTimeout <= 0 {
		o.ModeTimeout = DefaultModeTimeout
	}
	if o.ChannelTimeout <= 0 {
		o.ChannelTimeout = DefaultChannelTimeout
	}
	return o
}

// Controller drives one adapter through ip(8) and iw(8).
// It implements ports.InterfaceController.
type Controller struct {
	name      string
	runner    CommandRunner
	inspector *Inspector
	opts      Options
	logger    *zap.Logger

	mu           sync.Mutex
	previousMode domain.InterfaceMode
	channel      int
}

// NewController builds a controller for iface. Commands run through the
// inspector's runner.
func NewController(iface string, inspector *Inspector, opts Options, logger *zap.Logger) *Controller {
	if inspector == nil {
		inspector = NewInspector(nil, "", logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		name:      iface,
		runner:    inspector.runner,
		inspector: inspector,
		opts:      opts.withDefaults(),
		logger:    logger.Named("driver").With(zap.String("interface", iface)),
	}
}

func (c *Controller) Name() string { return c.name }

func (c *Controller) Describe(ctx context.Context) domain.InterfaceInfo {
	return c.inspector.Describe(ctx, c.name)
}

// EnterMonitorMode sets link down, switches type to monitor, brings the link
// back up and confirms the new mode. A failing step is not rolled back.
func (c *Controller) EnterMonitorMode(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := c.inspector.Describe(ctx, c.name)
	if !info.Exists {
		return fmt.Errorf("enter monitor mode on %s: %w", c.name, ErrInterfaceNotFound)
	}
	if info.InMonitorMode() {
		c.logger.Debug("already in monitor mode")
		return nil
	}

	previous := info.CurrentMode
	if previous == domain.ModeUnknown || previous == "" {
		previous = domain.ModeManaged
	}

	c.logger.Info("enabling monitor mode", zap.String("previous_mode", string(previous)))
	if err := c.setType(ctx, "enter monitor mode", domain.ModeMonitor); err != nil {
		return err
	}

	if confirmed := c.inspector.Describe(ctx, c.name); !confirmed.InMonitorMode() {
		return fmt.Errorf("enter monitor mode on %s: reported %q: %w", c.name, confirmed.CurrentMode, ErrModeNotConfirmed)
	}
	c.previousMode = previous
	return nil
}

// ExitMonitorMode restores the mode recorded by EnterMonitorMode, or managed.
func (c *Controller) ExitMonitorMode(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := c.inspector.Describe(ctx, c.name)
	if !info.Exists {
		return fmt.Errorf("exit monitor mode on %s: %w", c.name, ErrInterfaceNotFound)
	}
	if !info.InMonitorMode() {
		return nil
	}

	target := c.previousMode
	if target == "" {
		target = domain.ModeManaged
	}
	c.logger.Info("restoring interface mode", zap.String("mode", string(target)))
	if err := c.setType(ctx, "exit monitor mode", target); err != nil {
		return err
	}
	c.previousMode = ""
	c.channel = 0
	return nil
}

func (c *Controller) setType(ctx context.Context, op string, mode domain.InterfaceMode) error {
	steps := [][]string{
		{"ip", "link", "set", c.name, "down"},
		{"iw", "dev", c.name, "set", "type", string(mode)},
		{"ip", "link", "set", c.name, "up"},
	}
	for _, step := range steps {
		if _, err := runWithTimeout(ctx, c.runner, op, c.opts.ModeTimeout, step[0], step[1:]...); err != nil {
			c.logger.Warn("mode change step failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// SetChannel tunes the adapter. On failure the current channel is unchanged.
func (c *Controller) SetChannel(ctx context.Context, channel int) error {
	if channel <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}
	_, err := runWithTimeout(ctx, c.runner, "set channel", c.opts.ChannelTimeout,
		"iw", "dev", c.name, "set", "channel", strconv.Itoa(channel))
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.channel = channel
	c.mu.Unlock()
	return nil
}

func (c *Controller) CurrentChannel() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// NopController stands in for an adapter during offline replay.
type NopController struct {
	name string

	mu      sync.Mutex
	channel int
}

func NewNopController(name string) *NopController {
	return &NopController{name: name}
}

func (n *NopController) Name() string { return n.name }

func (n *NopController) Describe(context.Context) domain.InterfaceInfo {
	return domain.InterfaceInfo{
		Name:        n.name,
		Exists:      true,
		Wireless:    true,
		CurrentMode: domain.ModeMonitor,
	}
}

func (n *NopController) EnterMonitorMode(context.Context) error { return nil }
func (n *NopController) ExitMonitorMode(context.Context) error  { return nil }

func (n *NopController) SetChannel(_ context.Context, channel int) error {
	n.mu.Lock()
	n.channel = channel
	n.mu.Unlock()
	return nil
}

func (n *NopController) CurrentChannel() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.channel
}
