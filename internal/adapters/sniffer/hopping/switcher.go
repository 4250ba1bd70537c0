package hopping

import "context"

// ChannelSwitcher abstracts the mechanism for changing WiFi channels.
type ChannelSwitcher interface {
	SetChannel(ctx context.Context, channel int) error
}

// SwitcherFunc adapts a function to ChannelSwitcher.
type SwitcherFunc func(ctx context.Context, channel int) error

// SetChannel calls f.
func (f SwitcherFunc) SetChannel(ctx context.Context, channel int) error {
	return f(ctx, channel)
}
