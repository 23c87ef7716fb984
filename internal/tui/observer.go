package tui

import "github.com/mmcdole/marquee/internal/domain"

// ChannelObserver adapts domain.SearchObserver to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan domain.SearchSnapshot
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver() *ChannelObserver {
	return &ChannelObserver{ch: make(chan domain.SearchSnapshot, 16)}
}

// OnSearchUpdate sends the snapshot to the channel (non-blocking if full).
func (o *ChannelObserver) OnSearchUpdate(snap domain.SearchSnapshot) {
	select {
	case o.ch <- snap:
	default: // Non-blocking if channel full
	}
}

// Updates returns the snapshot channel the TUI waits on.
func (o *ChannelObserver) Updates() <-chan domain.SearchSnapshot {
	return o.ch
}
