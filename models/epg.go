package models

import (
	"time"
)

// Channel represents a live channel from the local channel configuration.
// Channels are static and never mutated at runtime.
type Channel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Logo     string `json:"logo,omitempty"`
	Number   int    `json:"number,omitempty"`
}

// Program represents a single program in a channel's schedule.
type Program struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NowPlaying represents the current and next program for a channel.
type NowPlaying struct {
	ChannelID string   `json:"channelId"`
	Current   *Program `json:"current,omitempty"`
	Next      *Program `json:"next,omitempty"`
	Progress  int      `json:"progress"` // elapsed fraction of Current, 0-100
}

// EPGStatus represents the status of the EPG service.
type EPGStatus struct {
	ChannelCount  int        `json:"channelCount"`
	ProgramCount  int        `json:"programCount"`
	TotalChannels int        `json:"totalChannels"`
	Fetched       int        `json:"fetched"`
	LastRefresh   *time.Time `json:"lastRefresh,omitempty"`
}
