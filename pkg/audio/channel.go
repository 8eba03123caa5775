// ABOUTME: Mixer channel identifiers
// ABOUTME: Fixed closed set of logical volume groups
package audio

import (
	"fmt"
	"strings"
)

// Channel is a logical category used to group and control volumes
type Channel int

const (
	ChannelMaster Channel = iota
	ChannelMusic
	ChannelSFX
	ChannelVoice
	ChannelAmbient
	ChannelUI

	// ChannelCount is the number of channels
	ChannelCount = int(ChannelUI) + 1
)

var channelNames = [ChannelCount]string{
	ChannelMaster:  "master",
	ChannelMusic:   "music",
	ChannelSFX:     "sfx",
	ChannelVoice:   "voice",
	ChannelAmbient: "ambient",
	ChannelUI:      "ui",
}

// Channels returns every channel in enumeration order
func Channels() []Channel {
	out := make([]Channel, ChannelCount)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}

// Valid reports whether c is one of the known channels
func (c Channel) Valid() bool {
	return c >= 0 && int(c) < ChannelCount
}

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel resolves a channel by name (case-insensitive)
func ParseChannel(name string) (Channel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown channel: %q", name)
}
