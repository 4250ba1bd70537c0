package domain

// DefaultChannelPlan is 2.4 GHz channels 1-14 followed by the 5 GHz
// 20 MHz channels most drivers allow in monitor mode.
var DefaultChannelPlan = []int{
	1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14,
	36, 40, 44, 48, 52, 56, 60, 64,
	100, 104, 108, 112, 116, 120, 124, 128, 132, 136, 140,
	149, 153, 157, 161, 165,
}

// DefaultChannels returns a fresh copy of DefaultChannelPlan.
func DefaultChannels() []int {
	out := make([]int, len(DefaultChannelPlan))
	copy(out, DefaultChannelPlan)
	return out
}

// FrequencyForChannel maps a channel number to its centre frequency in MHz.
// Channels 1-14 are 2.4 GHz, 32-177 are 5 GHz. Unknown channels return 0.
func FrequencyForChannel(channel int) int {
	switch {
	case channel == 14:
		return 2484
	case channel >= 1 && channel <= 13:
		return 2407 + channel*5
	case channel >= 32 && channel <= 177:
		return 5000 + channel*5
	}
	return 0
}

// ChannelForFrequency is the inverse of FrequencyForChannel. 6 GHz channel
// numbers collide with 2.4 GHz ones and are reported as 0.
func ChannelForFrequency(freq int) int {
	switch {
	case freq == 2484:
		return 14
	case freq >= 2412 && freq <= 2472:
		return (freq - 2407) / 5
	case freq >= 5160 && freq <= 5885:
		return (freq - 5000) / 5
	}
	return 0
}

// BandForChannel classifies a channel number.
func BandForChannel(channel int) (WiFiBand, error) {
	switch {
	case channel >= 1 && channel <= 14:
		return Band24GHz, nil
	case channel >= 32 && channel <= 177:
		return Band5GHz, nil
	}
	return "", ErrUnsupportedBand
}
