package enums

import "fmt"

// Channel identifies where an order originated. The built-in set can be
// extended at runtime by channels declared in the rate table.
type Channel string

const (
	ChannelUberEats  Channel = "uber_eats"
	ChannelPedidosYa Channel = "pedidos_ya"
	ChannelBis       Channel = "bis"
	ChannelPhone     Channel = "phone"
	ChannelWhatsApp  Channel = "whatsapp"
)

var validChannels = []Channel{
	ChannelUberEats,
	ChannelPedidosYa,
	ChannelBis,
	ChannelPhone,
	ChannelWhatsApp,
}

// String implements fmt.Stringer.
func (c Channel) String() string {
	return string(c)
}

// IsValid reports whether the value is one of the built-in channels.
func (c Channel) IsValid() bool {
	for _, candidate := range validChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsDirect reports whether the channel bypasses third-party marketplaces.
func (c Channel) IsDirect() bool {
	return c == ChannelPhone || c == ChannelWhatsApp
}

// Channels returns the built-in channels in declaration order.
func Channels() []Channel {
	out := make([]Channel, len(validChannels))
	copy(out, validChannels)
	return out
}

// ParseChannel converts raw input into a built-in Channel.
func ParseChannel(value string) (Channel, error) {
	for _, candidate := range validChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid channel %q", value)
}
