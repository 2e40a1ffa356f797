package config

import (
	"fmt"
	"strings"
)

// Hand identifies one of the two tracked hands.
type Hand uint8

const (
	LeftHand Hand = iota
	RightHand
)

func (h Hand) String() string {
	switch h {
	case LeftHand:
		return "left"
	case RightHand:
		return "right"
	default:
		return fmt.Sprintf("hand(%d)", uint8(h))
	}
}

// Other returns the opposite hand.
func (h Hand) Other() Hand {
	if h == LeftHand {
		return RightHand
	}
	return LeftHand
}

// ParseHand accepts "left"/"right" and the legacy numeric forms "0"/"1".
func ParseHand(s string) (Hand, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "0":
		return LeftHand, nil
	case "right", "1":
		return RightHand, nil
	default:
		return LeftHand, fmt.Errorf("%w: unknown hand %q", ErrInvalidConfig, s)
	}
}

func (h Hand) MarshalText() ([]byte, error) {
	if h != LeftHand && h != RightHand {
		return nil, fmt.Errorf("%w: unknown hand %d", ErrInvalidConfig, uint8(h))
	}
	return []byte(h.String()), nil
}

func (h *Hand) UnmarshalText(text []byte) error {
	parsed, err := ParseHand(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
