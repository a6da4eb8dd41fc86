package domain

import (
	"fmt"
	"strings"
)

// Platform is the upstream path segment a player is looked up under.
type Platform string

const (
	PlatformPC          Platform = "pc"
	PlatformPlayStation Platform = "psn"
	PlatformXbox        Platform = "xbl"
	PlatformSwitch      Platform = "nintendo-switch"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{PlatformPC, PlatformPlayStation, PlatformXbox, PlatformSwitch}

var platformAliases = map[string]Platform{
	"pc":              PlatformPC,
	"battlenet":       PlatformPC,
	"psn":             PlatformPlayStation,
	"ps":              PlatformPlayStation,
	"playstation":     PlatformPlayStation,
	"xbl":             PlatformXbox,
	"xbox":            PlatformXbox,
	"nintendo-switch": PlatformSwitch,
	"switch":          PlatformSwitch,
	"nsw":             PlatformSwitch,
}

func ParsePlatform(s string) (Platform, error) {
	if p, ok := platformAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

func (p Platform) DisplayName() string {
	switch p {
	case PlatformPC:
		return "PC"
	case PlatformPlayStation:
		return "Playstation"
	case PlatformXbox:
		return "Xbox"
	case PlatformSwitch:
		return "Switch"
	}
	return string(p)
}

// Identifier is the raw user input for a lookup. Username may or may not
// carry a "#discriminator" suffix.
type Identifier struct {
	Platform Platform
	Username string
}

func NewIdentifier(platform, username string) (Identifier, error) {
	p, err := ParsePlatform(platform)
	if err != nil {
		return Identifier{}, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return Identifier{}, fmt.Errorf("username is required")
	}
	return Identifier{Platform: p, Username: username}, nil
}

func (id Identifier) HasDiscriminator() bool {
	return strings.Contains(id.Username, "#")
}

func (id Identifier) String() string {
	return fmt.Sprintf("%s/%s", id.Platform, id.Username)
}
