package player

import (
	"errors"
	"maps"
	"strings"

	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/vbplayer/internal/errmsg"
)

// EnablePDNKey is the settings key toggling peer-assisted delivery.
const EnablePDNKey = "enable_pdn"

// Argument string keys besides settings keys.
const argCDN = "cdn"

// Settings are the decoded player settings.
type Settings struct {
	EnablePDN bool `koanf:"enable_pdn"`

	// Extra holds keys the player does not interpret.
	Extra map[string]any `koanf:"-"`
}

// mapProvider feeds a settings map to koanf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("settings map provider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]any, error) {
	return maps.Clone(map[string]any(m)), nil
}

// DecodeSettings decodes a settings map. Values are weakly typed, so
// "true" and 1 both enable a boolean setting.
func DecodeSettings(m map[string]any) (Settings, error) {
	var s Settings
	if len(m) == 0 {
		return s, nil
	}

	k := koanf.New(".")
	if err := k.Load(mapProvider(m), nil); err != nil {
		return Settings{}, errmsg.New(errmsg.OpSettings, errmsg.CodeInvalidArgument, err)
	}
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, errmsg.New(errmsg.OpSettings, errmsg.CodeInvalidArgument, err)
	}

	for key, v := range m {
		if key == EnablePDNKey {
			continue
		}
		if s.Extra == nil {
			s.Extra = map[string]any{}
		}
		s.Extra[key] = v
	}
	return s, nil
}

// ParseArgs splits an argument string of whitespace separated key=value
// pairs into a CDN identifier and a settings map.
func ParseArgs(args string) (cdn string, settings map[string]any, err error) {
	settings = map[string]any{}
	for _, field := range strings.Fields(args) {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return "", nil, errmsg.Errorf(errmsg.OpSettings, errmsg.CodeInvalidArgument, "malformed argument %q", field)
		}
		if key == argCDN {
			cdn = value
			continue
		}
		settings[key] = value
	}
	if cdn == "" {
		return "", nil, errmsg.Errorf(errmsg.OpSettings, errmsg.CodeInvalidArgument, "missing %s argument", argCDN)
	}
	return cdn, settings, nil
}
