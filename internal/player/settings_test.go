package player

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/vbplayer/internal/errmsg"
)

func TestDecodeSettings(t *testing.T) {
	tests := []struct {
		name  string
		in    map[string]any
		pdn   bool
		extra map[string]any
	}{
		{"nil map", nil, false, nil},
		{"bool", map[string]any{EnablePDNKey: true}, true, nil},
		{"string", map[string]any{EnablePDNKey: "true"}, true, nil},
		{"number", map[string]any{EnablePDNKey: 1}, true, nil},
		{"disabled", map[string]any{EnablePDNKey: "false"}, false, nil},
		{"extra keys kept", map[string]any{"region": "eu", EnablePDNKey: true}, true, map[string]any{"region": "eu"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeSettings(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.pdn, s.EnablePDN)
			assert.Equal(t, tt.extra, s.Extra)
		})
	}
}

func TestDecodeSettings_Undecodable(t *testing.T) {
	_, err := DecodeSettings(map[string]any{EnablePDNKey: "sometimes"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errmsg.ErrInvalidArgument))

	var e *errmsg.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, errmsg.OpSettings, e.Op)
}

func TestParseArgs(t *testing.T) {
	cdn, settings, err := ParseArgs("  cdn=file:///srv/clip.mp4\tenable_pdn=true  region=eu ")
	require.NoError(t, err)
	assert.Equal(t, "file:///srv/clip.mp4", cdn)
	assert.Equal(t, map[string]any{"enable_pdn": "true", "region": "eu"}, settings)

	// values may contain '='
	cdn, _, err = ParseArgs("cdn=test://clip?a=b")
	require.NoError(t, err)
	assert.Equal(t, "test://clip?a=b", cdn)
}

func TestParseArgs_Errors(t *testing.T) {
	for _, args := range []string{"", "enable_pdn=true", "cdn", "=x cdn=y", "cdn="} {
		t.Run(args, func(t *testing.T) {
			_, _, err := ParseArgs(args)
			assert.True(t, errors.Is(err, errmsg.ErrInvalidArgument), "got %v", err)
		})
	}
}
