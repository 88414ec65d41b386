// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Playback actions
	ActionPlayPause           Action = "play_pause"
	ActionStop                Action = "stop"
	ActionSeekForward         Action = "seek_forward"
	ActionSeekBack            Action = "seek_back"
	ActionSeekForwardLong     Action = "seek_forward_long"
	ActionSeekBackLong        Action = "seek_back_long"
	ActionSeekExact           Action = "seek_exact" // toggles exact seeks for the arrow keys
	ActionSeekPrompt          Action = "seek_prompt"
	ActionJumpStart           Action = "jump_start"
	ActionTogglePlayerDisplay Action = "toggle_player_display"

	// Display surface
	ActionToggleSurface Action = "toggle_surface" // bind or unbind the display surface

	// Time observers
	ActionToggleMarkers Action = "toggle_markers" // periodic observer logging chapter marks
)
