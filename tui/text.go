package tui

// UI text
const (
	TextTitle          = "🎧 Briefcast"
	TextNothingPlaying = "Nothing playing. Pick a briefing with ↑/↓ and press 'o', or 'g' for today's briefing."
	TextNoTranscript   = "No transcript for this briefing."
	TextSyncing        = "Syncing slideshow..."
	TextEmptyPlaylist  = "No briefings yet."
)
