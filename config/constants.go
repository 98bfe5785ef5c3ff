package config

import "time"

// Generation Constants
const (
	// GenerationTimeout is the hard ceiling for one audio generation request
	GenerationTimeout = 90 * time.Second

	// ProgressTick is how often the displayed generation progress is advanced
	ProgressTick = 500 * time.Millisecond

	// SimulatedProgressCap is the highest value the simulated progress creep reaches
	SimulatedProgressCap = 90
)

// Playback Constants
const (
	// PlayerTick is the interval between time updates while playing
	PlayerTick = 250 * time.Millisecond

	// SkipSeconds is the relative seek used by the skip controls
	SkipSeconds = 10.0

	// DefaultVolume is the initial output volume
	DefaultVolume = 1.0
)

// PlaybackRates is the ordered set the speed control cycles through.
var PlaybackRates = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

// Transcript Constants
const (
	// SpeechWordsPerSecond estimates narration speed when only plain text is known
	SpeechWordsPerSecond = 2.5

	// ArticleFetchTimeout bounds client-side article extraction
	ArticleFetchTimeout = 30 * time.Second
)

// Slideshow Constants
const (
	// SlideshowDebounce delays image lookups while the query is still changing
	SlideshowDebounce = 400 * time.Millisecond

	// DefaultImageQuery is used when a sentence yields no keywords
	DefaultImageQuery = "news"

	// MaxQueryKeywords is how many keywords make up an image query
	MaxQueryKeywords = 3

	// ImageCacheTTL is how long Redis keeps cached image lookups
	ImageCacheTTL = 24 * time.Hour
)

// Track ID Constants
const (
	// TodaysBriefingID identifies the scheduled personal briefing
	TodaysBriefingID = "todays-briefing"

	// CombinedBriefingID identifies the on-demand personal briefing
	CombinedBriefingID = "combined-briefing"

	// TodaysBriefingTitle is the display title of the scheduled briefing
	TodaysBriefingTitle = "Today's Briefing"
)

// Remote Service Headers
const (
	HeaderProgressToken = "X-Progress-Token"
	HeaderUserEmail     = "X-User-Email"
	HeaderPremium       = "X-Premium"
	HeaderDuration      = "X-Duration-Seconds"
	HeaderCached        = "X-Cached"
)
