package cli

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile     string
	Root        string
	Width       int
	Language    string
	HistoryFile string
	NoHistory   bool

	// Audio flags
	AudioProvider     string
	Fallback          string
	OpenAIModel       string
	OpenAIVoice       string
	OpenAISpeed       float64
	OpenAIInstruction string

	// process
	Words     string
	WordsFile string
	AcceptAll bool
	Accept    string
	Targets   []string
	Keep      bool

	// render and speak
	ImagesDir string
	AudioDir  string

	// catalog add
	Target string
	Group  string

	// store list and history
	Page  int
	Limit int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Root:          ".",
		Width:         200,
		Language:      "en",
		AudioProvider: "gtts",
		OpenAIModel:   "gpt-4o-mini-tts",
		OpenAIVoice:   "alloy",
		OpenAISpeed:   1.0,
		Page:          1,
		Limit:         50,
	}
}
