package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/cardprep/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cardprep",
		Short: "Flashcard content preparation",
		Long: `cardprep turns a picture-book PDF into flashcard assets.

Each PDF page becomes a cropped JPEG named after its word, each word gets a
spoken MP3, and accepted pairs are copied into the shared asset store and
appended to the app catalogs.

Examples:
  cardprep                                        # Launch the desktop reviewer (default)
  cardprep process book.pdf --words "cat, dog"    # Render and speak, then review the run dir
  cardprep process book.pdf --words-file w.txt --accept-all --target image_grid:Gimel
  cardprep store list --page 2                    # Page through the asset store`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newProcessCommand(flags),
		newRenderCommand(flags),
		newSpeakCommand(flags),
		newCatalogCommand(flags),
		newStoreCommand(flags),
		newHistoryCommand(flags),
		newSuggestCommand(flags),
		newVoicesCommand(),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()

	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.cardprep.yaml)")
	pf.StringVar(&flags.Root, "root", flags.Root, "Project root holding shared/static and the app catalogs")
	pf.IntVar(&flags.Width, "width", flags.Width, "Width of rendered card images in pixels")
	pf.StringVar(&flags.Language, "lang", flags.Language, "Language code used for speech synthesis")
	pf.StringVar(&flags.HistoryFile, "history-file", defaultHistoryFile(), "SQLite file recording promotions and catalog updates")
	pf.BoolVar(&flags.NoHistory, "no-history", false, "Do not record history")

	// Audio flags
	pf.StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Speech provider: gtts, openai or espeak")
	pf.StringVar(&flags.Fallback, "fallback", "", "Speech provider to try when the primary one fails")
	pf.StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	pf.StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, coral, echo, fable, nova, onyx, sage, shimmer")
	pf.Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0, may be ignored by gpt-4o-mini-tts)")
	pf.StringVar(&flags.OpenAIInstruction, "openai-instruction", "", "Voice instructions for gpt-4o-mini-tts, %s is replaced by the language")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	viper.BindPFlag("assets.root", pf.Lookup("root"))
	viper.BindPFlag("image.width", pf.Lookup("width"))
	viper.BindPFlag("audio.language", pf.Lookup("lang"))
	viper.BindPFlag("history.file", pf.Lookup("history-file"))
	viper.BindPFlag("audio.provider", pf.Lookup("audio-provider"))
	viper.BindPFlag("audio.fallback", pf.Lookup("fallback"))
	viper.BindPFlag("audio.openai_model", pf.Lookup("openai-model"))
	viper.BindPFlag("audio.openai_voice", pf.Lookup("openai-voice"))
	viper.BindPFlag("audio.openai_speed", pf.Lookup("openai-speed"))
	viper.BindPFlag("audio.openai_instruction", pf.Lookup("openai-instruction"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".cardprep" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cardprep")
	}

	// Environment variables, CARDPREP_AUDIO_PROVIDER for audio.provider
	viper.SetEnvPrefix("CARDPREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("audio.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("gemini.api_key")
}
