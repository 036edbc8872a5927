package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/cardprep/internal/archive"
	"codeberg.org/snonux/cardprep/internal/audio"
	"codeberg.org/snonux/cardprep/internal/batch"
	"codeberg.org/snonux/cardprep/internal/catalog"
	"codeberg.org/snonux/cardprep/internal/errors"
	"codeberg.org/snonux/cardprep/internal/history"
	"codeberg.org/snonux/cardprep/internal/models"
	"codeberg.org/snonux/cardprep/internal/processor"
	"codeberg.org/snonux/cardprep/internal/raster"
	"codeberg.org/snonux/cardprep/internal/review"
	"codeberg.org/snonux/cardprep/internal/suggest"
)

func newProcessCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <pdf>",
		Short: "Render and speak a PDF, then promote the accepted words",
		Long: `Render every page of the PDF to a JPEG named after its word and speak
every word into an MP3. The word count must match the page count.

Without --accept or --accept-all the run directory is kept for review.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.Words, "words", "", "Comma-separated words, one per page")
	cmd.Flags().StringVar(&flags.WordsFile, "words-file", "", "File with one word per line (# starts a comment)")
	cmd.Flags().BoolVar(&flags.AcceptAll, "accept-all", false, "Accept every word of the run")
	cmd.Flags().StringVar(&flags.Accept, "accept", "", "Comma-separated words to accept")
	cmd.Flags().StringArrayVar(&flags.Targets, "target", nil, "Catalog to update as app:group (repeatable)")
	cmd.Flags().BoolVar(&flags.Keep, "keep", false, "Keep the run directory after promoting")
	return cmd
}

func newRenderCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <pdf>",
		Short: "Render PDF pages to cropped JPEGs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), flags, args[0])
		},
	}
	cmd.Flags().StringVarP(&flags.ImagesDir, "output", "o", "images", "Output directory")
	cmd.Flags().StringVar(&flags.Words, "words", "", "Comma-separated file names, one per page (default page_N)")
	return cmd
}

func newSpeakCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speak <word>...",
		Short: "Synthesize one MP3 per word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpeak(cmd.Context(), flags, args)
		},
	}
	cmd.Flags().StringVarP(&flags.AudioDir, "output", "o", "audio", "Output directory")
	return cmd
}

func newCatalogCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and update app catalogs",
	}

	add := &cobra.Command{
		Use:   "add <word>...",
		Short: "Append words to a catalog group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogAdd(flags, args)
		},
	}
	add.Flags().StringVar(&flags.Target, "target", "", "Catalog app (see 'catalog targets')")
	add.Flags().StringVar(&flags.Group, "group", "", "Group to append to")
	add.MarkFlagRequired("target")
	add.MarkFlagRequired("group")

	targets := &cobra.Command{
		Use:   "targets",
		Short: "List the known catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := LoadProcessorConfig(flags).Root
			for _, t := range LoadTargets() {
				fmt.Printf("%-12s %-9s %s [%s]\n", t.Name, t.Shape, t.Path(root), strings.Join(t.Groups, ", "))
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "List the groups of a catalog, or the words of one group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogShow(flags)
		},
	}
	show.Flags().StringVar(&flags.Target, "target", "", "Catalog app (see 'catalog targets')")
	show.Flags().StringVar(&flags.Group, "group", "", "Group whose words are listed")
	show.MarkFlagRequired("target")

	backups := &cobra.Command{
		Use:   "backups",
		Short: "List the archived copies of a catalog, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogBackups(flags)
		},
	}
	backups.Flags().StringVar(&flags.Target, "target", "", "Catalog app (see 'catalog targets')")
	backups.MarkFlagRequired("target")

	cmd.AddCommand(add, targets, show, backups)
	return cmd
}

func newStoreCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Review the shared asset store",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List image/audio pairs, 20 per page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreList(flags)
		},
	}
	list.Flags().IntVar(&flags.Page, "page", flags.Page, "Page to show (1-based)")

	rename := &cobra.Command{
		Use:   "rename <slug> <new word>",
		Short: "Rename a pair and re-speak its audio",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreRename(cmd.Context(), flags, args[0], strings.Join(args[1:], " "))
		},
	}

	regen := &cobra.Command{
		Use:   "regen <slug>",
		Short: "Recreate the audio of a pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreRegen(cmd.Context(), flags, args[0])
		},
	}

	cmd.AddCommand(list, rename, regen)
	return cmd
}

func newHistoryCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent promotions and catalog updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(flags)
		},
	}
	cmd.Flags().IntVar(&flags.Limit, "limit", flags.Limit, "Number of events to show")
	return cmd
}

func newSuggestCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <pdf>",
		Short: "Ask Gemini for one word per page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd.Context(), flags, args[0])
		},
	}
}

func newVoicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the OpenAI speech models for --openai-model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := LoadAudioConfig()
			return models.NewLister(config.OpenAIKey).PrintSpeechModels(cmd.Context(), config.OpenAIModel)
		},
	}
}

// readWords collects the words from --words and --words-file
func readWords(flags *Flags) ([]string, error) {
	words := batch.ParseWords(flags.Words)
	if flags.WordsFile != "" {
		fromFile, err := batch.ReadWordsFile(flags.WordsFile)
		if err != nil {
			return nil, err
		}
		words = append(words, fromFile...)
	}
	if len(words) == 0 {
		return nil, errors.MissingInputf("no words given, use --words or --words-file")
	}
	return words, nil
}

func runProcess(ctx context.Context, flags *Flags, pdfPath string) error {
	words, err := readWords(flags)
	if err != nil {
		return err
	}

	proc, err := NewProcessor(flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	selections, err := ParseTargetSelections(flags.Targets, proc.Targets())
	if err != nil {
		return err
	}

	session := review.NewBatchSession(proc)
	if err := session.Start(ctx, pdfPath, words); err != nil {
		return err
	}
	b := session.Batch()

	for _, w := range b.Words {
		if err := b.AudioError(w); err != nil {
			fmt.Printf("  %-20s %s  (no audio: %v)\n", w, b.ImagePath(w), err)
			continue
		}
		fmt.Printf("  %-20s %s  %s\n", w, b.ImagePath(w), b.AudioPath(w))
	}

	if flags.AcceptAll {
		session.AcceptAll()
	}
	for _, w := range batch.ParseWords(flags.Accept) {
		session.SetAccepted(w, true)
		if !session.IsAccepted(w) {
			fmt.Fprintf(os.Stderr, "Warning: %q is not part of this run\n", w)
		}
	}

	accepted := session.Accepted()
	if len(accepted) == 0 {
		fmt.Printf("Nothing accepted, run directory kept for review: %s\n", b.Dir)
		return nil
	}
	fmt.Println(session.SelectionLabel())

	if flags.Keep {
		if _, err := proc.Promote(b, accepted); err != nil {
			return err
		}
		if err := printCatalogResults(proc.ApplyCatalogs(selections, accepted)); err != nil {
			return err
		}
		fmt.Printf("Run directory kept: %s\n", b.Dir)
		return nil
	}

	outcome, err := session.Apply(ctx, selections)
	if err != nil {
		if outcome != nil && session.Active() {
			fmt.Fprintf(os.Stderr, "Run directory kept: %s\n", b.Dir)
		}
		return err
	}
	return printCatalogResults(outcome.Catalogs, nil)
}

func printCatalogResults(results []processor.CatalogResult, err error) error {
	for _, r := range results {
		if len(r.Added) == 0 {
			fmt.Printf("%s: nothing new\n", r.Selection)
			continue
		}
		fmt.Printf("%s: added %s\n", r.Selection, batch.Join(r.Added))
	}
	return err
}

func runRender(ctx context.Context, flags *Flags, pdfPath string) error {
	labels := batch.ParseWords(flags.Words)
	if len(labels) > 0 {
		pages, err := raster.PageCount(pdfPath)
		if err != nil {
			return err
		}
		if pages != len(labels) {
			return errors.CountMismatch(len(labels), pages)
		}
	}

	width := viper.GetInt("image.width")
	if width <= 0 {
		width = raster.DefaultWidth
	}

	paths, err := raster.New(nil).RenderPages(ctx, pdfPath, flags.ImagesDir, width, labels)
	if err != nil {
		return err
	}
	fmt.Printf("Rendered %d page(s) into %s\n", len(paths), flags.ImagesDir)
	return nil
}

func runSpeak(ctx context.Context, flags *Flags, words []string) error {
	provider, err := audio.NewProvider(LoadAudioConfig())
	if err != nil {
		return fmt.Errorf("failed to create audio provider: %w", err)
	}

	language := LoadProcessorConfig(flags).Language
	results := audio.NewSynthesizer(provider).Synthesize(ctx, words, language, flags.AudioDir)

	if failed := audio.Failed(words, results); len(failed) > 0 {
		return errors.Wrapf(nil, errors.CodeSynthesis, "no audio for %s", batch.Join(failed))
	}
	fmt.Printf("Generated %d audio file(s) in %s\n", len(words), flags.AudioDir)
	return nil
}

func runCatalogAdd(flags *Flags, words []string) error {
	proc, err := newStoreProcessor(flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	sel := processor.Selection{Target: flags.Target, Group: flags.Group}
	return printCatalogResults(proc.ApplyCatalogs([]processor.Selection{sel}, words))
}

// catalogPath resolves --target against the configured catalogs
func catalogPath(flags *Flags) (string, error) {
	target, err := catalog.FindTarget(LoadTargets(), flags.Target)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeNotFound, "no such catalog")
	}
	return target.Path(LoadProcessorConfig(flags).Root), nil
}

func runCatalogShow(flags *Flags) error {
	path, err := catalogPath(flags)
	if err != nil {
		return err
	}

	doc, err := catalog.Load(path)
	if err != nil {
		return err
	}

	if flags.Group == "" {
		for _, key := range doc.Keys() {
			words, err := doc.Words(key)
			if err != nil {
				fmt.Printf("%s (not a word list)\n", key)
				continue
			}
			fmt.Printf("%s (%d)\n", key, len(words))
		}
		return nil
	}

	if _, ok := doc.Group(flags.Group); !ok {
		return errors.NotFoundf("group %s not found in %s", flags.Group, path)
	}
	words, err := doc.Words(flags.Group)
	if err != nil {
		return err
	}
	for _, w := range words {
		fmt.Println(w)
	}
	return nil
}

func runCatalogBackups(flags *Flags) error {
	path, err := catalogPath(flags)
	if err != nil {
		return err
	}

	backups, err := archive.List(path)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Printf("No backups of %s\n", path)
		return nil
	}
	for _, b := range backups {
		fmt.Println(b)
	}
	return nil
}

// newStoreProcessor builds a processor for commands that may never speak.
// A provider that cannot be configured only fails once audio is needed.
func newStoreProcessor(flags *Flags) (*processor.Processor, error) {
	provider, err := audio.NewProvider(LoadAudioConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		provider = unavailableProvider{err: err}
	}
	return processor.NewProcessor(LoadProcessorConfig(flags), nil, provider), nil
}

type unavailableProvider struct {
	err error
}

func (p unavailableProvider) GenerateAudio(ctx context.Context, text, language, outputFile string) error {
	return p.err
}

func (p unavailableProvider) Name() string {
	return "unavailable"
}

func (p unavailableProvider) IsAvailable() error {
	return p.err
}

func runStoreList(flags *Flags) error {
	proc, err := newStoreProcessor(flags)
	if err != nil {
		return err
	}

	session, err := review.NewStoreSession(proc.Store(), proc.Speaker())
	if err != nil {
		return err
	}

	if flags.Page < 1 || flags.Page > session.PageCount() {
		return errors.Validationf("page %d out of range 1-%d", flags.Page, session.PageCount())
	}
	for i := 1; i < flags.Page; i++ {
		session.NextPage()
	}

	fmt.Println(session.PageLabel())
	for _, p := range session.CurrentPage() {
		fmt.Printf("  %-24s %s  %s\n", p.Slug, p.ImagePath, p.AudioPath)
	}
	return nil
}

func runStoreRename(ctx context.Context, flags *Flags, slug, newWord string) error {
	proc, err := NewProcessor(flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	newSlug, err := proc.Store().Rename(ctx, slug, newWord, proc.Speaker())
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s\n", slug, newSlug)
	return nil
}

func runStoreRegen(ctx context.Context, flags *Flags, slug string) error {
	proc, err := NewProcessor(flags)
	if err != nil {
		return err
	}
	defer proc.Close()
	return proc.Store().RegenerateAudio(ctx, slug, proc.Speaker())
}

func runHistory(flags *Flags) error {
	file := LoadProcessorConfig(flags).HistoryFile
	if file == "" {
		return errors.MissingInputf("history is disabled")
	}

	log, err := history.Open(file)
	if err != nil {
		return err
	}
	defer log.Close()

	events, err := log.Recent(flags.Limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No history yet")
		return nil
	}
	for _, e := range events {
		fmt.Println(e)
	}
	return nil
}

func runSuggest(ctx context.Context, flags *Flags, pdfPath string) error {
	pages, err := raster.PageCount(pdfPath)
	if err != nil {
		return err
	}

	s, err := suggest.New(ctx, GetGeminiKey(), viper.GetString("gemini.model"))
	if err != nil {
		return err
	}

	words, err := s.SuggestWords(ctx, pdfPath, pages, LoadProcessorConfig(flags).Language)
	if err != nil {
		return err
	}
	fmt.Println(batch.Join(words))
	return nil
}
