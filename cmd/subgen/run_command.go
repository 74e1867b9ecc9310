package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subgen/internal/config"
	"subgen/internal/pipeline"
	"subgen/internal/proofreader"
	"subgen/internal/styles"
	"subgen/internal/subtitle"
	"subgen/internal/translator"
)

type runFlags struct {
	to               string
	from             string
	sentenceAware    bool
	proofread        bool
	proofreadOnly    bool
	noTranslate      bool
	bilingual        bool
	embed            bool
	forceTranscribe  bool
	saveProjectPath  string
	loadProjectPath  string
	stylePreset      string
	primaryFont      string
	primaryColor     string
	secondaryFont    string
	secondaryColor   string
	outPath          string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run <input>",
		Short: "Transcribe, translate, and export subtitles for a video or audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, ctx, args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.to, "to", "", "Target language code to translate into")
	flags.StringVar(&f.from, "from", "", "Force the source language code instead of auto-detecting")
	flags.BoolVarP(&f.sentenceAware, "sentence-aware", "s", true, "Group fragmented segments into sentences before translating")
	flags.BoolVarP(&f.proofread, "proofread", "p", false, "Run a second LLM proofreading pass after translation")
	flags.BoolVar(&f.proofreadOnly, "proofread-only", false, "Proofread an already-translated --load-project without retranslating")
	flags.BoolVar(&f.noTranslate, "no-translate", false, "Transcribe only; skip translation even if --to is set")
	flags.BoolVar(&f.bilingual, "bilingual", false, "Export both source and translated text per subtitle")
	flags.BoolVar(&f.embed, "embed", false, "Mux the exported subtitle into a copy of the input video")
	flags.BoolVar(&f.forceTranscribe, "force-transcribe", false, "Skip the transcription cache even on a matching entry")
	flags.StringVar(&f.saveProjectPath, "save-project", "", "Write the finished project state to this path")
	flags.StringVar(&f.loadProjectPath, "load-project", "", "Resume from a previously saved project instead of transcribing")
	flags.StringVar(&f.stylePreset, "style-preset", "", "Subtitle style preset name")
	flags.StringVar(&f.primaryFont, "primary-font", "", "Override the primary subtitle font")
	flags.StringVar(&f.primaryColor, "primary-color", "", "Override the primary subtitle color")
	flags.StringVar(&f.secondaryFont, "secondary-font", "", "Override the secondary (bilingual) subtitle font")
	flags.StringVar(&f.secondaryColor, "secondary-color", "", "Override the secondary (bilingual) subtitle color")
	flags.StringVarP(&f.outPath, "output", "o", "", "Output subtitle (or, with --embed, video) path")

	return cmd
}

func runRun(cmd *cobra.Command, ctx *commandContext, input string, f runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("sentence-aware") {
		f.sentenceAware = cfg.Translation.SentenceAware
	}

	var project *subtitle.Project

	if f.loadProjectPath != "" {
		project, err = subtitle.LoadProject(f.loadProjectPath)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}
	}

	eng, err := ctx.engine()
	if err != nil {
		return err
	}

	wantTranslate := !f.noTranslate && !f.proofreadOnly && (f.to != "" || cfg.Translation.Enabled)
	wantProofread := f.proofread || f.proofreadOnly

	targetLang := f.to
	if targetLang == "" {
		targetLang = cfg.Translation.TargetLang
	}
	sourceLang := f.from
	if sourceLang == "" {
		sourceLang = cfg.Whisper.SourceLang
	}

	translateOpts := buildTranslateOptions(f, sourceLang, targetLang)

	if project == nil {
		ffmpeg := ctx.ffmpegBinary()
		runOpts := pipeline.RunOptions{
			Transcribe: pipeline.TranscribeOptions{
				SourceLang:         sourceLang,
				RecognizerProvider: cfg.Whisper.Provider,
				RecognizerModel:    cfg.Whisper.LocalModel,
				ForceTranscribe:    f.forceTranscribe,
				FFmpegBinary:       ffmpeg,
				FFprobeBinary:      ctx.ffprobeBinary(ffmpeg),
				ExtractAudioTimeout: time.Duration(cfg.Advanced.ExtractAudioTimeoutSeconds) * time.Second,
				RecognizerTimeout:   time.Duration(cfg.Advanced.RecognizerTimeoutSeconds) * time.Second,
			},
			Progress: cliProgress(cmd),
		}
		if wantTranslate {
			runOpts.Translate = &pipeline.TranslateOptions{Options: translateOpts}
		}
		if wantProofread {
			opts := buildProofreadOptions(cfg)
			runOpts.Proofread = &opts
		}

		project, err = eng.Run(cmd.Context(), input, runOpts)
		if err != nil {
			return err
		}
	} else if wantProofread {
		opts := buildProofreadOptions(cfg)
		if !f.proofreadOnly {
			if project, err = eng.Translate(cmd.Context(), project, pipeline.TranslateOptions{Options: translateOpts}, cliProgress(cmd)); err != nil {
				return err
			}
		}
		if project, err = eng.Proofread(cmd.Context(), project, opts, cliProgress(cmd)); err != nil {
			return err
		}
	} else if wantTranslate {
		if project, err = eng.Translate(cmd.Context(), project, pipeline.TranslateOptions{Options: translateOpts}, cliProgress(cmd)); err != nil {
			return err
		}
	}

	if f.saveProjectPath != "" {
		if err := subtitle.SaveProject(project, f.saveProjectPath); err != nil {
			return fmt.Errorf("save project: %w", err)
		}
	}

	exportOpts := pipeline.ExportOptions{
		Format:        cfg.Output.Format,
		Bilingual:     f.bilingual || cfg.Output.Bilingual,
		StyleOverride: mergeStyleOverride(cfg, f),
	}

	out := resolveOutputPath(f.outPath, input, f.embed)

	if f.embed || cfg.Output.Embed {
		written, err := eng.ExportVideo(cmd.Context(), project, input, out, pipeline.ExportVideoOptions{
			Mode:                pipeline.MuxSoft,
			FFmpegBinary:        ctx.ffmpegBinary(),
			ExtractAudioTimeout: time.Duration(cfg.Advanced.ExtractAudioTimeoutSeconds) * time.Second,
			SubtitleOptions:     exportOpts,
		})
		if err != nil {
			return fmt.Errorf("export video: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", written)
		return nil
	}

	written, err := eng.Export(project, out, exportOpts)
	if err != nil {
		return fmt.Errorf("export subtitle: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", written)
	return nil
}

// buildTranslateOptions resolves translator.Options from defaults, layering
// --sentence-aware's grouping behavior on top. SentenceAware false disables
// multi-segment grouping entirely: each transcribed segment becomes its own
// translation unit.
func buildTranslateOptions(f runFlags, sourceLang, targetLang string) translator.Options {
	opts := translator.DefaultOptions()
	opts.SourceLangCode = sourceLang
	opts.TargetLangCode = targetLang
	if !f.sentenceAware {
		opts.GroupOptions = translator.GroupOptions{MaxGapSec: 0, MaxGroupSize: 1, MaxChars: 0}
	}
	return opts
}

func buildProofreadOptions(cfg *config.Config) pipeline.ProofreadOptions {
	opts := proofreader.DefaultOptions()
	if cfg.Translation.ProofreadWindowSize > 0 {
		opts.WindowSize = cfg.Translation.ProofreadWindowSize
	}
	if cfg.Translation.ProofreadContextChars > 0 {
		opts.ContextChars = cfg.Translation.ProofreadContextChars
	}
	return pipeline.ProofreadOptions{Options: opts}
}

func mergeStyleOverride(cfg *config.Config, f runFlags) *styles.Override {
	override := cfg.StyleOverride()
	if f.stylePreset != "" {
		override.Preset = f.stylePreset
	}
	if f.primaryFont != "" || f.primaryColor != "" {
		if override.Primary == nil {
			override.Primary = &styles.FontStyleOverride{}
		}
		if f.primaryFont != "" {
			override.Primary.Font = &f.primaryFont
		}
		if f.primaryColor != "" {
			override.Primary.Color = &f.primaryColor
		}
	}
	if f.secondaryFont != "" || f.secondaryColor != "" {
		if override.Secondary == nil {
			override.Secondary = &styles.FontStyleOverride{}
		}
		if f.secondaryFont != "" {
			override.Secondary.Font = &f.secondaryFont
		}
		if f.secondaryColor != "" {
			override.Secondary.Color = &f.secondaryColor
		}
	}
	return &override
}

func resolveOutputPath(explicit, input string, embed bool) string {
	if explicit != "" {
		return explicit
	}
	ext := ".srt"
	if embed {
		ext = filepath.Ext(input)
		if ext == "" {
			ext = ".mkv"
		}
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return base + ".subgen" + ext
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ext
}

// cliProgress renders stage progress to stderr as simple "stage: n/total"
// lines; subgen has no interactive TUI, unlike the component download
// progress bars install/update render.
func cliProgress(cmd *cobra.Command) pipeline.ProgressFunc {
	return func(stage string, current, total int) {
		if total <= 0 {
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "\r%s: %d/%d", stage, current, total)
		if current >= total {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
	}
}
