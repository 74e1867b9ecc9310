package pipeline

import (
	"context"
	"fmt"
	"time"

	"subgen/internal/proofreader"
	"subgen/internal/subgenerr"
	"subgen/internal/subtitle"
	"subgen/internal/translator"
)

// Translate runs the sentence-aware translator over project's Segments in
// place and returns project. opts.Options.SourceLangCode/TargetLangCode
// should already reflect any language re-read performed after a cache hit
// (see Transcribe's caching contract); Translate itself does not infer a
// source language from project.Metadata.
func (e *Engine) Translate(ctx context.Context, project *subtitle.Project, opts TranslateOptions, progress ProgressFunc) (*subtitle.Project, error) {
	opts = opts.clone()
	if progress == nil {
		progress = noopProgress
	}
	if !translator.ValidateLanguageCode(opts.TargetLangCode) {
		return project, subgenerr.Wrap(subgenerr.ErrBadInput, "", "translate",
			fmt.Sprintf("invalid target language code %q", opts.TargetLangCode), nil)
	}
	if code := opts.SourceLangCode; code != "" && !translator.ValidateLanguageCode(code) {
		return project, subgenerr.Wrap(subgenerr.ErrBadInput, "", "translate",
			fmt.Sprintf("invalid source language code %q", code), nil)
	}
	if err := e.translateProject(ctx, project, opts, progress); err != nil {
		return project, err
	}
	return project, nil
}

func (e *Engine) translateProject(ctx context.Context, project *subtitle.Project, opts TranslateOptions, progress ProgressFunc) error {
	if e.llmClient == nil {
		return subgenerr.Wrap(subgenerr.ErrMissingComponent, "", "translate", "no LLM client configured", nil)
	}

	translatorOpts := opts.Options
	if translatorOpts.SourceLangName == "" {
		translatorOpts.SourceLangName = languageName(translatorOpts.SourceLangCode)
	}
	if translatorOpts.TargetLangName == "" {
		translatorOpts.TargetLangName = languageName(translatorOpts.TargetLangCode)
	}

	t := translator.New(e.llmClient, translatorOpts, e.log)
	segments, err := t.Translate(ctx, project.Segments, func(completed, total int) {
		progress(StageTranslating, completed, total)
	})
	if err != nil {
		return err
	}

	project.Segments = segments
	project.Metadata.TargetLang = translatorOpts.TargetLangCode
	project.Metadata.LLMProvider = e.llmClient.Name()
	project.Metadata.LLMModel = e.llmClient.Model()
	project.State.IsTranslated = true
	project.Touch(time.Now().UTC())
	return nil
}

// Proofread runs a second LLM pass over project's already-translated
// Segments in place and returns project.
func (e *Engine) Proofread(ctx context.Context, project *subtitle.Project, opts ProofreadOptions, progress ProgressFunc) (*subtitle.Project, error) {
	opts = opts.clone()
	if progress == nil {
		progress = noopProgress
	}
	if err := e.proofreadProject(ctx, project, opts, progress); err != nil {
		return project, err
	}
	return project, nil
}

func (e *Engine) proofreadProject(ctx context.Context, project *subtitle.Project, opts ProofreadOptions, progress ProgressFunc) error {
	if e.llmClient == nil {
		return subgenerr.Wrap(subgenerr.ErrMissingComponent, "", "proofread", "no LLM client configured", nil)
	}
	if !project.State.IsTranslated {
		return subgenerr.Wrap(subgenerr.ErrBadInput, "", "proofread", "project has no translation to proofread", nil)
	}

	proofreaderOpts := opts.Options
	if proofreaderOpts.SourceLangName == "" {
		proofreaderOpts.SourceLangName = languageName(project.Metadata.SourceLang)
	}
	if proofreaderOpts.TargetLangName == "" {
		proofreaderOpts.TargetLangName = languageName(project.Metadata.TargetLang)
	}

	pr := proofreader.New(e.llmClient, proofreaderOpts, e.log)
	if err := pr.Proofread(ctx, project, func(completed, total int) {
		progress(StageProofreading, completed, total)
	}); err != nil {
		return err
	}
	project.Touch(time.Now().UTC())
	return nil
}
