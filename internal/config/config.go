// Package config loads prompt assembly options from a YAML file. Absent
// keys keep their defaults; present keys are validated before use.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"xtab/internal/lint"
	"xtab/internal/prompt"
	"xtab/internal/recent"
)

// File mirrors the YAML document. Pointer fields distinguish "absent"
// from zero values.
type File struct {
	MaxTokensCurrentFile     *int `yaml:"max_tokens_current_file"`
	MaxTokensRecentFiles     *int `yaml:"max_tokens_recent_files"`
	MaxTokensLanguageContext *int `yaml:"max_tokens_language_context"`
	PageSize                 *int `yaml:"page_size"`

	Strategy           *string `yaml:"strategy"`
	IncludeViewedFiles *bool   `yaml:"include_viewed_files"`
	NDocuments         *int    `yaml:"n_documents"`
	MaxFocalSpanLines  *int    `yaml:"max_focal_span_lines"`

	LineNumbers       *string `yaml:"line_numbers"`
	PreferAboveCursor *bool   `yaml:"prefer_above_cursor"`
	CursorMarker      *string `yaml:"cursor_marker"`

	CurrentFileTag     *string `yaml:"current_file_tag"`
	RecentFileTag      *string `yaml:"recent_file_tag"`
	LanguageContextTag *string `yaml:"language_context_tag"`

	Lint struct {
		TagName         *string `yaml:"tag_name"`
		Warnings        *string `yaml:"warnings"`
		ShowCode        *string `yaml:"show_code"`
		MaxLints        *int    `yaml:"max_lints"`
		MaxLineDistance *int    `yaml:"max_line_distance"`
	} `yaml:"lint"`
}

// Load reads and parses the YAML file at path.
func Load(path string) (prompt.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return prompt.Options{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse overlays the YAML document onto the defaults.
func Parse(data []byte) (prompt.Options, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return prompt.Options{}, fmt.Errorf("failed to parse config: %w", err)
	}

	opts := prompt.DefaultOptions()

	setInt(&opts.MaxTokensCurrentFile, f.MaxTokensCurrentFile)
	setInt(&opts.MaxTokensRecentFiles, f.MaxTokensRecentFiles)
	setInt(&opts.MaxTokensLanguageContext, f.MaxTokensLanguageContext)
	setInt(&opts.PageSize, f.PageSize)
	setBool(&opts.IncludeViewedFiles, f.IncludeViewedFiles)
	setInt(&opts.NDocuments, f.NDocuments)
	setInt(&opts.MaxFocalSpanLines, f.MaxFocalSpanLines)
	setBool(&opts.PreferAboveCursor, f.PreferAboveCursor)
	setString(&opts.CursorMarker, f.CursorMarker)
	setString(&opts.CurrentFileTag, f.CurrentFileTag)
	setString(&opts.RecentFileTag, f.RecentFileTag)
	setString(&opts.LanguageContextTag, f.LanguageContextTag)
	setString(&opts.Lint.TagName, f.Lint.TagName)
	setInt(&opts.Lint.MaxLints, f.Lint.MaxLints)
	setInt(&opts.Lint.MaxLineDistance, f.Lint.MaxLineDistance)

	if f.Strategy != nil {
		strategy, err := parseStrategy(*f.Strategy)
		if err != nil {
			return prompt.Options{}, err
		}
		opts.Strategy = strategy
	}
	if f.LineNumbers != nil {
		mode, err := parseLineNumbers(*f.LineNumbers)
		if err != nil {
			return prompt.Options{}, err
		}
		opts.LineNumbers = mode
	}
	if f.Lint.Warnings != nil {
		mode, err := parseWarnings(*f.Lint.Warnings)
		if err != nil {
			return prompt.Options{}, err
		}
		opts.Lint.Warnings = mode
	}
	if f.Lint.ShowCode != nil {
		mode, err := parseShowCode(*f.Lint.ShowCode)
		if err != nil {
			return prompt.Options{}, err
		}
		opts.Lint.ShowCode = mode
	}

	if err := validate(opts); err != nil {
		return prompt.Options{}, err
	}
	return opts, nil
}

func validate(opts prompt.Options) error {
	if opts.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1, got %d", opts.PageSize)
	}
	if opts.MaxTokensCurrentFile < 0 || opts.MaxTokensRecentFiles < 0 || opts.MaxTokensLanguageContext < 0 {
		return fmt.Errorf("token budgets must not be negative")
	}
	if opts.NDocuments < 0 {
		return fmt.Errorf("n_documents must not be negative, got %d", opts.NDocuments)
	}
	return nil
}

func parseStrategy(s string) (recent.Strategy, error) {
	switch s {
	case "top-to-bottom":
		return recent.TopToBottom, nil
	case "around-edit-range":
		return recent.AroundEditRange, nil
	case "proportional":
		return recent.Proportional, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

func parseLineNumbers(s string) (prompt.LineNumberMode, error) {
	switch s {
	case "none":
		return prompt.LineNumbersNone, nil
	case "with-space":
		return prompt.LineNumbersWithSpace, nil
	case "without-space":
		return prompt.LineNumbersWithoutSpace, nil
	}
	return 0, fmt.Errorf("unknown line_numbers mode %q", s)
}

func parseWarnings(s string) (lint.WarningsMode, error) {
	switch s {
	case "errors-only":
		return lint.ErrorsOnly, nil
	case "all":
		return lint.All, nil
	case "warnings-if-no-errors":
		return lint.WarningsIfNoErrors, nil
	}
	return 0, fmt.Errorf("unknown warnings mode %q", s)
}

func parseShowCode(s string) (lint.CodeMode, error) {
	switch s {
	case "none":
		return lint.NoCode, nil
	case "span":
		return lint.CodeSpan, nil
	case "span-surrounding":
		return lint.CodeSpanSurrounding, nil
	}
	return 0, fmt.Errorf("unknown show_code mode %q", s)
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
