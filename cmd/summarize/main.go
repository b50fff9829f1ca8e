// Package main provides a CLI command that summarizes a single document.
// Usage: docscribe-summarize [-file path] [-type media-type] [-provider name] [-output text|json] [-max-length N] [-min-length N]
//
// Without -file the text to summarize is read from stdin.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"docscribe/internal/config"
	"docscribe/internal/domain/entity"
	"docscribe/internal/infra/extractor"
	"docscribe/internal/infra/summarizer"
	"docscribe/internal/observability/logging"
	pkgconfig "docscribe/internal/pkg/config"
	sumUC "docscribe/internal/usecase/summarize"
)

const usage = `Usage: docscribe-summarize [-file path] [-type media-type] [-provider name] [-output text|json] [-max-length N] [-min-length N]

Examples:
  docscribe-summarize -file report.pdf
  docscribe-summarize -file export.bin -type pdf
  docscribe-summarize -file notes.docx -provider claude -output json
  cat minutes.txt | docscribe-summarize -max-length 200`

// SummaryOutput represents the JSON output format.
type SummaryOutput struct {
	Source     string `json:"source"`
	MediaType  string `json:"media_type"`
	Provider   string `json:"provider"`
	Provenance string `json:"provenance"`
	Summary    string `json:"summary"`
}

type cliOptions struct {
	file      string
	mediaType entity.MediaType
	provider  string
	output    string
	maxLength int
	minLength int
}

func main() {
	_ = godotenv.Load()

	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s\n", err, usage)
		os.Exit(2)
	}

	// stdout carries the summary, so logs go to stderr.
	logger := logging.New(os.Stderr,
		pkgconfig.LoadEnvString("LOG_FORMAT", "text"),
		pkgconfig.LoadEnvString("LOG_LEVEL", "warn"))
	slog.SetDefault(logger)

	in, err := readInput(opts.file, opts.mediaType, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.provider != "" {
		_ = os.Setenv("SUMMARIZER_TYPE", opts.provider)
	}
	sumCfg, err := config.LoadSummarizeConfig(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid summarizer configuration: %v\n", err)
		os.Exit(1)
	}
	if !sumCfg.HasAPIKey() {
		fmt.Fprintf(os.Stderr, "Warning: %s is not set; the extractive fallback will be used\n",
			config.APIKeyEnv(sumCfg.Client.Provider))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	content, err := extractor.NewDocconvExtractor(logger).Extract(ctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to extract text: %v\n", err)
		os.Exit(1)
	}

	sumOpts := summarizer.DefaultOptions().Merge(opts.overrides())
	if err := sumOpts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	client, err := summarizer.New(ctx, sumCfg.Client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create summarizer: %v\n", err)
		os.Exit(1)
	}
	svc := sumUC.NewService(client, summarizer.NewExtractive(), nil, sumCfg.Orchestrator)
	result := svc.SummarizeDocument(ctx, content, sumOpts)

	out := SummaryOutput{
		Source:     in.Source,
		MediaType:  string(in.MediaType),
		Provider:   string(sumCfg.Client.Provider),
		Provenance: string(result.Provenance),
		Summary:    result.Text,
	}
	if err := writeResult(os.Stdout, opts.output, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("docscribe-summarize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.file, "file", "", "Document to summarize (PDF, DOC, DOCX or TXT); stdin when empty")
	var mediaType string
	fs.StringVar(&mediaType, "type", "", "Media type or extension (pdf, docx, doc, txt); detected from the file name when empty")
	fs.StringVar(&opts.provider, "provider", "", "Summarizer provider; overrides SUMMARIZER_TYPE")
	fs.StringVar(&opts.output, "output", "text", "Output format: text or json")
	fs.IntVar(&opts.maxLength, "max-length", 0, "Maximum summary length in tokens (0 keeps the default)")
	fs.IntVar(&opts.minLength, "min-length", 0, "Minimum summary length in tokens (0 keeps the default)")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if fs.NArg() > 0 {
		return cliOptions{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if opts.output != "text" && opts.output != "json" {
		return cliOptions{}, fmt.Errorf("invalid output %q (must be 'text' or 'json')", opts.output)
	}
	if mediaType != "" {
		mt, err := parseMediaType(mediaType)
		if err != nil {
			return cliOptions{}, err
		}
		opts.mediaType = mt
	}
	if opts.provider != "" {
		p, err := summarizer.ParseProvider(strings.ToLower(opts.provider))
		if err != nil {
			return cliOptions{}, err
		}
		opts.provider = string(p)
	}
	if opts.maxLength < 0 || opts.minLength < 0 {
		return cliOptions{}, errors.New("lengths must not be negative")
	}
	return opts, nil
}

// overrides turns the length flags into summary option overrides. Zero means unset.
func (o cliOptions) overrides() *summarizer.Overrides {
	if o.maxLength == 0 && o.minLength == 0 {
		return nil
	}
	ov := &summarizer.Overrides{}
	if o.maxLength > 0 {
		ov.MaxLength = &o.maxLength
	}
	if o.minLength > 0 {
		ov.MinLength = &o.minLength
	}
	return ov
}

// parseMediaType accepts a full media type or a bare extension such as "pdf".
func parseMediaType(s string) (entity.MediaType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if mt := entity.ParseMediaType(s); mt.IsSupported() {
		return mt, nil
	}
	if mt := entity.MediaTypeFromFilename("x." + strings.TrimPrefix(s, ".")); mt != "" {
		return mt, nil
	}
	return "", &entity.UnsupportedFormatError{MediaType: entity.MediaType(s)}
}

// readInput loads the named file, or stdin when path is empty. An empty
// mediaType is detected from the file name; stdin defaults to plain text.
func readInput(path string, mediaType entity.MediaType, stdin io.Reader) (entity.RawInput, error) {
	if path == "" {
		if mediaType == "" {
			mediaType = entity.MediaTypePlainText
		}
		data, err := io.ReadAll(io.LimitReader(stdin, entity.MaxUploadBytes+1))
		if err != nil {
			return entity.RawInput{}, fmt.Errorf("read stdin: %w", err)
		}
		if err := entity.ValidateUpload("stdin", int64(len(data)), mediaType); err != nil {
			return entity.RawInput{}, err
		}
		return entity.RawInput{Data: data, MediaType: mediaType, Source: "stdin"}, nil
	}

	name := filepath.Base(path)
	if mediaType == "" {
		mediaType = entity.MediaTypeFromFilename(name)
	}
	if mediaType == "" {
		return entity.RawInput{}, &entity.UnsupportedFormatError{MediaType: entity.MediaType(filepath.Ext(name))}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.RawInput{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := entity.ValidateUpload(name, int64(len(data)), mediaType); err != nil {
		return entity.RawInput{}, err
	}
	return entity.RawInput{Data: data, MediaType: mediaType, Source: name}, nil
}

func writeResult(w io.Writer, format string, out SummaryOutput) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	_, err := fmt.Fprintf(w, "Summary of %s (%s, %s)\n\n%s\n", out.Source, out.Provider, out.Provenance, out.Summary)
	return err
}
