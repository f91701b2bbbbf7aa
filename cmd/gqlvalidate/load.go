package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	config "github.com/hanpama/gqlvalidate/internal/config"
	language "github.com/hanpama/gqlvalidate/internal/language"
	rules "github.com/hanpama/gqlvalidate/internal/rules"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

// parseConfig reads the environment, then args with the flags bound by
// register, then validates the result.
func parseConfig(name, usage string, args []string, stderr io.Writer, register func(*config.Config, *flag.FlagSet)) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	register(cfg, fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, usage)
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprint(stderr, usage)
		return nil, err
	}
	return cfg, nil
}

func loadSchema(files []string) (*schema.Schema, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one -schema file is required", config.ErrInvalidConfig)
	}
	sources := make([]*language.Source, 0, len(files))
	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		sources = append(sources, &language.Source{Name: path, Input: string(b)})
	}
	sch, err := schema.BuildFromSources(sources...)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return sch, nil
}

func loadValidator(sch *schema.Schema, rulesFile string) (*validation.Validator, error) {
	reg := validation.NewRegistry()
	if rulesFile != "" {
		f, err := rules.LoadFile(rulesFile)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		f.Apply(reg)
	}
	v, err := validation.New(sch, reg)
	if err != nil {
		return nil, fmt.Errorf("compile validator: %w", err)
	}
	return v, nil
}
