package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	config "github.com/hanpama/gqlvalidate/internal/config"
	executor "github.com/hanpama/gqlvalidate/internal/executor"
	grpcsvc "github.com/hanpama/gqlvalidate/internal/grpcsvc"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

func cmdCheck(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	typeName := ""
	inputFile := ""
	remote := ""
	var timeout time.Duration
	cfg, err := parseConfig("check", checkUsage, args, stderr, func(c *config.Config, fs *flag.FlagSet) {
		c.RegisterFlags(fs)
		fs.StringVar(&typeName, "type", typeName, "Input object type")
		fs.StringVar(&inputFile, "input", inputFile, "JSON file to validate")
		fs.StringVar(&remote, "remote", remote, "Validation service address")
		fs.DurationVar(&timeout, "timeout", timeout, "Remote call timeout")
	})
	if err != nil {
		return err
	}
	if typeName == "" {
		fmt.Fprint(stderr, checkUsage)
		return fmt.Errorf("-type is required")
	}

	in := stdin
	if inputFile != "" {
		fh, err := os.Open(inputFile)
		if err != nil {
			return err
		}
		defer fh.Close()
		in = fh
	}

	if remote != "" {
		var opts []grpcsvc.ClientOption
		if timeout > 0 {
			opts = append(opts, grpcsvc.WithRPCTimeout(timeout))
		}
		c, err := grpcsvc.Dial(remote, opts...)
		if err != nil {
			return err
		}
		defer c.Close()
		return checkRemote(c, typeName, in, stdout)
	}

	sch, err := loadSchema(cfg.SchemaFiles)
	if err != nil {
		return err
	}
	v, err := loadValidator(sch, cfg.RulesFile)
	if err != nil {
		return err
	}
	return check(sch, v, typeName, in, stdout)
}

// checkRemote is check against a Validation service.
func checkRemote(c *grpcsvc.Client, typeName string, in io.Reader, out io.Writer) error {
	var raw map[string]any
	if err := json.NewDecoder(in).Decode(&raw); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	res, err := c.Validate(context.Background(), typeName, raw)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if !res.Valid {
		if err := enc.Encode(map[string]any{validation.ExtensionKey: res.ValidationErrors}); err != nil {
			return err
		}
		return errInvalid
	}
	return enc.Encode(res.Value)
}

// check prints the transformed value, or {"validationErrors": [...]} and
// errInvalid when validation fails.
func check(sch *schema.Schema, v *validation.Validator, typeName string, in io.Reader, out io.Writer) error {
	if v.Shape(typeName) == nil {
		return fmt.Errorf("unknown input type %q", typeName)
	}
	var raw map[string]any
	if err := json.NewDecoder(in).Decode(&raw); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	value, err := executor.CoerceInputObject(sch, typeName, raw)
	if err != nil {
		return fmt.Errorf("coerce input: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	result, err := v.ValidateInput(context.Background(), typeName, value)
	var failure *validation.Failure
	if errors.As(err, &failure) {
		if err := enc.Encode(failure.Extensions()); err != nil {
			return err
		}
		return errInvalid
	}
	if err != nil {
		return err
	}
	return enc.Encode(result)
}
