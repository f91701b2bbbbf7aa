package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	config "github.com/hanpama/gqlvalidate/internal/config"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

func cmdPrintSchema(args []string, stdout, stderr io.Writer) error {
	outFile := ""
	cfg, err := parseConfig("print-schema", printSchemaUsage, args, stderr, func(c *config.Config, fs *flag.FlagSet) {
		c.RegisterFlags(fs)
		fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	})
	if err != nil {
		return err
	}
	sch, err := loadSchema(cfg.SchemaFiles)
	if err != nil {
		return err
	}
	sdl := schema.Render(sch)
	if outFile == "" {
		_, err := fmt.Fprint(stdout, sdl)
		return err
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}
