package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

const rootUsage = `gqlvalidate - validation for GraphQL input types

USAGE:
  gqlvalidate <command> [flags]

COMMANDS:
  serve            Run the GraphQL endpoint with argument validation
  check            Validate a JSON value against an input type
  print-schema     Print the loaded schema as SDL
  help             Show help for any command

Every flag can also be set with a GQLVALIDATE_* environment variable.
`

const commonUsage = `  -schema <file>                      GraphQL SDL file. Repeatable (env GQLVALIDATE_SCHEMA, comma separated)
  -rules <file>                       YAML rule file (env GQLVALIDATE_RULES)
  -log.level <level>                  debug, info, warn or error (default: info)
`

const serveUsage = `serve FLAGS:
` + commonUsage + `  -http.addr <addr>                   HTTP listen address (default: :8080)
  -grpc.addr <addr>                   gRPC listen address for the Validation service
  -server.timeout <duration>          Per-request timeout (default: 10s)
  -server.pretty                      Pretty-print JSON responses
  -server.max-body-bytes <n>          Request body limit (default: 1048576)
  -server.cors-origin <origin>        Allowed CORS origin. Repeatable
  -server.metadata-header <name>      Forward HTTP header to gRPC metadata. Repeatable
  -server.graphiql <bool>             Serve GraphiQL on GET (default: true)
  -server.document-cache <n>          Parsed document cache size (default: 256)
  -graphql.introspection <bool>       Enable GraphQL introspection (default: true)
  -resolver.concurrency <n>           Max resolver groups run at once (default: unbounded)
  -otel.endpoint <addr>               OTLP collector endpoint
  -otel.service <name>                OpenTelemetry service name (default: gqlvalidate)
`

const checkUsage = `check FLAGS:
` + commonUsage + `  -type <name>                        Input object type (required)
  -input <file>                       JSON file to validate (default: stdin)
  -remote <addr>                      Validate with a running serve -grpc.addr instead of -schema
  -timeout <duration>                 Remote call timeout (default: 3s)
  (Exits non-zero when the value is invalid)
`

const printSchemaUsage = `print-schema FLAGS:
` + commonUsage + `  -out <file>                         Write SDL to file (default: stdout)
`

// errInvalid is returned by check when validation errors were printed.
var errInvalid = errors.New("input is invalid")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "gqlvalidate:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("gqlvalidate", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs, stdout, stderr)
	case "check":
		return cmdCheck(cmdArgs, stdin, stdout, stderr)
	case "print-schema":
		return cmdPrintSchema(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "check":
		fmt.Fprint(stdout, checkUsage)
	case "print-schema":
		fmt.Fprint(stdout, printSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}
