package config

import (
	"flag"
	"strings"
)

// stringList is a repeatable flag. The first Set replaces values that came
// from the environment.
type stringList struct {
	values *[]string
	set    bool
}

func (s *stringList) String() string {
	if s.values == nil {
		return ""
	}
	return strings.Join(*s.values, ",")
}

func (s *stringList) Set(v string) error {
	if !s.set {
		*s.values = nil
		s.set = true
	}
	*s.values = append(*s.values, v)
	return nil
}

// RegisterFlags binds the schema and rule flags shared by all commands.
// Current values act as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&stringList{values: &c.SchemaFiles}, "schema", "GraphQL SDL file. Repeatable")
	fs.StringVar(&c.RulesFile, "rules", c.RulesFile, "YAML rule file")
	fs.StringVar(&c.LogLevel, "log.level", c.LogLevel, "Log level")
}

// RegisterServeFlags binds the flags of the serve command.
func (c *Config) RegisterServeFlags(fs *flag.FlagSet) {
	c.RegisterFlags(fs)
	fs.StringVar(&c.HTTPAddr, "http.addr", c.HTTPAddr, "HTTP listen address")
	fs.StringVar(&c.GRPCAddr, "grpc.addr", c.GRPCAddr, "gRPC listen address")
	fs.DurationVar(&c.Timeout, "server.timeout", c.Timeout, "Per-request timeout")
	fs.BoolVar(&c.Pretty, "server.pretty", c.Pretty, "Pretty-print JSON responses")
	fs.Int64Var(&c.MaxBodyBytes, "server.max-body-bytes", c.MaxBodyBytes, "Request body limit")
	fs.Var(&stringList{values: &c.CORSOrigins}, "server.cors-origin", "Allowed CORS origin. Repeatable")
	fs.Var(&stringList{values: &c.MetadataHeaders}, "server.metadata-header", "Forward HTTP header to gRPC metadata. Repeatable")
	fs.BoolVar(&c.GraphiQL, "server.graphiql", c.GraphiQL, "Serve GraphiQL")
	fs.IntVar(&c.DocumentCacheSize, "server.document-cache", c.DocumentCacheSize, "Parsed document cache size")
	fs.BoolVar(&c.Introspection, "graphql.introspection", c.Introspection, "Enable GraphQL introspection")
	fs.IntVar(&c.Concurrency, "resolver.concurrency", c.Concurrency, "Max resolver groups run at once")
	fs.StringVar(&c.OTelEndpoint, "otel.endpoint", c.OTelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&c.OTelService, "otel.service", c.OTelService, "OpenTelemetry service name")
}
