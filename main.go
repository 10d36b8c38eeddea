package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	jsoniter "github.com/json-iterator/go"
	"github.com/mcncl/marshalkit/internal/analyzer"
	"github.com/mcncl/marshalkit/internal/config"
	"github.com/mcncl/marshalkit/internal/errors"
	"github.com/mcncl/marshalkit/internal/formatter"
	"github.com/mcncl/marshalkit/internal/logging"
	"github.com/mcncl/marshalkit/internal/marshalling"
	"github.com/mcncl/marshalkit/internal/models"
	"github.com/mcncl/marshalkit/internal/parser"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Version information
const (
	Version = "0.1.0"
)

// IOFlags are shared by every command that reads and writes a document.
type IOFlags struct {
	Input  string `help:"Path to input JSON or YAML file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	From   string `help:"Format of stdin input (json or yaml). Files are detected by extension." enum:"json,yaml" default:"json"`
}

// WrapCmd wraps a document under a root tag.
type WrapCmd struct {
	IOFlags `embed:""`
	Alias   string  `help:"Root tag to wrap the document under." short:"a" required:""`
	To      *string `help:"Output format (json or yaml). Defaults to the configured format." short:"t" enum:"json,yaml"`
}

// UnwrapCmd prints the payload of an enveloped document.
type UnwrapCmd struct {
	IOFlags `embed:""`
	Strict  bool `help:"Fail when the document is not an envelope." short:"s"`
}

// InspectCmd prints the shape of a document.
type InspectCmd struct {
	IOFlags `embed:""`
}

// ConvertCmd re-encodes a document in another format.
type ConvertCmd struct {
	IOFlags `embed:""`
	To      string `help:"Output format (json or yaml)." short:"t" enum:"json,yaml" default:"yaml"`
}

// CLI defines the command-line interface
var CLI struct {
	Config   string           `help:"Path to a config file. Defaults to the nearest .marshalkit.yml." short:"c" type:"path"`
	LogLevel string           `help:"Log level (debug, info, warn, error)." name:"log-level"`
	Debug    bool             `help:"Enable debug logging." short:"d"`
	Version  kong.VersionFlag `help:"Show version information." short:"v"`

	Wrap    WrapCmd    `cmd:"" help:"Wrap a document under a root tag, e.g. {\"car\": {...}}."`
	Unwrap  UnwrapCmd  `cmd:"" help:"Print the payload of an enveloped document."`
	Inspect InspectCmd `cmd:"" help:"Describe the shape of a document and whether it is an envelope."`
	Convert ConvertCmd `cmd:"" help:"Re-encode a JSON or YAML document."`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *zap.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func main() {
	app := kong.Must(&CLI,
		kong.Name("marshalkit"),
		kong.Description("A tool to wrap, unwrap and inspect enveloped JSON documents"),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("marshalkit version %s", Version)},
	)

	kctx, err := app.Parse(os.Args[1:])
	app.FatalIfErrorf(err)

	ctx, err := newContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}
	defer func() { _ = ctx.Logger.Sync() }()

	if err := kctx.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: marshalkit --help\n")
		_ = ctx.Logger.Sync()
		os.Exit(1)
	}
}

// newContext loads configuration and builds the logger from the global flags.
func newContext() (*Context, error) {
	cfg, err := config.LoadConfigWithCLI(CLI.Config, CLI.LogLevel, CLI.Debug)
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), err)
	}

	logger, _, err := logging.New(cfg.LogLevel())
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), err)
	}

	return &Context{
		Debug:  cfg.Dev.Debug,
		Config: cfg,
		Logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// Run wraps the input document under the alias.
func (c *WrapCmd) Run(ctx *Context) error {
	doc, err := parseInput(ctx, c.IOFlags)
	if err != nil {
		return err
	}

	to := ctx.Config.Format
	if c.To != nil {
		to = *c.To
	}
	format, err := models.ParseFormat(to)
	if err != nil {
		return errors.NewConfigError(err.Error(), errors.ErrUnsupportedFormat)
	}

	var value any
	switch format {
	case models.FormatJSON:
		value = jsoniter.RawMessage(doc.Raw)
	case models.FormatYAML:
		node, err := toYAMLNode(doc)
		if err != nil {
			return err
		}
		value = node
	default:
		// XML needs a typed value, so it is only available through the
		// marshalling package.
		return errors.NewConfigError(fmt.Sprintf("the CLI cannot wrap documents as %s", format), errors.ErrUnsupportedFormat)
	}

	m, err := marshalling.New(format,
		marshalling.WithConfig(ctx.Config),
		marshalling.WithLogger(ctx.Logger),
	)
	if err != nil {
		return err
	}

	out, err := m.Marshal(value, c.Alias)
	if err != nil {
		return err
	}
	ctx.Logger.Debug("wrapped document", zap.String("alias", c.Alias), zap.String("format", string(format)))

	if format == models.FormatJSON {
		return writeJSON(ctx, c.Output, []byte(out))
	}
	return writeOutput(ctx, c.Output, []byte(out))
}

// Run prints the payload of an enveloped document.
func (c *UnwrapCmd) Run(ctx *Context) error {
	doc, err := parseInput(ctx, c.IOFlags)
	if err != nil {
		return err
	}

	payload, key, err := analyzer.NewAnalyzerWithConfig(ctx.Config).Unwrap(doc)
	if err != nil {
		return err
	}
	if key == "" {
		if c.Strict {
			return errors.NewAnalysisError("document is not an envelope", nil)
		}
		ctx.Logger.Debug("document is not an envelope, printing it unchanged")
	} else {
		ctx.Logger.Debug("unwrapped document", zap.String("key", key), zap.Stringer("payload_kind", payload.Kind))
	}

	return writeJSON(ctx, c.Output, payload.Raw)
}

// Run prints the analysis of a document as JSON.
func (c *InspectCmd) Run(ctx *Context) error {
	doc, err := parseInput(ctx, c.IOFlags)
	if err != nil {
		return err
	}

	analysis, err := analyzer.NewAnalyzerWithConfig(ctx.Config).Analyze(doc)
	if err != nil {
		return err
	}

	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(analysis)
	if err != nil {
		return errors.NewOutputError("failed to encode analysis", err)
	}
	return writeJSON(ctx, c.Output, out)
}

// Run re-encodes a document as JSON or YAML.
func (c *ConvertCmd) Run(ctx *Context) error {
	doc, err := parseInput(ctx, c.IOFlags)
	if err != nil {
		return err
	}

	if c.To == string(models.FormatJSON) {
		return writeJSON(ctx, c.Output, doc.Raw)
	}

	node, err := toYAMLNode(doc)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return errors.NewFormatError("failed to encode YAML", err)
	}
	if err := enc.Close(); err != nil {
		return errors.NewFormatError("failed to encode YAML", err)
	}
	return writeOutput(ctx, c.Output, buf.Bytes())
}

// parseInput reads the document from a file or stdin
func parseInput(ctx *Context, flags IOFlags) (models.Document, error) {
	if flags.Input != "" {
		return parser.ParseFile(flags.Input)
	}

	if f, ok := ctx.Stdin.(*os.File); ok {
		stdinInfo, err := f.Stat()
		if err != nil {
			return models.Document{}, errors.NewInputError("failed to access stdin", err)
		}
		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			return models.Document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	data, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read from stdin", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Document{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	if flags.From == string(models.FormatYAML) {
		return parser.ParseYAML(data)
	}
	return parser.ParseString(string(data))
}

// toYAMLNode parses a JSON document as YAML and switches it to block style.
func toYAMLNode(doc models.Document) (*yaml.Node, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(doc.Raw, &node); err != nil {
		return nil, errors.NewParsingError("failed to read document as YAML", err)
	}
	blockStyle(&node)
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return node.Content[0], nil
	}
	return &node, nil
}

// blockStyle drops flow and quoting styles, keeping quotes on strings that
// would otherwise read back as another type.
func blockStyle(n *yaml.Node) {
	if n.Kind != yaml.ScalarNode || plainString(n.Value) {
		n.Style = 0
	}
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func plainString(s string) bool {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return false
	}
	str, ok := v.(string)
	return ok && str == s
}

// writeJSON formats a JSON document with the configured indent and writes it
func writeJSON(ctx *Context, path string, data []byte) error {
	formatted, err := formatter.NewFormatter(ctx.Config.Output.Indent).Format(data)
	if err != nil {
		return errors.NewFormatError("failed to format JSON output", err)
	}
	return writeOutput(ctx, path, formatted)
}

// writeOutput writes data to file or stdout
func writeOutput(ctx *Context, path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(ctx.Stderr, "Output written to %s\n", path)
		return nil
	}

	if _, err := fmt.Fprintln(ctx.Stdout, strings.TrimRight(string(data), "\n")); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
