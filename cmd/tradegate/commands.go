package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"tradegate/pkg/core"
	"tradegate/pkg/exchange"
)

const envPrefix = "TRADEGATE"

// errResult reports that the operation ran and its error was already printed.
var errResult = errors.New("operation failed")

type root struct {
	configPath string
	venue      string
	host       string
	key        string
	secret     string
	passphrase string
	timeout    time.Duration
	insecure   bool
	logLevel   string
	logFile    string

	stdout io.Writer
	stderr io.Writer

	// extra is appended to the adapter options; tests inject a fetcher here.
	extra []exchange.ClientOption
}

func newRootCommand(stdout, stderr io.Writer, extra ...exchange.ClientOption) *ffcli.Command {
	r := &root{stdout: stdout, stderr: stderr, extra: extra}

	fs := flag.NewFlagSet("tradegate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&r.configPath, "config", "", "YAML config file (optional)")
	fs.StringVar(&r.venue, "exchange", "", "venue: "+strings.Join(exchange.Names(), ", "))
	fs.StringVar(&r.host, "host", "", "REST base URL (defaults to the venue production host)")
	fs.StringVar(&r.key, "key", "", "API key")
	fs.StringVar(&r.secret, "secret", "", "API secret")
	fs.StringVar(&r.passphrase, "passphrase", "", "API passphrase (okex)")
	fs.DurationVar(&r.timeout, "timeout", 0, "per-request timeout")
	fs.BoolVar(&r.insecure, "insecure", false, "skip TLS certificate verification")
	fs.StringVar(&r.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&r.logFile, "log-file", "", "write logs to this file with rotation instead of stderr")

	return &ffcli.Command{
		ShortUsage: "tradegate [flags] <subcommand> [flags]",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			r.accountCommand(),
			r.bookCommand(),
			r.placeCommand(),
			r.cancelCommand(),
			r.cancelBatchCommand(),
			r.statusCommand(),
			r.openCommand(),
		},
	}
}

func (r *root) subcommand(name, usage, help string, fs *flag.FlagSet, run func(context.Context, exchange.Exchange) core.Result) *ffcli.Command {
	fs.SetOutput(r.stderr)
	return &ffcli.Command{
		Name:       name,
		ShortUsage: "tradegate " + name + " " + usage,
		ShortHelp:  help,
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec: func(ctx context.Context, _ []string) error {
			return r.run(ctx, run)
		},
	}
}

func (r *root) accountCommand() *ffcli.Command {
	fs := flag.NewFlagSet("account", flag.ContinueOnError)
	return r.subcommand("account", "", "show account balances", fs, func(ctx context.Context, ex exchange.Exchange) core.Result {
		return ex.GetAccountState(ctx)
	})
}

func (r *root) bookCommand() *ffcli.Command {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "instrument symbol")
	depth := fs.Int("depth", 20, "levels per side")
	return r.subcommand("book", "-symbol SYM [-depth N]", "show the order book", fs, func(ctx context.Context, ex exchange.Exchange) core.Result {
		return ex.GetOrderBook(ctx, *symbol, *depth)
	})
}

func (r *root) placeCommand() *ffcli.Command {
	fs := flag.NewFlagSet("place", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "instrument symbol")
	side := fs.String("side", "", "BUY or SELL")
	kind := fs.String("type", "LIMIT", "LIMIT or MARKET")
	price := fs.String("price", "", "limit price")
	quantity := fs.String("quantity", "", "order quantity (quote amount for okex market buys)")
	clientID := fs.String("client-id", "", "client order id")
	genID := fs.Bool("gen-client-id", false, "generate a client order id")

	return r.subcommand("place", "-symbol SYM -side SIDE -quantity Q [-type T] [-price P]", "place an order", fs, func(ctx context.Context, ex exchange.Exchange) core.Result {
		req, err := orderRequest(*symbol, *side, *kind, *price, *quantity)
		if err != nil {
			return core.Fail(err)
		}
		req.ClientOrderID = *clientID
		if req.ClientOrderID == "" && *genID {
			req.ClientOrderID = exchange.NewClientOrderID("tg")
		}
		return ex.PlaceOrder(ctx, req)
	})
}

func (r *root) cancelCommand() *ffcli.Command {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "instrument symbol")
	id := fs.String("id", "", "venue order id")
	clientID := fs.String("client-id", "", "client order id")
	return r.subcommand("cancel", "-symbol SYM (-id ID | -client-id CID)", "cancel one order", fs, func(ctx context.Context, ex exchange.Exchange) core.Result {
		return ex.CancelOrder(ctx, &exchange.CancelRequest{Symbol: *symbol, OrderID: *id, ClientOrderID: *clientID})
	})
}

func (r *root) cancelBatchCommand() *ffcli.Command {
	fs := flag.NewFlagSet("cancel-batch", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "instrument symbol")
	ids := fs.String("ids", "", "comma-separated venue order ids")
	return r.subcommand("cancel-batch", "-symbol SYM -ids ID,ID,...", "cancel several orders", fs, func(ctx context.Context, ex exchange.Exchange) core.Result {
		return ex.CancelOrders(ctx, *symbol, splitIDs(*ids))
	})
}

func (r *root) statusCommand() *ffcli.Command {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "instrument symbol")
	id := fs.String("id", "", "venue order id")
	clientID := fs.String("client-id", "", "client order id")
	return r.subcommand("status", "-symbol SYM (-id ID | -client-id CID)", "show one order", fs, func(ctx context.Context, ex exchange.Exchange) core.Result {
		return ex.GetOrderStatus(ctx, &exchange.OrderQuery{Symbol: *symbol, OrderID: *id, ClientOrderID: *clientID})
	})
}

func (r *root) openCommand() *ffcli.Command {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "instrument symbol")
	limit := fs.Int("limit", 0, "maximum orders returned (venue default when 0)")
	return r.subcommand("open", "-symbol SYM [-limit N]", "list open orders", fs, func(ctx context.Context, ex exchange.Exchange) core.Result {
		var opts []exchange.Option
		if *limit != 0 {
			opts = append(opts, exchange.WithLimit(*limit))
		}
		return ex.GetOpenOrders(ctx, *symbol, opts...)
	})
}

func (r *root) run(ctx context.Context, op func(context.Context, exchange.Exchange) core.Result) error {
	config, err := r.config()
	if err != nil {
		return err
	}

	logger, closeLog := r.logger(config.LogLevel)
	defer closeLog()

	opts := append([]exchange.ClientOption{exchange.WithLogger(logger)}, r.extra...)
	ex, err := exchange.New(config, opts...)
	if err != nil {
		return err
	}
	defer ex.Close()

	result := op(ctx, ex)
	if result.Error != nil {
		logger.Error().Err(result.Error).Str("exchange", ex.Name()).Msg("operation failed")
	}
	return printResult(r.stdout, result)
}

// config layers flags over the YAML file over the venue defaults.
func (r *root) config() (*core.Config, error) {
	var config *core.Config
	if r.configPath != "" {
		loaded, err := core.LoadConfig(r.configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else {
		if r.venue == "" {
			return nil, errors.New("missing -exchange")
		}
		config = core.DefaultConfig(r.venue)
	}
	if r.venue != "" {
		config.Exchange = r.venue
	}

	creds := core.Credentials{}
	if config.Credentials != nil {
		creds = *config.Credentials
	}
	override(&creds.Host, r.host)
	override(&creds.APIKey, r.key)
	override(&creds.SecretKey, r.secret)
	override(&creds.Passphrase, r.passphrase)
	config.Credentials = &creds

	if r.timeout > 0 {
		config.Timeout = r.timeout
	}
	if r.insecure {
		config.InsecureSkipVerify = true
	}
	override(&config.LogLevel, r.logLevel)
	return config, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (r *root) logger(level string) (zerolog.Logger, func()) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if r.logFile == "" {
		out := zerolog.ConsoleWriter{Out: r.stderr, TimeFormat: time.RFC3339}
		return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), func() {}
	}

	file := &lumberjack.Logger{
		Filename:   r.logFile,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}
	return zerolog.New(file).Level(lvl).With().Timestamp().Logger(), func() { file.Close() }
}

func orderRequest(symbol, side, kind, price, quantity string) (*exchange.OrderRequest, error) {
	s, err := core.ParseOrderSide(side)
	if err != nil {
		return nil, err
	}
	t, err := core.ParseOrderType(kind)
	if err != nil {
		return nil, err
	}
	q, err := parseDecimal("quantity", quantity)
	if err != nil {
		return nil, err
	}

	req := &exchange.OrderRequest{Symbol: symbol, Side: s, Type: t, Quantity: *q}
	if price != "" {
		if req.Price, err = parseDecimal("price", price); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func parseDecimal(name, s string) (*apd.Decimal, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: missing -%s", core.ErrInvalidParams, name)
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %w", core.ErrInvalidParams, name, s, err)
	}
	return d, nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// printResult writes the success payload, or an error object, as indented JSON.
func printResult(w io.Writer, result core.Result) error {
	out := result.Success
	if result.Error != nil {
		failure := map[string]any{"error": result.Error.Error()}
		var exErr *core.ExchangeError
		if errors.As(result.Error, &exErr) {
			failure["detail"] = exErr
		}
		out = failure
	}

	data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return err
	}
	if result.Error != nil {
		return errResult
	}
	return nil
}
