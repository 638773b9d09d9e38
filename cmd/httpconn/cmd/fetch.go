package cmd

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/frankli0324/go-httpconn/internal"
	"github.com/frankli0324/go-httpconn/internal/config"
	"github.com/frankli0324/go-httpconn/internal/model"
	"github.com/frankli0324/go-httpconn/internal/trust"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url|host[:port][/path]>",
	Short: "Send one request and print the response",
	Long: `Send one request over a fresh connection and print the response.

Without a scheme the target is fetched over TLS, unless --plain is given.

Examples:
  httpconn fetch httpbin.org/get
  httpconn fetch http://localhost:8080/health
  httpconn fetch httpbin.org/post -X post -d '{"a":1}' -H 'Content-Type: application/json'
  httpconn fetch httpbin.org/json --extract slideshow.title`,
	Args: cobra.ExactArgs(1),
	RunE: fetchCommand,
}

var (
	plainFlag     bool
	methodFlag    string
	headerFlags   []string
	dataFlag      string
	caFileFlag    string
	timeoutFlag   time.Duration
	configFlag    string
	extractFlag   string
	requestIDFlag bool
	failFlag      bool
	verboseFlag   bool
	noColorFlag   bool
)

func init() {
	fetchCmd.Flags().BoolVar(&plainFlag, "plain", false, "Use a plain TCP connection instead of TLS")
	fetchCmd.Flags().StringVarP(&methodFlag, "method", "X", "get", "Request method")
	fetchCmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, "Request header as 'Name: value', repeatable")
	fetchCmd.Flags().StringVarP(&dataFlag, "data", "d", "", "Request body, @file reads it from a file")
	fetchCmd.Flags().StringVar(&caFileFlag, "ca-file", getEnvString("HTTPCONN_CA_FILE", ""), "PEM bundle of extra trusted roots (env: HTTPCONN_CA_FILE)")
	fetchCmd.Flags().DurationVar(&timeoutFlag, "timeout", internal.DefaultTimeout, "Timeout of each connection step")
	fetchCmd.Flags().StringVar(&configFlag, "config", getEnvString("HTTPCONN_CONFIG", ""), "Path to a .toml or .yaml config file (env: HTTPCONN_CONFIG)")
	fetchCmd.Flags().StringVar(&extractFlag, "extract", "", "Print only the value at this JSON path of the body")
	fetchCmd.Flags().BoolVar(&requestIDFlag, "request-id", false, "Send a random X-Request-Id header")
	fetchCmd.Flags().BoolVar(&failFlag, "fail", false, "Exit non-zero on 4xx and 5xx responses")
	fetchCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log every connection step to stderr")
	fetchCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("HTTPCONN_NO_COLOR", false), "Disable colored output (env: HTTPCONN_NO_COLOR)")
}

func fetchCommand(cmd *cobra.Command, args []string) error {
	target, secure, err := parseTarget(args[0], plainFlag)
	if err != nil {
		return withCode(ExitUsageError, err)
	}

	level := slog.LevelWarn
	if verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	opts := []internal.Option{internal.WithLogger(logger)}
	var cfg *config.Config
	if configFlag != "" {
		if cfg, err = config.Load(configFlag, logger); err != nil {
			return withCode(ExitConfigError, err)
		}
		opts = append(opts, cfg.Options()...)
	}
	if cmd.Flags().Changed("timeout") || cfg == nil || cfg.Timeout == 0 {
		opts = append(opts, internal.WithTimeout(timeoutFlag))
	}
	if caFileFlag != "" {
		opts = append(opts, internal.WithTrust(&trust.Config{CAFile: caFileFlag}))
	}

	var c internal.Conn
	if secure {
		c = internal.NewSecure(target, opts...)
	} else {
		c = internal.NewPlain(target, opts...)
	}
	defer c.Close()

	if err := buildRequest(c, cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	resp, err := exchange(ctx, c)
	if err != nil {
		return classify(err)
	}
	if sc, ok := c.(*internal.SecureConn); ok && verboseFlag {
		if state, ok := sc.ConnectionState(); ok {
			logger.Debug("tls session",
				"version", tls.VersionName(state.Version),
				"cipher", tls.CipherSuiteName(state.CipherSuite),
				"sni", state.ServerName)
		}
	}

	if extractFlag != "" {
		res := gjson.GetBytes(resp.Body, extractFlag)
		if !res.Exists() {
			return withCode(ExitFailure, fmt.Errorf("path %q not found in response body", extractFlag))
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.String())
	} else {
		render(cmd.OutOrStdout(), resp, noColorFlag)
	}

	if failFlag && resp.StatusCode >= 400 {
		return withCode(ExitFailure, fmt.Errorf("server answered %s", resp.Status))
	}
	return nil
}

// buildRequest applies config file headers first, flags override them.
func buildRequest(c internal.Conn, cfg *config.Config) error {
	if err := c.SetMethod(methodFlag); err != nil {
		return withCode(ExitUsageError, err)
	}
	if cfg != nil {
		for _, name := range cfg.HeaderNames() {
			if err := c.SetHeader(name, cfg.Headers[name]); err != nil {
				return withCode(ExitUsageError, err)
			}
		}
	}
	for _, h := range headerFlags {
		name, value, err := parseHeader(h)
		if err != nil {
			return withCode(ExitUsageError, err)
		}
		if err := c.SetHeader(name, value); err != nil {
			return withCode(ExitUsageError, err)
		}
	}
	if requestIDFlag {
		if err := c.SetHeader("X-Request-Id", uuid.New().String()); err != nil {
			return withCode(ExitUsageError, err)
		}
	}
	if dataFlag != "" {
		body, err := readData(dataFlag)
		if err != nil {
			return withCode(ExitUsageError, err)
		}
		if err := c.SetBody(body); err != nil {
			return withCode(ExitUsageError, err)
		}
	}
	return nil
}

func exchange(ctx context.Context, c internal.Conn) (*model.Response, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	if err := c.Write(ctx); err != nil {
		return nil, err
	}
	return c.Read(ctx)
}

// parseTarget accepts a full URL or host[:port][/path], which defaults to
// https unless plain is set.
func parseTarget(raw string, plain bool) (t model.Target, secure bool, err error) {
	if !strings.Contains(raw, "://") {
		if plain {
			raw = "http://" + raw
		} else {
			raw = "https://" + raw
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return t, false, err
	}
	switch u.Scheme {
	case "https":
		secure = !plain
	case "http":
	default:
		return t, false, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return t, false, fmt.Errorf("missing host in %q", raw)
	}
	t.Host, t.Port = u.Hostname(), u.Port()
	if u.Path != "" || u.RawQuery != "" {
		t.Path = u.RequestURI()
	}
	return t, secure, nil
}

func parseHeader(h string) (name, value string, err error) {
	name, value, ok := strings.Cut(h, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q, expected 'Name: value'", h)
	}
	return name, strings.TrimSpace(value), nil
}

func readData(d string) ([]byte, error) {
	if path, ok := strings.CutPrefix(d, "@"); ok {
		return os.ReadFile(path)
	}
	return []byte(d), nil
}

func render(w io.Writer, resp *model.Response, noColor bool) {
	status := statusColor(resp.StatusCode)
	if noColor {
		status.DisableColor()
	}
	fmt.Fprintln(w, status.Sprint(resp.Proto+" "+resp.Status))
	bold := color.New(color.Bold)
	if noColor {
		bold.DisableColor()
	}
	for _, name := range slices.Sorted(maps.Keys(resp.Header)) {
		for _, v := range resp.Header[name] {
			fmt.Fprintf(w, "%s: %s\n", bold.Sprint(name), v)
		}
	}
	fmt.Fprintln(w)
	w.Write(resp.Body)
	if len(resp.Body) > 0 && resp.Body[len(resp.Body)-1] != '\n' {
		fmt.Fprintln(w)
	}
}

func statusColor(code int) *color.Color {
	switch {
	case code >= 500:
		return color.New(color.FgRed, color.Bold)
	case code >= 400:
		return color.New(color.FgYellow, color.Bold)
	case code >= 300:
		return color.New(color.FgCyan, color.Bold)
	}
	return color.New(color.FgGreen, color.Bold)
}
