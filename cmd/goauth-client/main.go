// Command goauth-client runs a single authentication flow from the shell and
// prints every dispatched action as a JSON line.
//
// Configuration starts from GOAUTH_CLIENT_* environment variables; flags
// override them. The session is restored with LoginAuto before the requested
// flow runs, so a login persisted by one invocation is reused by the next.
//
// Run:
//
//	go run ./cmd/goauth-client -api http://localhost:3030 login alice@example.com correct-horse
//	go run ./cmd/goauth-client -api http://localhost:3030 settings '{"theme":"dark"}'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/metrics/export/prometheus"
	"github.com/MrEthical07/goAuthClient/model"
	"github.com/MrEthical07/goAuthClient/session/sqlite"
)

type flowFunc func(ctx context.Context, c *goAuthClient.Client, userID string, args []string) goAuthClient.Result

type flowSpec struct {
	args  string
	nargs int
	run   flowFunc
}

var flowTable = map[string]flowSpec{
	"login-auto": {"", 0, func(ctx context.Context, c *goAuthClient.Client, _ string, _ []string) goAuthClient.Result {
		return c.LoginAuto(ctx)
	}},
	"login": {"<email> <password>", 2, func(ctx context.Context, c *goAuthClient.Client, _ string, a []string) goAuthClient.Result {
		return c.LoginUserByPassword(ctx, model.EmailLoginForm{Email: a[0], Password: a[1]})
	}},
	"login-jwt": {"<access-token>", 1, func(ctx context.Context, c *goAuthClient.Client, _ string, a []string) goAuthClient.Result {
		return c.LoginUserByJWT(ctx, a[0], "", "")
	}},
	"login-oauth": {"<provider>", 1, func(ctx context.Context, c *goAuthClient.Client, _ string, a []string) goAuthClient.Result {
		return c.LoginUserByOAuth(ctx, model.ProviderType(a[0]))
	}},
	"logout": {"", 0, func(ctx context.Context, c *goAuthClient.Client, _ string, _ []string) goAuthClient.Result {
		return c.LogoutUser(ctx)
	}},
	"register": {"<email> <password>", 2, func(ctx context.Context, c *goAuthClient.Client, _ string, a []string) goAuthClient.Result {
		return c.RegisterUserByEmail(ctx, model.EmailRegistrationForm{Email: a[0], Password: a[1]})
	}},
	"verify": {"<token>", 1, func(ctx context.Context, c *goAuthClient.Client, _ string, a []string) goAuthClient.Result {
		return c.VerifyEmail(ctx, a[0])
	}},
	"resend": {"<email>", 1, func(ctx context.Context, c *goAuthClient.Client, _ string, a []string) goAuthClient.Result {
		return c.ResendVerificationEmail(ctx, a[0])
	}},
	"forgot": {"<email>", 1, func(ctx context.Context, c *goAuthClient.Client, _ string, a []string) goAuthClient.Result {
		return c.ForgotPassword(ctx, a[0])
	}},
	"reset": {"<token> <password>", 2, func(ctx context.Context, c *goAuthClient.Client, _ string, a []string) goAuthClient.Result {
		return c.ResetPassword(ctx, a[0], a[1])
	}},
	"magic-link": {"<email-or-phone>", 1, func(ctx context.Context, c *goAuthClient.Client, _ string, a []string) goAuthClient.Result {
		return c.CreateMagicLink(ctx, a[0], goAuthClient.ChannelAuto)
	}},
	"add-password": {"<email> <password>", 2, func(ctx context.Context, c *goAuthClient.Client, uid string, a []string) goAuthClient.Result {
		return c.AddConnectionByPassword(ctx, model.EmailLoginForm{Email: a[0], Password: a[1]}, uid)
	}},
	"add-email": {"<email>", 1, func(ctx context.Context, c *goAuthClient.Client, uid string, a []string) goAuthClient.Result {
		return c.AddConnectionByEmail(ctx, a[0], uid)
	}},
	"add-sms": {"<phone>", 1, func(ctx context.Context, c *goAuthClient.Client, uid string, a []string) goAuthClient.Result {
		return c.AddConnectionBySMS(ctx, a[0], uid)
	}},
	"add-oauth": {"<provider>", 1, func(ctx context.Context, c *goAuthClient.Client, uid string, a []string) goAuthClient.Result {
		return c.AddConnectionByOAuth(ctx, model.ProviderType(a[0]), uid)
	}},
	"remove-connection": {"<identity-provider-id>", 1, func(ctx context.Context, c *goAuthClient.Client, uid string, a []string) goAuthClient.Result {
		return c.RemoveConnection(ctx, a[0], uid)
	}},
	"refresh": {"", 0, func(ctx context.Context, c *goAuthClient.Client, uid string, _ []string) goAuthClient.Result {
		return c.RefreshConnections(ctx, uid)
	}},
	"settings": {"<json-object>", 1, func(ctx context.Context, c *goAuthClient.Client, _ string, a []string) goAuthClient.Result {
		var data map[string]any
		if err := json.Unmarshal([]byte(a[0]), &data); err != nil {
			return goAuthClient.Result{Status: goAuthClient.StatusFailed, Err: fmt.Errorf("settings: %w", err)}
		}
		return c.UpdateUserSettings(ctx, settingsID(c), data)
	}},
}

func main() {
	cfg, err := goAuthClient.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	var (
		api       = flag.String("api", cfg.Transport.BaseURL, "authentication service base URL")
		storeKind = flag.String("store", "sqlite", "session store: sqlite, redis or memory")
		dbPath    = flag.String("db", "goauth-client.db", "sqlite session database path")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		profile   = flag.String("profile", cfg.Session.Profile, "session profile name")
		locale    = flag.String("locale", cfg.Locale, "message locale")
		sms       = flag.Bool("sms", cfg.MagicLink.SMSEnabled, "allow SMS magic links")
		logLevel  = flag.String("log-level", cfg.Logging.Level, "debug, info, warn or error; empty disables logging")
		metrics   = flag.Bool("metrics", false, "print client metrics in Prometheus text format to stderr")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	name, args := flag.Arg(0), flag.Args()[1:]
	spec, ok := flowTable[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown flow %q\n", name)
		usage()
		os.Exit(2)
	}
	if len(args) != spec.nargs {
		fmt.Fprintf(os.Stderr, "usage: goauth-client %s %s\n", name, spec.args)
		os.Exit(2)
	}

	cfg.Transport.BaseURL = *api
	cfg.Session.Profile = *profile
	cfg.Locale = *locale
	cfg.MagicLink.SMSEnabled = *sms
	cfg.Logging.Level = *logLevel
	cfg.Logging.Format = "text"
	cfg.Observer.DropIfFull = false

	builder := goAuthClient.New().
		WithConfig(cfg).
		WithActionSink(goAuthClient.NewJSONWriterSink(os.Stdout))

	cleanup, err := attachStore(builder, *storeKind, *dbPath, *redisAddr, *profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	client, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build client: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := client.LoginAuto(ctx)
	if name != "login-auto" {
		res = spec.run(ctx, client, client.State().AuthUser.UserID(), args)
	}
	client.Close()

	printResult(name, res, client.State())
	if *metrics {
		_, _ = prometheus.NewPrometheusExporter(client).WriteTo(os.Stderr)
	}
	if res.Status == goAuthClient.StatusFailed {
		os.Exit(1)
	}
}

func attachStore(b *goAuthClient.Builder, kind, dbPath, redisAddr, profile string) (func(), error) {
	switch kind {
	case "memory":
		return func() {}, nil
	case "sqlite":
		st, err := sqlite.Open(dbPath, profile)
		if err != nil {
			return nil, err
		}
		b.WithSessionStore(st)
		return func() { _ = st.Close() }, nil
	case "redis":
		addr := redisAddr
		if addr == "" {
			addr = os.Getenv("REDIS_ADDR")
		}
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return nil, fmt.Errorf("start miniredis: %w", err)
			}
			rc := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
			b.WithRedis(rc)
			fmt.Fprintf(os.Stderr, "using miniredis at %s\n", mr.Addr())
			return func() {
				_ = rc.Close()
				mr.Close()
			}, nil
		}
		rc := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		b.WithRedis(rc)
		return func() { _ = rc.Close() }, nil
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

// settingsID is the user's settings record ID when loaded, else the user ID.
func settingsID(c *goAuthClient.Client) string {
	st := c.State()
	if len(st.Settings) > 0 {
		var s struct {
			ID json.RawMessage `json:"id"`
		}
		if json.Unmarshal(st.Settings, &s) == nil && len(s.ID) > 0 {
			var id string
			if json.Unmarshal(s.ID, &id) == nil {
				return id
			}
			return strings.Trim(string(s.ID), `"`)
		}
	}
	return st.AuthUser.UserID()
}

func printResult(name string, res goAuthClient.Result, st goAuthClient.State) {
	fmt.Fprintf(os.Stderr, "%s: %s", name, res.Status)
	if res.Location != "" {
		fmt.Fprintf(os.Stderr, " location=%s", res.Location)
	}
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, " error=%q", res.Err.Error())
	}
	fmt.Fprintf(os.Stderr, " logged_in=%t\n", st.IsLoggedIn)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: goauth-client [flags] <flow> [args]\n\nflows:\n")
	names := make([]string, 0, len(flowTable))
	for n := range flowTable {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(os.Stderr, "  %-18s %s\n", n, flowTable[n].args)
	}
	fmt.Fprintf(os.Stderr, "\nflags:\n")
	flag.PrintDefaults()
}
