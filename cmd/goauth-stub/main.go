// Command goauth-stub runs the in-memory authentication backend on a local
// port so goauth-client (or any Feathers client) can be exercised without the
// real service.
//
// Run:
//
//	go run ./cmd/goauth-stub -addr :3030 -seed alice@example.com:correct-horse
//
// Verification, reset and magic-link tokens are logged at debug level instead
// of being emailed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goAuthClient/internal/stubserver"
	"github.com/MrEthical07/goAuthClient/logging"
)

func main() {
	var (
		addr       = flag.String("addr", ":3030", "listen address")
		autoVerify = flag.Bool("auto-verify", false, "mark new identities verified on creation")
		secret     = flag.String("secret", "", "HS256 signing secret; random when empty")
		tokenTTL   = flag.Duration("token-ttl", time.Hour, "access token lifetime")
		callback   = flag.String("oauth-callback", "http://localhost:8080/oauth/callback", "OAuth redirect target")
		seed       = flag.String("seed", "", "comma-separated email:password users to create verified")
		logLevel   = flag.String("log-level", "debug", "debug, info, warn or error")
		redisAddr  = flag.String("redis-addr", "", "redis address for login throttling; disabled when empty")
		maxLogins  = flag.Int("max-login-attempts", 5, "failed password logins allowed per email and window")
		cooldown   = flag.Duration("login-cooldown", 15*time.Minute, "login throttle window")
	)
	flag.Parse()

	logger := logging.NewSlogLogger(logging.ParseLevel(*logLevel), "text", os.Stderr)

	var rdb redis.UniversalClient
	if *redisAddr != "" {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{*redisAddr}})
		defer rdb.Close()
		logger.Info("login throttling enabled", "redis", *redisAddr, "max_attempts", *maxLogins, "window", *cooldown)
	}

	srv, err := stubserver.New(stubserver.Config{
		Secret:           []byte(*secret),
		TokenTTL:         *tokenTTL,
		AutoVerify:       *autoVerify,
		OAuthCallback:    *callback,
		Logger:           logger,
		Redis:            rdb,
		MaxLoginAttempts: *maxLogins,
		LoginCooldown:    *cooldown,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "stub init failed: %v\n", err)
		os.Exit(1)
	}

	for _, entry := range strings.Split(*seed, ",") {
		if entry = strings.TrimSpace(entry); entry == "" {
			continue
		}
		email, password, ok := strings.Cut(entry, ":")
		if !ok {
			fmt.Fprintf(os.Stderr, "invalid seed entry %q, want email:password\n", entry)
			os.Exit(2)
		}
		id, err := srv.SeedUser(email, password, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed %s failed: %v\n", email, err)
			os.Exit(1)
		}
		logger.Info("seeded user", "email", email, "user_id", id)
	}

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("stub listening", "addr", *addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "listen failed: %v\n", err)
		os.Exit(1)
	}
}
