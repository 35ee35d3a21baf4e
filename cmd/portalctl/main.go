// Command portalctl drives a staff AuthSession from the terminal. The remembered
// login lives in a file under the user's config directory, so it survives
// between invocations the same way the desktop portal's does.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/auth"
	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/observability"
	"github.com/ontimely/admin-portal/internal/persistence"
	"github.com/ontimely/admin-portal/internal/repository"
	"github.com/ontimely/admin-portal/internal/session"
)

const appDirName = "ontimely-portal"

type options struct {
	Command  string
	Email    string
	Password string
	Role     string
}

// cliFlags holds everything parsed from the command line. There is no password
// flag: argv is visible to other local users, so the password only comes from
// PORTAL_PASSWORD or stdin.
type cliFlags struct {
	options
	SessionFile string
	Timeout     time.Duration
}

func parseFlags(args []string, errOut io.Writer) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("portalctl", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&f.Command, "cmd", "whoami", "Command: login, logout, whoami, can")
	fs.StringVar(&f.Email, "email", "", "Staff email (login); the password is read from PORTAL_PASSWORD or stdin")
	fs.StringVar(&f.Role, "role", "staff", "Minimum role to check (can): staff, admin, director")
	fs.StringVar(&f.SessionFile, "session-file", "", "Session file path (default: user config dir)")
	fs.DurationVar(&f.Timeout, "timeout", 15*time.Second, "Overall timeout")
	err := fs.Parse(args)
	return f, err
}

func main() {
	flags, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), flags.Timeout)
	defer cancel()

	path := flags.SessionFile
	if path == "" {
		if path, err = session.DefaultFilePath(appDirName); err != nil {
			log.Fatalf("resolve session file: %v", err)
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pg.Close()

	var tokens session.TokenIssuer = session.LegacyTokenIssuer{}
	if cfg.Session.TokenMode == config.TokenModeJWT {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Session.TTL())
	}
	sess := session.New(session.Dependencies{
		Store:     session.NewFileStore(path),
		Directory: repository.NewStaffRepository(pg.PoolHandle()),
		Verifier:  auth.VerifierFor(cfg.Auth.PasswordScheme),
		Tokens:    tokens,
		Logger:    logger.Named("session"),
	})

	opts := flags.options
	if opts.Command == "login" {
		opts.Password = readPassword(os.Stdin)
	}

	code, err := run(ctx, sess, opts, os.Stdout)
	if err != nil {
		logger.Debug("command failed", zap.String("cmd", opts.Command), zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, sess *session.AuthSession, opts options, out io.Writer) (int, error) {
	switch opts.Command {
	case "login":
		state := sess.Login(ctx, domain.Credentials{Email: opts.Email, Password: opts.Password})
		if !state.IsAuthenticated {
			return 1, fmt.Errorf("login failed: %s", state.Error)
		}
		fmt.Fprintf(out, "logged in as %s (%s)\n", state.User.Email, state.User.Role)
		return 0, nil

	case "logout":
		sess.Logout(ctx)
		fmt.Fprintln(out, "logged out")
		return 0, nil

	case "whoami":
		state := sess.Init(ctx)
		if state.Error != "" {
			return 1, fmt.Errorf("%s", state.Error)
		}
		if !state.IsAuthenticated {
			fmt.Fprintln(out, "not logged in")
			return 1, nil
		}
		fmt.Fprintf(out, "%s <%s> role=%s\n", state.User.Name, state.User.Email, state.User.Role)
		return 0, nil

	case "can":
		role := domain.Role(opts.Role)
		if !role.Valid() {
			return 2, fmt.Errorf("unknown role %q", opts.Role)
		}
		sess.Init(ctx)
		if sess.HasRole(role) {
			fmt.Fprintf(out, "yes: %s\n", role)
			return 0, nil
		}
		fmt.Fprintf(out, "no: %s\n", role)
		return 1, nil

	default:
		return 2, fmt.Errorf("unknown command %q (available: login, logout, whoami, can)", opts.Command)
	}
}

func readPassword(in io.Reader) string {
	if pw := os.Getenv("PORTAL_PASSWORD"); pw != "" {
		return pw
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
