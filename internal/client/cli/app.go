// Package cli implements the authgate command-line client: sign in or up,
// fetch contacts with a token and generate a signing secret.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/authgate/internal/client/client"
	"github.com/dmitrijs2005/authgate/internal/client/config"
	"github.com/dmitrijs2005/authgate/internal/common"
)

// API is the part of the gateway the CLI uses.
type API interface {
	Login(ctx context.Context, name, email string, password []byte) (*client.LoginResult, error)
	Contacts(ctx context.Context, token string) (json.RawMessage, error)
	Ping(ctx context.Context) error
}

// ErrUnknownCommand is returned for an unrecognised subcommand.
var ErrUnknownCommand = errors.New("unknown command")

const usage = `usage: authgate-cli [-a url] [-timeout d] [-c file] <command> [flags]

commands:
  login    [-email E] [-name N]   sign in, or sign up if the email is new
  contacts [-token T]             fetch contacts with an access token
  secret   [-bytes N]             print a fresh signing secret
  ping                            check the server is up
`

type App struct {
	config *config.Config
	api    API
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, in io.Reader, out io.Writer) *App {
	api := client.NewHTTPClient(c.ServerURL, &http.Client{Timeout: c.Timeout})
	return &App{config: c, api: api, reader: bufio.NewReader(in), out: out}
}

// SplitArgs separates the global flags, which must come first, from the
// command and its own flags.
func SplitArgs(args []string) (global, command []string) {
	i := 0
	for i < len(args) && strings.HasPrefix(args[i], "-") {
		if strings.Contains(args[i], "=") {
			i++
		} else {
			i += 2
		}
	}
	if i > len(args) {
		i = len(args)
	}
	return args[:i], args[i:]
}

// Run executes one command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "contacts":
		return a.contacts(ctx, rest)
	case "secret":
		return a.secret(rest)
	case "ping":
		return a.ping(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "display name used on signup")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		v, err := GetSimpleText(a.reader, "Email", a.out)
		if err != nil {
			return err
		}
		*email = v
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, *name, *email, password)
	if err != nil {
		return err
	}

	if res.Registered() {
		fmt.Fprintln(a.out, "Account created.")
	} else {
		fmt.Fprintf(a.out, "Logged in, user id %s.\n", res.UserID)
	}
	fmt.Fprintln(a.out, res.Token)
	return nil
}

func (a *App) contacts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("contacts", flag.ContinueOnError)
	fs.SetOutput(a.out)
	token := fs.String("token", "", "access token from login")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *token == "" {
		v, err := GetSimpleText(a.reader, "Access token", a.out)
		if err != nil {
			return err
		}
		*token = v
	}

	payload, err := a.api.Contacts(ctx, *token)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		_, err = a.out.Write(payload)
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(a.out)
	return err
}

func (a *App) secret(args []string) error {
	fs := flag.NewFlagSet("secret", flag.ContinueOnError)
	fs.SetOutput(a.out)
	cfg, err := ParseSecretConfig(fs, args)
	if err != nil {
		return err
	}
	return WriteSecret(cfg, a.out, nil)
}

func (a *App) ping(ctx context.Context) error {
	if err := a.api.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Hello")
	return nil
}
