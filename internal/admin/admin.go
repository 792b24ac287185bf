// Package admin implements the operator command line: applying migrations,
// listing accounts, setting a password and confirming an account by token.
package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/usuarios/internal/common"
	"github.com/dmitrijs2005/usuarios/internal/server/models"
	"github.com/dmitrijs2005/usuarios/internal/server/services"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// ErrUsage is returned for unknown commands or missing arguments.
var ErrUsage = errors.New("usage: admin [flags] migrate | list | set-password <id> | confirm <token>")

// Engine is the subset of the account service the CLI drives.
type Engine interface {
	ListAccounts(ctx context.Context) ([]models.AccountSummary, error)
	UpdateAccount(ctx context.Context, id string, upd services.AccountUpdate) error
	ConfirmAccount(ctx context.Context, token string) error
}

type App struct {
	engine Engine
	out    io.Writer
	stdin  int
}

func NewApp(engine Engine, out io.Writer) *App {
	return &App{engine: engine, out: out, stdin: int(os.Stdin.Fd())}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		// Migrations are applied while the engine is built.
		fmt.Fprintln(a.out, "Migrations applied")
		return nil
	case "list":
		return a.list(ctx)
	case "set-password":
		if len(rest) != 1 {
			return ErrUsage
		}
		return a.setPassword(ctx, rest[0])
	case "confirm":
		if len(rest) != 1 {
			return ErrUsage
		}
		return a.confirm(ctx, rest[0])
	default:
		return ErrUsage
	}
}

func (a *App) list(ctx context.Context) error {
	accounts, err := a.engine.ListAccounts(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE\tEMAIL\tCONFIRMADO")
	for _, acc := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", acc.ID, acc.Nombre, acc.Email, acc.Confirmado)
	}
	return w.Flush()
}

func (a *App) setPassword(ctx context.Context, id string) error {
	pw, err := a.getPassword("Enter new password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	again, err := a.getPassword("Repeat password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if !bytes.Equal(pw, again) {
		return errors.New("passwords do not match")
	}

	password := strings.TrimRight(string(pw), "\r\n")
	if err := a.engine.UpdateAccount(ctx, id, services.AccountUpdate{Password: &password}); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("account %s not found", id)
		}
		return err
	}

	fmt.Fprintln(a.out, "Password updated")
	return nil
}

func (a *App) confirm(ctx context.Context, token string) error {
	if err := a.engine.ConfirmAccount(ctx, token); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return errors.New("token not valid")
		}
		return err
	}

	fmt.Fprintln(a.out, "Account confirmed")
	return nil
}

// getPassword prompts on out and reads a password without echo.
func (a *App) getPassword(prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(a.out, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(a.stdin)
	fmt.Fprintln(a.out)
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, errors.New("empty password")
	}
	return pw, nil
}
