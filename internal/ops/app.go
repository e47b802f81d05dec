// Package ops implements wellnessctl, the operator CLI for account
// maintenance tasks that have no HTTP endpoint.
package ops

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/filex"
	"github.com/dmitrijs2005/smarthealth/internal/flagx"
	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/netx"
	"github.com/dmitrijs2005/smarthealth/internal/server/config"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/smarthealth/internal/server/services"
)

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage error")

const usage = `usage: wellnessctl <command> [flags]

commands:
  setup-admin    -email -password -name -phone   create or promote an administrator
  reset-password -email [-password]              set a new password (prompts when omitted)
  list-users     [-o file.csv]                   print every account
  upload-avatar  -email -file                    store an avatar image for an account

Server flags such as -d (database DSN) and -cost are accepted as well.
`

type App struct {
	accounts   *services.AccountService
	avatars    *services.AvatarService
	httpClient *http.Client
	logger     logging.Logger
	stdout     io.Writer
}

func NewApp(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger, stdout io.Writer) *App {
	return &App{
		accounts:   services.NewAccountService(db, m, cfg, l),
		avatars:    services.NewAvatarService(db, m, cfg),
		httpClient: http.DefaultClient,
		logger:     l.With("module", "wellnessctl"),
		stdout:     stdout,
	}
}

// Usage writes the command summary to w.
func Usage(w io.Writer) {
	fmt.Fprint(w, usage)
}

// Run dispatches one command. args may mix command flags with server
// flags; each side only parses the flags it knows.
func (a *App) Run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "setup-admin":
		return a.setupAdmin(ctx, args)
	case "reset-password":
		return a.resetPassword(ctx, args)
	case "list-users":
		return a.listUsers(ctx, args)
	case "upload-avatar":
		return a.uploadAvatar(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string, names ...string) error {
	if err := fs.Parse(flagx.FilterArgs(args, names)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	return nil
}

func (a *App) setupAdmin(ctx context.Context, args []string) error {
	var in services.AdminSetup
	fs := newFlagSet("setup-admin")
	fs.StringVar(&in.Email, "email", "", "admin email")
	fs.StringVar(&in.Password, "password", "", "admin password")
	fs.StringVar(&in.FullName, "name", "Administrator", "full name")
	fs.StringVar(&in.Phone, "phone", "", "10 digit phone")
	if err := parse(fs, args, "-email", "-password", "-name", "-phone"); err != nil {
		return err
	}
	if in.Password == "" {
		pw, err := promptPassword(a.stdout, "Admin password: ")
		if err != nil {
			return err
		}
		in.Password = pw
	}

	created, err := a.accounts.EnsureAdmin(ctx, in)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(a.stdout, "created admin %s\n", strings.ToLower(in.Email))
	} else {
		fmt.Fprintf(a.stdout, "updated admin %s\n", strings.ToLower(in.Email))
	}
	return nil
}

func (a *App) resetPassword(ctx context.Context, args []string) error {
	var in services.PasswordReset
	fs := newFlagSet("reset-password")
	fs.StringVar(&in.Email, "email", "", "account email")
	fs.StringVar(&in.NewPassword, "password", "", "new password")
	if err := parse(fs, args, "-email", "-password"); err != nil {
		return err
	}
	if in.NewPassword == "" {
		pw, err := promptPassword(a.stdout, "New password: ")
		if err != nil {
			return err
		}
		in.NewPassword = pw
	}
	if err := a.accounts.ResetPassword(ctx, in); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "password reset for %s\n", strings.ToLower(strings.TrimSpace(in.Email)))
	return nil
}

func (a *App) listUsers(ctx context.Context, args []string) error {
	var out string
	fs := newFlagSet("list-users")
	fs.StringVar(&out, "o", "", "write CSV to this file")
	if err := parse(fs, args, "-o"); err != nil {
		return err
	}

	list, err := a.accounts.List(ctx)
	if err != nil {
		return err
	}

	if out == "" {
		tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tPHONE\tROLE\tACTIVE")
		for _, acc := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n", acc.ID, acc.Email, acc.FullName, acc.Phone, acc.Role, acc.IsActive)
		}
		return tw.Flush()
	}

	f, err := filex.Create(out)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	_ = w.Write([]string{"id", "email", "name", "phone", "role", "active"})
	for _, acc := range list {
		_ = w.Write([]string{acc.ID, acc.Email, acc.FullName, acc.Phone, string(acc.Role), fmt.Sprint(acc.IsActive)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "wrote %d accounts to %s\n", len(list), out)
	return nil
}

var avatarTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// uploadAvatar pushes an image through a presigned URL and records the
// object key on the account, the same path the web client takes.
func (a *App) uploadAvatar(ctx context.Context, args []string) error {
	var email, file string
	fs := newFlagSet("upload-avatar")
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&file, "file", "", "image file")
	if err := parse(fs, args, "-email", "-file"); err != nil {
		return err
	}
	contentType, ok := avatarTypes[strings.ToLower(filepath.Ext(file))]
	if !ok {
		return fmt.Errorf("%w: -file must be a .png, .jpg or .webp image", ErrUsage)
	}
	body, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	acc, err := a.accounts.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	upload, err := a.avatars.UploadURL(ctx, acc.ID)
	if err != nil {
		return err
	}
	if err := netx.PutPresigned(ctx, a.httpClient, upload.URL, contentType, body); err != nil {
		return err
	}
	if _, err := a.accounts.UpdateProfile(ctx, acc.ID, services.ProfileUpdate{Avatar: &upload.Key}); err != nil {
		return err
	}
	a.logger.Info(ctx, "avatar uploaded", "user_id", acc.ID, "key", upload.Key)
	fmt.Fprintf(a.stdout, "avatar stored at %s\n", upload.Key)
	return nil
}

// Describe renders err for the terminal, including field details of
// validation failures.
func Describe(err error) string {
	e, ok := common.AsError(err)
	if !ok {
		return err.Error()
	}
	var b strings.Builder
	b.WriteString(e.Message)
	for _, d := range e.ValidationErrors {
		fmt.Fprintf(&b, "\n  %s: %s", d.Field, d.Message)
	}
	return b.String()
}
