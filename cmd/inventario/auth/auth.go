package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ipsfa/inventario-client/internal/cmdutils"
	"github.com/ipsfa/inventario-client/internal/inventory"
	"github.com/ipsfa/inventario-client/internal/navigation"
	"github.com/ipsfa/inventario-client/internal/output"
	"github.com/ipsfa/inventario-client/internal/session"
)

var ErrMissingUsername = errors.New("a username is required")

func LoginCmd(buildInfo string) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session tokens",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, prompted for when omitted")

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteLogin), false,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			if env.Location.Route.Name != navigation.RouteLogin {
				user, _ := env.App.Session.CurrentUser()
				return env.Out.Message(fmt.Sprintf("Already logged in as %s.", user.Username))
			}

			if username == "" {
				return ErrMissingUsername
			}

			if password == "" {
				var err error
				password, err = newPrompter(env.In).password("Password: ")
				if err != nil {
					return err
				}
			}

			if err := env.App.Session.Login(ctx, username, password); err != nil {
				return err
			}

			user, _ := env.App.Session.CurrentUser()

			return env.Out.Message(fmt.Sprintf("Logged in as %s (%s).", user.Username, user.Role))
		})
}

func LogoutCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the stored session",
		Args:  cobra.NoArgs,
	}

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteLogin), false,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			if err := env.App.Session.Logout(ctx); err != nil {
				return err
			}

			return env.Out.Message("Logged out.")
		})
}

func WhoamiCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user and the token expiry",
		Args:  cobra.NoArgs,
	}

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteProfile), false,
		func(_ context.Context, env *cmdutils.Env, _ []string) error {
			st := env.App.Session.Status()

			return env.Out.Print(statusView(st), func() output.Table {
				return statusTable(st, time.Now())
			})
		})
}

type statusOutput struct {
	State     string               `json:"state"`
	User      *session.UserProfile `json:"user,omitempty"`
	IssuedAt  *time.Time           `json:"issued_at,omitempty"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
}

func statusView(st session.Status) statusOutput {
	out := statusOutput{State: st.State.String(), User: st.User}
	if st.TokenExpiry != nil {
		if !st.TokenExpiry.IssuedAt.IsZero() {
			out.IssuedAt = &st.TokenExpiry.IssuedAt
		}
		out.ExpiresAt = &st.TokenExpiry.ExpiresAt
	}

	return out
}

func statusTable(st session.Status, now time.Time) output.Table {
	kv := []string{"state", st.State.String()}
	if u := st.User; u != nil {
		kv = append(kv,
			"username", u.Username,
			"name", strings.TrimSpace(u.FirstName+" "+u.LastName),
			"email", u.Email,
			"role", u.Role,
		)
	}

	if exp := st.TokenExpiry; exp != nil {
		remaining := "expired"
		if !exp.Expired(now) {
			remaining = exp.ExpiresAt.Sub(now).Round(time.Second).String()
		}
		kv = append(kv,
			"token expires", exp.ExpiresAt.Local().Format(time.RFC3339),
			"token remaining", remaining,
		)
	}

	return output.KeyValues(kv...)
}

func ProfileCmd(buildInfo string) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Manage the own account",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Update name and email of the own account",
		Args:  cobra.NoArgs,
	}
	update.Flags().String("first-name", "", "first name")
	update.Flags().String("last-name", "", "last name")
	update.Flags().String("email", "", "email address")

	profile.AddCommand(cmdutils.AppCommand(update, buildInfo, cmdutils.Route(navigation.RouteProfile), false,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			changes := profileUpdate(update)
			if changes == (session.ProfileUpdate{}) {
				return errors.New("nothing to update, set at least one of --first-name, --last-name or --email")
			}

			user, err := env.App.Session.UpdateProfile(ctx, changes)
			if err != nil {
				return err
			}

			return env.Out.Print(user, func() output.Table {
				return output.KeyValues(
					"username", user.Username,
					"first name", user.FirstName,
					"last name", user.LastName,
					"email", user.Email,
				)
			})
		}))

	return profile
}

// profileUpdate sends only the flags that were set, so an empty value clears the field.
func profileUpdate(cmd *cobra.Command) session.ProfileUpdate {
	var u session.ProfileUpdate
	if v, ok := changed(cmd, "first-name"); ok {
		u.FirstName = &v
	}
	if v, ok := changed(cmd, "last-name"); ok {
		u.LastName = &v
	}
	if v, ok := changed(cmd, "email"); ok {
		u.Email = &v
	}

	return u
}

func changed(cmd *cobra.Command, name string) (string, bool) {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return "", false
	}

	return f.Value.String(), true
}

func PasswordCmd(buildInfo string) *cobra.Command {
	password := &cobra.Command{
		Use:   "password",
		Short: "Manage the own password",
	}

	change := &cobra.Command{
		Use:   "change",
		Short: "Change the own password",
		Long:  "Prompts for the current password and twice for the new one.",
		Args:  cobra.NoArgs,
	}

	password.AddCommand(cmdutils.AppCommand(change, buildInfo, cmdutils.Route(navigation.RouteProfile), false,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			var pc session.PasswordChange
			prompt := newPrompter(env.In)
			for _, p := range []struct {
				prompt string
				dst    *string
			}{
				{"Current password: ", &pc.OldPassword},
				{"New password: ", &pc.NewPassword},
				{"Repeat new password: ", &pc.NewPasswordConfirm},
			} {
				v, err := prompt.password(p.prompt)
				if err != nil {
					return err
				}
				*p.dst = v
			}

			if err := env.App.Session.ChangePassword(ctx, pc); err != nil {
				return err
			}

			return env.Out.Message("Password changed.")
		}))

	password.AddCommand(resetCmd(buildInfo))

	return password
}

func resetCmd(buildInfo string) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset a forgotten password with the security questions",
		Long: "Prompts for the answer to each security question of the account and, " +
			"once they are verified, twice for the new password.",
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RoutePasswordReset), false,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			if username == "" {
				return ErrMissingUsername
			}

			status, err := resetPassword(ctx, env.App.Auth, newPrompter(env.In), username)
			if err != nil {
				return err
			}

			return env.Out.Message(status)
		})
}

type passwordResetter interface {
	SecurityQuestions(ctx context.Context, username string) ([]inventory.SecurityQuestion, error)
	VerifyAnswers(ctx context.Context, username string, answers []inventory.SecurityAnswer) (string, error)
	ResetPassword(ctx context.Context, token, newPassword, confirm string) (string, error)
}

func resetPassword(ctx context.Context, auth passwordResetter, prompt *prompter, username string) (string, error) {
	questions, err := auth.SecurityQuestions(ctx, username)
	if err != nil {
		return "", err
	}

	answers := make([]inventory.SecurityAnswer, 0, len(questions))
	for _, q := range questions {
		v, err := prompt.password(q.Text + " ")
		if err != nil {
			return "", err
		}
		answers = append(answers, inventory.SecurityAnswer{QuestionID: q.ID, Answer: v})
	}

	token, err := auth.VerifyAnswers(ctx, username, answers)
	if err != nil {
		return "", err
	}

	newPassword, err := prompt.password("New password: ")
	if err != nil {
		return "", err
	}
	confirm, err := prompt.password("Repeat new password: ")
	if err != nil {
		return "", err
	}

	return auth.ResetPassword(ctx, token, newPassword, confirm)
}

// prompter reads without echo from a terminal and line by line otherwise.
type prompter struct {
	tty   *os.File
	lines *bufio.Reader
}

func newPrompter(in io.Reader) *prompter {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return &prompter{tty: f}
	}

	return &prompter{lines: bufio.NewReader(in)}
}

func (p *prompter) password(prompt string) (string, error) {
	if p.tty != nil {
		_, _ = fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(int(p.tty.Fd()))
		_, _ = fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}

		return string(b), nil
	}

	line, err := p.lines.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("reading password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
