package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/auth"
	"github.com/hylla/taskcollab/internal/domain"
	"github.com/spf13/cobra"
)

func newUserCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Short:   "Manage board members",
		Aliases: []string{"users"},
		GroupID: "account",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:     "list [query]",
		Short:   "List users",
		Aliases: []string{"ls"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				users, err := env.svc.ListUsers(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, users)
				}
				if len(users) == 0 {
					fmt.Fprintln(out, "No users found")
					return nil
				}
				for _, u := range users {
					role := ""
					if u.IsAdmin {
						role = " (admin)"
					}
					fmt.Fprintf(out, "%s  %s <%s>%s\n", u.ID, u.Name, u.Email, role)
				}
				return nil
			})
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var in app.CreateUserInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				u, err := env.svc.CreateUser(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "CREATED %s %s <%s>\n", u.ID, u.Name, u.Email)
				return nil
			})
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "display name")
	create.Flags().StringVar(&in.Email, "email", "", "email address")
	create.Flags().StringVar(&in.Position, "position", "", "job title")
	create.Flags().BoolVar(&in.IsAdmin, "admin", false, "grant admin rights")
	create.Flags().StringVar(&in.Password, "password", "", "initial password")
	create.Flags().StringVar(&in.CreatedBy, "created-by", "", "creator name")

	var up domain.UserInput
	var newPassword string
	update := &cobra.Command{
		Use:   "update <user-id|email>",
		Short: "Change user fields; only flags that are set are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				u, err := resolveUser(ctx, env.svc, args[0])
				if err != nil {
					return err
				}
				input := domain.UserInput{Name: u.Name, Email: u.Email, Position: u.Position, IsAdmin: u.IsAdmin}
				changed := cmd.Flags().Changed
				if changed("name") {
					input.Name = up.Name
				}
				if changed("email") {
					input.Email = up.Email
				}
				if changed("position") {
					input.Position = up.Position
				}
				if changed("admin") {
					input.IsAdmin = up.IsAdmin
				}
				u, err = env.svc.UpdateUser(ctx, u.ID, input, newPassword)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "UPDATED %s %s <%s>\n", u.ID, u.Name, u.Email)
				return nil
			})
		},
	}
	update.Flags().StringVar(&up.Name, "name", "", "display name")
	update.Flags().StringVar(&up.Email, "email", "", "email address")
	update.Flags().StringVar(&up.Position, "position", "", "job title")
	update.Flags().BoolVar(&up.IsAdmin, "admin", false, "admin rights")
	update.Flags().StringVar(&newPassword, "password", "", "new password (blank keeps the current one)")

	remove := &cobra.Command{
		Use:     "delete <user-id|email>",
		Short:   "Delete a user",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				u, err := resolveUser(ctx, env.svc, args[0])
				if err != nil {
					return err
				}
				if err := env.svc.DeleteUser(ctx, u.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "DELETED %s %s\n", u.ID, u.Email)
				return nil
			})
		},
	}

	cmd.AddCommand(list, create, update, remove)
	return cmd
}

// resolveUser finds a user by id or case-insensitive email.
func resolveUser(ctx context.Context, svc *app.Service, ref string) (domain.User, error) {
	users, err := svc.ListUsers(ctx, "")
	if err != nil {
		return domain.User{}, err
	}
	ref = strings.TrimSpace(ref)
	for _, u := range users {
		if u.ID == ref || strings.EqualFold(u.Email, ref) {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %q: %w", ref, app.ErrNotFound)
}

func newLoginCommand(opts *rootOptions, stdin io.Reader) *cobra.Command {
	var email, password string
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Sign in and store a session token",
		GroupID: "account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				line, err := readLine(stdin)
				if err != nil {
					return fmt.Errorf("read password from stdin: %w", err)
				}
				password = line
			}
			if strings.TrimSpace(email) == "" || password == "" {
				return errors.New("login needs --email and --password (or --password-stdin)")
			}
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				secret, err := env.tokenSecret()
				if err != nil {
					return err
				}
				ttl, err := env.cfg.Auth.TTL()
				if err != nil {
					return err
				}
				token, identity, err := env.svc.Login(ctx, email, password, secret, ttl)
				if err != nil {
					return err
				}
				if err := env.credentials().Save(token); err != nil {
					return err
				}
				env.logger.Info("login succeeded", "user_id", identity.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", identity.Name, identity.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Remove the stored session token",
		GroupID: "account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := credentialsFor(opts)
			if err != nil {
				return err
			}
			if err := creds.Remove(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "whoami",
		Short:   "Show the signed-in user",
		GroupID: "account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(_ context.Context, env *runtimeEnv) error {
				identity, err := env.currentIdentity(time.Now())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, identity)
				}
				fmt.Fprintf(out, "%s <%s>\n", identity.Name, identity.Email)
				if identity.Position != "" {
					fmt.Fprintf(out, "position: %s\n", identity.Position)
				}
				fmt.Fprintf(out, "admin: %t\n", identity.IsAdmin)
				if identity.ExpiresAt != 0 {
					fmt.Fprintf(out, "expires: %s\n", time.Unix(identity.ExpiresAt, 0).UTC().Format(time.RFC3339))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (r *runtimeEnv) credentials() auth.CredentialFile {
	return auth.CredentialFile{Path: r.paths.CredentialPath}
}

// currentIdentity decodes the stored session token.
func (r *runtimeEnv) currentIdentity(now time.Time) (auth.Identity, error) {
	token, err := r.credentials().Load()
	if err != nil {
		return auth.Identity{}, err
	}
	secret, err := r.tokenSecret()
	if err != nil {
		return auth.Identity{}, err
	}
	identity, err := auth.Decode(token, secret, now)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("stored session: %w; run `taskcollab login` again", err)
	}
	return identity, nil
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(scanner.Text(), "\r"), nil
}
