package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"modhub/backend/internal/auth"
	"modhub/backend/internal/config"
	"modhub/backend/internal/logger"
	"modhub/backend/internal/models"
	"modhub/backend/internal/storage"
)

// app holds what every subcommand needs. It is filled in PersistentPreRunE.
type app struct {
	cfg   *config.Config
	store *storage.Service
	close func() error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "admin",
		Short:        "ModHub administration tool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.close != nil {
				return a.close()
			}
			return nil
		},
	}

	root.AddCommand(
		a.userCmd("ban", "Ban a user", (*storage.Service).BanUser, "banned"),
		a.userCmd("unban", "Lift a ban", (*storage.Service).UnbanUser, "unbanned"),
		a.userCmd("approve", "Approve a user profile", (*storage.Service).ApproveUserProfile, "approved"),
		a.resolveCommentCmd(),
		a.reportedCmd(),
		a.resetPasswordCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logger); err != nil {
		return err
	}

	p, closeFn, err := storage.OpenPersister(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.cfg = cfg
	a.close = closeFn
	a.store = storage.NewStorageService(ctx, p)
	return nil
}

func (a *app) userCmd(use, short string, apply func(*storage.Service, int64) (*models.User, error), verb string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, err := apply(a.store, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d (%s) %s.\n", user.ID, user.Username, verb)
			return nil
		},
	}
}

func (a *app) resolveCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-comment <comment-id>",
		Short: "Mark a reported comment as resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			comment, err := a.store.ResolveReportedComment(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment %d on mod %d resolved.\n", comment.ID, comment.ModID)
			return nil
		},
	}
}

func (a *app) reportedCmd() *cobra.Command {
	var unresolved bool

	cmd := &cobra.Command{
		Use:   "reported",
		Short: "List reported users and comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			users := a.store.GetReportedUsers()
			fmt.Fprintf(out, "Reported users: %d\n", len(users))
			for _, u := range users {
				fmt.Fprintf(out, "  #%d %s banned=%t reason=%q\n", u.ID, u.Username, u.IsBanned, deref(u.ReportReason))
			}

			comments := a.store.GetReportedComments()
			if unresolved {
				comments = keepIf(comments, func(c models.Comment) bool { return !c.IsResolved })
			}
			fmt.Fprintf(out, "Reported comments: %d\n", len(comments))
			for _, c := range comments {
				fmt.Fprintf(out, "  #%d mod=%d by=%s resolved=%t reason=%q\n", c.ID, c.ModID, c.Name, c.IsResolved, deref(c.ReportReason))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unresolved, "unresolved", false, "hide resolved comments")
	return cmd
}

func (a *app) resetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <username> <password>",
		Short: "Set a new password for a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password := args[0], args[1]
			if len(password) < config.MinPasswordLength || len(password) > config.MaxPasswordLength {
				return fmt.Errorf("password must be %d to %d characters", config.MinPasswordLength, config.MaxPasswordLength)
			}

			user, err := a.store.GetUserByUsername(username)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password, a.cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}
			if _, err := a.store.SetUserPassword(user.ID, hash); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password of %s updated.\n", user.Username)
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole store as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(a.store.Snapshot())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write, stdout when empty")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// keepIf повертає елементи, для яких keep == true.
func keepIf[T any](in []T, keep func(T) bool) []T {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
