package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Ma16q/MotriLog/internal/auth/app"
	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/service"
	"github.com/Ma16q/MotriLog/internal/auth/store"
	"github.com/Ma16q/MotriLog/pkg/cryptox"
)

var (
	userEmail    string
	userPassword string
	userRole     string
	userChatID   string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
	Long:  `Operator commands for accounts. There is no public sign-up; users are created here.`,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st store.Store) error {
			return createUser(cmd.Context(), st, cmd.OutOrStdout(), service.CreateUserParams{
				Email:    userEmail,
				Password: userPassword,
				Role:     domain.Role(userRole),
				Handle:   userChatID,
			})
		})
	},
}

var usersSetRoleCmd = &cobra.Command{
	Use:   "set-role",
	Short: "Change the role of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st store.Store) error {
			return setRole(cmd.Context(), st, cmd.OutOrStdout(), userEmail, domain.Role(userRole))
		})
	},
}

// withStore opens the configured database for a one-shot command.
func withStore(fn func(st store.Store) error) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	cryptox.SetPepperPath(cfg.PepperFile)

	db, err := app.OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}

func createUser(ctx context.Context, st store.Store, out io.Writer, p service.CreateUserParams) error {
	svc := &service.UserService{Store: st}
	u, err := svc.CreateUser(ctx, p)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(out, "created %s (%s) role=%s\n", u.Email, u.ID, u.Role)
	return nil
}

func setRole(ctx context.Context, st store.Store, out io.Writer, email string, role domain.Role) error {
	svc := &service.UserService{Store: st}
	u, err := svc.SetRole(ctx, email, role)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}

	fmt.Fprintf(out, "%s is now %s\n", u.Email, u.Role)
	return nil
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd, usersSetRoleCmd)

	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "Login e-mail address")
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "Initial password (at least 8 characters)")
	usersCreateCmd.Flags().StringVar(&userRole, "role", string(domain.RoleUser), "Role: user or admin")
	usersCreateCmd.Flags().StringVar(&userChatID, "telegram-chat-id", "", "Telegram chat id; enables the second factor")
	_ = usersCreateCmd.MarkFlagRequired("email")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersSetRoleCmd.Flags().StringVar(&userEmail, "email", "", "Login e-mail address")
	usersSetRoleCmd.Flags().StringVar(&userRole, "role", "", "Role: user or admin")
	_ = usersSetRoleCmd.MarkFlagRequired("email")
	_ = usersSetRoleCmd.MarkFlagRequired("role")
}
