package cli

import (
	"fmt"

	"backoffice/internal/database"
	"backoffice/internal/model"
	"backoffice/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().String("username", "admin", "Username of the new account")
	createAdminCmd.Flags().String("email", "", "Email used to log in")
	createAdminCmd.Flags().String("password", "", "Password (at least 6 characters)")
	createAdminCmd.Flags().String("phone", "", "Phone number")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

// ─── migrate ────────────────────────────────────────────────────────────────

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	e, err := connect()
	if err != nil {
		return err
	}
	defer e.close()

	if err := database.Migrate(e.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
	return nil
}

// ─── seed ───────────────────────────────────────────────────────────────────

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the built-in roles and permissions",
	Long:  `Creates the admin, editor and viewer roles and resets their permission sets. Safe to run repeatedly.`,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	e, err := connect()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.services.Role.SeedDefaultRolesAndPermissions(cmdContext(cmd)); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d roles and %d permissions.\n",
		len(model.DefaultRolePermissions), len(model.PermissionCatalog))
	return nil
}

// ─── create-admin ───────────────────────────────────────────────────────────

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an account with the admin role",
	Long:  `Bootstraps the first administrator. Later accounts are created through POST /users.`,
	RunE:  runCreateAdmin,
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	phone, _ := cmd.Flags().GetString("phone")

	e, err := connect()
	if err != nil {
		return err
	}
	defer e.close()

	user, err := e.services.User.CreateUser(cmdContext(cmd), "", service.CreateUserRequest{
		Username: username,
		Email:    email,
		Phone:    phone,
		Password: password,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Username, user.ID)
	return nil
}
