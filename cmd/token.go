package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/core/database"
	"github.com/frahmantamala/leave-management/internal/employee"
	employeePostgres "github.com/frahmantamala/leave-management/internal/employee/postgres"
	"github.com/spf13/cobra"
)

var tokenEmployeeID int64

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development bearer token",
	Long:  `Look up a seeded employee and print a signed bearer token carrying their id and role.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueToken(tokenEmployeeID)
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenEmployeeID, "employee", 0, "employee id to issue the token for")
	_ = tokenCmd.MarkFlagRequired("employee")
}

func issueToken(employeeID int64) error {
	ctx := context.Background()
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}
	lg := setupLogger(cfg)

	conn, err := database.Open(ctx, cfg.Database, 1, lg)
	if err != nil {
		return err
	}
	defer conn.Close()

	emp, err := employee.NewService(employeePostgres.NewEmployeeRepository(conn.Gorm), lg).FindEmployee(ctx, employeeID)
	if err != nil {
		return err
	}

	token, expiresAt, err := auth.NewTokenService(cfg.Security).Issue(emp.ID, emp.Role)
	if err != nil {
		return err
	}

	fmt.Printf("employee:   %s (%s)\n", emp.Email, emp.Role)
	fmt.Printf("expires at: %s\n", expiresAt.Format(time.RFC3339))
	fmt.Println(token)
	return nil
}
