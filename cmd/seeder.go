package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/leave-management/internal/core/database"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed leave types, leave policies and a demo reporting hierarchy for development and testing.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := setupLogger(cfg)

		conn, err := database.Open(ctx, cfg.Database, connectRetries, lg)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer conn.Close()

		err = database.WithinTransaction(ctx, conn.Gorm, func(tx *gorm.DB) error {
			if clearData {
				if err := clearSeedData(tx); err != nil {
					return err
				}
				fmt.Println("Cleared existing data")
			}
			types, err := seedLeaveTypes(tx)
			if err != nil {
				return err
			}
			if err := seedPolicies(tx, types); err != nil {
				return err
			}
			return seedHierarchy(tx)
		})
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		fmt.Println("Seeding complete")
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "delete existing rows before seeding")
}

func clearSeedData(tx *gorm.DB) error {
	// children first so the foreign keys hold
	tables := []string{
		"balance_job_runs",
		"approval_flows",
		"leave_requests",
		"leave_balances",
		"leave_policies",
		"leave_types",
		"employees",
	}
	for _, table := range tables {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func seedLeaveTypes(tx *gorm.DB) (map[string]int64, error) {
	seeds := []leaveDatamodel.LeaveType{
		{Name: leavetype.SickLeave},
		{Name: leavetype.EarnedLeave, IsCarryForward: true},
		{Name: leavetype.FloaterLeave},
		{Name: leavetype.LossOfPay},
	}

	ids := make(map[string]int64, len(seeds))
	for _, seed := range seeds {
		row := seed
		if err := tx.Where(leaveDatamodel.LeaveType{Name: seed.Name}).
			Attrs(leaveDatamodel.LeaveType{IsCarryForward: seed.IsCarryForward}).
			FirstOrCreate(&row).Error; err != nil {
			return nil, fmt.Errorf("seed leave type %s: %w", seed.Name, err)
		}
		ids[row.Name] = row.ID
		fmt.Println("Seeded leave type:", row.Name)
	}
	return ids, nil
}

func seedPolicies(tx *gorm.DB, types map[string]int64) error {
	earned := map[employee.Role][2]int{
		employee.RoleSeniorManager: {3, 36},
		employee.RoleManager:       {3, 30},
		employee.RoleEmployee:      {3, 24},
		employee.RoleIntern:        {1, 12},
	}

	for role, rule := range earned {
		policies := []leaveDatamodel.LeavePolicy{
			{Role: string(role), LeaveTypeID: types[leavetype.EarnedLeave], AccrualPerMonth: rule[0], MaxDaysPerYear: rule[1]},
			{Role: string(role), LeaveTypeID: types[leavetype.SickLeave], AccrualPerMonth: 1, MaxDaysPerYear: 12},
		}
		for _, p := range policies {
			row := p
			if err := tx.Where(leaveDatamodel.LeavePolicy{Role: p.Role, LeaveTypeID: p.LeaveTypeID}).
				Assign(leaveDatamodel.LeavePolicy{AccrualPerMonth: p.AccrualPerMonth, MaxDaysPerYear: p.MaxDaysPerYear}).
				FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed policy %s/%d: %w", p.Role, p.LeaveTypeID, err)
			}
		}
		fmt.Println("Seeded policies for role:", role)
	}
	return nil
}

func seedHierarchy(tx *gorm.DB) error {
	people := []struct {
		name    string
		email   string
		role    employee.Role
		manager string
	}{
		{"Sara Senior", "sara@mail.com", employee.RoleSeniorManager, ""},
		{"Mohan Manager", "mohan@mail.com", employee.RoleManager, "sara@mail.com"},
		{"Esha Employee", "esha@mail.com", employee.RoleEmployee, "mohan@mail.com"},
		{"Ian Intern", "ian@mail.com", employee.RoleIntern, "esha@mail.com"},
	}

	ids := make(map[string]int64, len(people))
	for _, p := range people {
		row := employeeDatamodel.Employee{
			Name:       p.name,
			Email:      p.email,
			Department: "Engineering",
			Role:       string(p.role),
		}
		if p.manager != "" {
			managerID := ids[p.manager]
			row.ManagerID = &managerID
		}
		if err := tx.Where(employeeDatamodel.Employee{Email: p.email}).
			Attrs(row).
			FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed employee %s: %w", p.email, err)
		}
		ids[p.email] = row.ID
		fmt.Printf("Seeded employee: %s (%s) id=%d\n", p.email, p.role, row.ID)
	}
	return nil
}
