package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/wanderhub/internal/location"
	locationPostgres "github.com/frahmantamala/wanderhub/internal/location/postgres"
	"github.com/frahmantamala/wanderhub/internal/rbac"
	rbacPostgres "github.com/frahmantamala/wanderhub/internal/rbac/postgres"
	"github.com/frahmantamala/wanderhub/internal/store"
	"github.com/frahmantamala/wanderhub/internal/user"
	userPostgres "github.com/frahmantamala/wanderhub/internal/user/postgres"
	"github.com/frahmantamala/wanderhub/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	superuserEmail    string
	superuserName     string
	superuserPassword string
	seedLocations     bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with base roles and permissions",
	Long:  `Create the base permissions and roles, and optionally a superuser and sample locations. Safe to run more than once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Format)

		db, err := initDB(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}

		s := newSeeder(db, cfg.Security.BCryptCost, logger.LoggerWrapper())
		return s.Run(ctx)
	},
}

func init() {
	seedCmd.Flags().StringVar(&superuserEmail, "superuser-email", "", "email of the superuser to create")
	seedCmd.Flags().StringVar(&superuserName, "superuser-name", "Administrator", "display name of the superuser")
	seedCmd.Flags().StringVar(&superuserPassword, "superuser-password", "", "password of the superuser to create")
	seedCmd.Flags().BoolVar(&seedLocations, "locations", false, "also seed sample locations")
}

type seedPermission struct {
	Code string
	Name string
	Desc string
}

type seedRole struct {
	Name      string
	Desc      string
	IsDefault bool
	Codes     []string
}

var basePermissions = []seedPermission{
	{"users:read", "Read users", "Can list and view user accounts"},
	{"users:write", "Manage users", "Can update and deactivate user accounts"},
	{"roles:read", "Read roles", "Can list and view roles and permissions"},
	{"roles:write", "Manage roles", "Can create, update and delete roles and permissions"},
	{"locations:read", "Read locations", "Can list and view locations"},
	{"locations:write", "Manage locations", "Can create, update and delete locations"},
}

var baseRoles = []seedRole{
	{
		Name:  "admin",
		Desc:  "full administrator",
		Codes: []string{"users:read", "users:write", "roles:read", "roles:write", "locations:read", "locations:write"},
	},
	{
		Name:  "editor",
		Desc:  "maintains location records",
		Codes: []string{"locations:read", "locations:write"},
	},
	{
		Name:      "member",
		Desc:      "default role for new accounts",
		IsDefault: true,
		Codes:     []string{"locations:read"},
	},
}

var sampleLocations = []location.CreateLocationDTO{
	{Name: "Bali", Description: "Island of the gods", CountryCode: "ID"},
	{Name: "Kyoto", Description: "Temples and gardens", CountryCode: "JP"},
	{Name: "Lisbon", Description: "City of seven hills", CountryCode: "PT"},
}

type seeder struct {
	rbacRepo  rbac.RepositoryAPI
	rbac      *rbac.Service
	users     *user.Service
	locations *location.Service
	logger    *slog.Logger
}

func newSeeder(db *gorm.DB, bcryptCost int, lg *slog.Logger) *seeder {
	rbacRepo := rbacPostgres.NewRBACRepository(db)
	rbacService := rbac.NewService(rbacRepo, lg)
	return &seeder{
		rbacRepo:  rbacRepo,
		rbac:      rbacService,
		users:     user.NewService(userPostgres.NewUserRepository(db), rbacService, nil, bcryptCost, lg),
		locations: location.NewService(locationPostgres.NewLocationRepository(db), lg),
		logger:    lg,
	}
}

func (s *seeder) Run(ctx context.Context) error {
	ids, err := s.seedPermissions(ctx)
	if err != nil {
		return err
	}

	roles, err := s.seedRoles(ctx, ids)
	if err != nil {
		return err
	}

	if superuserEmail != "" {
		if err := s.seedSuperuser(ctx, roles["admin"]); err != nil {
			return err
		}
	}

	if seedLocations {
		if err := s.seedLocations(ctx); err != nil {
			return err
		}
	}

	s.logger.Info("seeding complete")
	return nil
}

func (s *seeder) seedPermissions(ctx context.Context) (map[string]int64, error) {
	ids := make(map[string]int64, len(basePermissions))
	for _, p := range basePermissions {
		existing, err := s.rbac.GetPermissionByCode(ctx, p.Code)
		if err != nil {
			return nil, fmt.Errorf("lookup permission %s: %w", p.Code, err)
		}
		if existing != nil {
			ids[p.Code] = existing.ID
			continue
		}

		created, err := s.rbac.CreatePermission(ctx, rbac.CreatePermissionDTO{
			Code:        p.Code,
			Name:        p.Name,
			Description: p.Desc,
		})
		if err != nil {
			return nil, fmt.Errorf("create permission %s: %w", p.Code, err)
		}
		ids[p.Code] = created.ID
		s.logger.Info("seeded permission", "code", p.Code)
	}
	return ids, nil
}

// seedRoles creates missing roles. Existing roles keep the permissions an operator gave them.
func (s *seeder) seedRoles(ctx context.Context, permissionIDs map[string]int64) (map[string]int64, error) {
	roleIDs := make(map[string]int64, len(baseRoles))
	for _, r := range baseRoles {
		existing, err := s.rbacRepo.GetRoleByName(ctx, r.Name)
		if err != nil {
			return nil, fmt.Errorf("lookup role %s: %w", r.Name, err)
		}
		if existing != nil {
			roleIDs[r.Name] = existing.ID
			continue
		}

		ids := make([]int64, 0, len(r.Codes))
		for _, code := range r.Codes {
			ids = append(ids, permissionIDs[code])
		}

		created, err := s.rbac.CreateRole(ctx, rbac.CreateRoleDTO{
			Name:          r.Name,
			Description:   r.Desc,
			IsDefault:     r.IsDefault,
			PermissionIDs: ids,
		})
		if err != nil {
			return nil, fmt.Errorf("create role %s: %w", r.Name, err)
		}
		roleIDs[r.Name] = created.ID
		s.logger.Info("seeded role", "name", r.Name, "permissions", len(ids))
	}
	return roleIDs, nil
}

func (s *seeder) seedSuperuser(ctx context.Context, adminRoleID int64) error {
	existing, err := s.users.GetByEmail(ctx, superuserEmail)
	if err != nil {
		return fmt.Errorf("lookup superuser: %w", err)
	}

	if existing == nil {
		if superuserPassword == "" {
			return fmt.Errorf("--superuser-password is required to create %s", superuserEmail)
		}
		existing, err = s.users.Register(ctx, user.RegisterDTO{
			Email:    superuserEmail,
			Name:     superuserName,
			Password: superuserPassword,
		})
		if err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}
	}

	_, err = s.users.AdminUpdate(ctx, existing.ID, existing.ID, user.AdminUpdateDTO{
		RoleID:      store.Some(adminRoleID),
		IsActive:    store.Some(true),
		IsSuperuser: store.Some(true),
	})
	if err != nil {
		return fmt.Errorf("promote superuser: %w", err)
	}
	s.logger.Info("seeded superuser", "email", existing.Email)
	return nil
}

func (s *seeder) seedLocations(ctx context.Context) error {
	for _, l := range sampleLocations {
		existing, err := s.locations.GetByName(ctx, l.Name)
		if err != nil {
			return fmt.Errorf("lookup location %s: %w", l.Name, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.locations.Create(ctx, l); err != nil {
			return fmt.Errorf("create location %s: %w", l.Name, err)
		}
		s.logger.Info("seeded location", "name", l.Name)
	}
	return nil
}
