// Command create-admin provisions (or resets) an administrator account from
// the command line, for first-run setup or a locked-out admin.
package main

import (
	"flag"
	"log"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "admin123", "admin password")
	name := flag.String("name", "Administrator", "admin full name")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()

	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Fatalf("Failed to seed privileges: %v", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}

	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err != nil {
		log.Fatalf("ADMIN role not found: %v", err)
	}
	if len(adminRole.Privileges) == 0 {
		allPrivileges, _ := privilegeRepo.FindAll()
		db.Model(&adminRole).Association("Privileges").Replace(allPrivileges)
	}

	// 3. Reset the password if the account already exists
	if existing, err := userRepo.FindByEmail(*email); err == nil {
		if err := existing.SetPassword(*password); err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		if err := userRepo.Update(existing); err != nil {
			log.Fatalf("Failed to update password: %v", err)
		}
		log.Printf("Password for %s has been reset", *email)
		return
	}

	// 4. Otherwise create a fresh admin
	admin := &model.User{
		Email:      *email,
		FullName:   *name,
		RoleID:     &adminRole.ID,
		IsActive:   true,
		Privileges: adminRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(*password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := userRepo.Create(admin); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	log.Printf("Admin user created: %s (ADMIN)", *email)
}
