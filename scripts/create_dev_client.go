package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/franciscosanchezn/gin-cafe-api/internal/database"
	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/franciscosanchezn/gin-cafe-api/internal/services"
)

func main() {
	// Parse command line flags
	role := flag.String("role", models.RoleChief, "Staff role (chief, receptionist, inventory, manager)")
	dbPath := flag.String("db", "cafe.sqlite", "SQLite database path")
	password := flag.String("password", "dev-password-123", "Password for the development user")
	flag.Parse()

	normalized, ok := models.NormalizeRole(*role)
	if !ok {
		log.Fatalf("Unknown role %q", *role)
	}

	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:      "sqlite",
		Path:        *dbPath,
		AutoMigrate: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	users := services.NewUserService(db)
	clients := services.NewClientService(db)

	// Get or create the staff user for this role
	username := "dev-" + normalized
	user, err := users.GetUserByUsername(username)
	switch {
	case err == nil:
		fmt.Printf("Found existing user: %s (ID: %d, Role: %s)\n", user.Username, user.ID, user.Role)
	case errors.Is(err, services.ErrUserNotFound):
		user = &models.User{
			Username: username,
			Name:     fmt.Sprintf("Development %s", normalized),
			Role:     normalized,
			Password: *password,
		}
		if err := users.CreateUser(user); err != nil {
			log.Fatal("Failed to create user:", err)
		}
		fmt.Printf("Created new user: %s (ID: %d, Role: %s, Password: %s)\n", user.Username, user.ID, user.Role, *password)
	default:
		log.Fatal("Failed to look up user:", err)
	}

	// Secrets are stored hashed, so an existing client cannot be shown again
	existing, err := clients.GetClientsByUserID(user.ID)
	if err != nil {
		log.Fatal("Failed to list clients:", err)
	}
	if len(existing) > 0 {
		fmt.Printf("Development client already exists for role '%s'!\n", normalized)
		fmt.Printf("Client ID: %s\n", existing[0].ID)
		fmt.Println("Delete it through DELETE /api/v1/clients/{id} to issue a new secret.")
		return
	}

	client, secret, err := clients.RegisterClient(user.ID, fmt.Sprintf("Development %s display", normalized), "http://localhost", []string{"read", "write"})
	if err != nil {
		log.Fatal("Failed to create client:", err)
	}

	fmt.Printf("✓ Development OAuth client created for role '%s'!\n", normalized)
	fmt.Printf("Client ID: %s\n", client.ID)
	fmt.Printf("Client Secret: %s\n", secret)
	fmt.Printf("User ID: %d\n", user.ID)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:8080/oauth/token \\\n")
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", client.ID)
	fmt.Printf("  -d 'client_secret=%s'\n", secret)
}
