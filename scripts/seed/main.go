// Command seed makes sure the RBAC API holds the setting permissions and an
// admin role granting all of them. It signs in with an existing account and
// only creates what is missing, so it is safe to run repeatedly.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rbac-console/console/internal/rbacapi"
)

func main() {
	baseURL := getenv("API_BASE_URL", "http://127.0.0.1:8000")
	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SEED_EMAIL and SEED_PASSWORD must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := rbacapi.NewClient(baseURL, 10*time.Second)
	if err != nil {
		log.Fatalf("api client: %v", err)
	}
	login, err := client.Login(ctx, email, password)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	fmt.Println("→ Seeding RBAC...")
	res, err := seedRBAC(ctx, client.WithToken(login.Token), getenv("SEED_ROLE", "admin"))
	if err != nil {
		log.Fatalf("seed rbac: %v", err)
	}
	fmt.Printf("✓ permissions created: %d, role created: %t, links added: %d\n",
		res.PermissionsCreated, res.RoleCreated, res.LinksAdded)
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
