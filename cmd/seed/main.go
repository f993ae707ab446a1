// Command seed fills a development database with a client, a professional, an
// admin, one job and an active match, and prints bearer tokens for each user.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"servicematch/internal/app"
	"servicematch/internal/database"
	"servicematch/internal/domain/job"
	"servicematch/internal/domain/match"
	"servicematch/internal/domain/user"
	"servicematch/internal/logger"
	jwtsvc "servicematch/internal/pkg/jwt"
)

func main() {
	_ = godotenv.Load()
	logger.Init("dev")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "servicematch.db"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me-jwt-secret"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		logger.Fatal("DB connection failed", "error", err)
	}
	logger.Info("running AutoMigrate")
	if err := app.Migrate(db); err != nil {
		logger.Fatal("AutoMigrate failed", "error", err)
	}

	// clean in dependency order
	for _, table := range []string{
		"notifications", "review_moderation_decisions", "professional_rating_summaries",
		"match_reviews", "phone_reveal_audit_logs", "phone_reveals", "matches", "jobs", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			logger.Fatal("cleanup failed", "table", table, "error", err)
		}
	}

	ctx := context.Background()
	users := user.NewRepository(db)
	seedUsers := []*user.User{
		{Name: "Администратор", Email: "admin@servicematch.local", Role: user.RoleAdmin},
		{Name: "Айгерим Клиент", Email: "client@servicematch.local", Phone: "+77011112233", Role: user.RoleClient},
		{Name: "Ерлан Мастер", Email: "pro@servicematch.local", Phone: "+77020001122", WhatsAppNumber: "+77771234567", Role: user.RoleProfessional},
	}
	for _, u := range seedUsers {
		if err := users.Create(ctx, u); err != nil {
			logger.Fatal("create user failed", "email", u.Email, "error", err)
		}
	}
	client, pro := seedUsers[1], seedUsers[2]

	j := &job.Job{ProjectID: 1, ClientID: client.ID, ProfessionalID: pro.ID, Title: "Ремонт ванной", Status: job.StatusInProgress}
	if err := job.NewRepository(db).Create(ctx, j); err != nil {
		logger.Fatal("create job failed", "error", err)
	}

	matches := match.NewService(db, match.NewRepository(db), users)
	m, err := matches.CreateMatch(ctx, match.CreateInput{
		ProposalID:     1,
		ClientID:       client.ID,
		ProfessionalID: pro.ID,
		ProjectID:      j.ProjectID,
		JobID:          &j.ID,
	})
	if err != nil {
		logger.Fatal("create match failed", "error", err)
	}

	tokens := jwtsvc.New(secret, 30*24*time.Hour, jwtsvc.WithIssuer(os.Getenv("JWT_ISSUER")))
	fmt.Printf("match id: %d\n", m.ID)
	for _, u := range seedUsers {
		tok, err := tokens.GenerateToken(u.ID, string(u.Role))
		if err != nil {
			logger.Fatal("token generation failed", "error", err)
		}
		fmt.Printf("%-13s id=%d token=%s\n", u.Role, u.ID, tok)
	}
	logger.Info("seed completed")
}
