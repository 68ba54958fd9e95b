package authController

import (
	"errors"
	"log"
	"strings"
	"time"

	"coursehub/config"
	"coursehub/database"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/services/access"
	"coursehub/services/apperr"
	"coursehub/validators"
	authValidator "coursehub/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 3
	lockoutWindow   = 15 * time.Minute
	blockDuration   = time.Minute
)

func hashPassword(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if config.AppConfig != nil && config.AppConfig.SaltRound >= bcrypt.MinCost {
		cost = config.AppConfig.SaltRound
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hashed), err
}

func Register(c *fiber.Ctx) error {
	reqData := validators.Request[authValidator.RegisterRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	email := strings.ToLower(reqData.Email)

	if err := db.Where("email = ?", email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := hashPassword(reqData.Password)
	if err != nil {
		log.Printf("[AUTH] Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    email,
		Role:     access.RoleUser,
		Password: hashedPassword,
	}
	if err := db.Create(&newUser).Error; err != nil {
		if apperr.IsDuplicate(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
		}
		log.Printf("[AUTH] Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

func Login(c *fiber.Ctx) error {
	reqData := validators.Request[authValidator.LoginRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", strings.ToLower(reqData.Email), false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	now := time.Now()
	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(now) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is temporarily blocked. Try again later.", nil)
	}

	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > lockoutWindow {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now
		if user.FailedLoginAttempts >= maxFailedLogins {
			until := now.Add(blockDuration)
			user.IsBlocked = true
			user.BlockedUntil = &until
			log.Printf("[AUTH] User %d blocked until %s", user.ID, until.Format(time.RFC3339))
		}
		if err := db.Model(&user).Select("failed_login_attempts", "last_failed_login", "is_blocked", "blocked_until").
			Updates(&user).Error; err != nil {
			log.Printf("[AUTH] Error recording failed login: %v", err)
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	user.IsBlocked = false
	user.BlockedUntil = nil
	if err := db.Model(&user).Select("last_login", "failed_login_attempts", "last_failed_login", "is_blocked", "blocked_until").
		Updates(&user).Error; err != nil {
		log.Printf("[AUTH] Error saving last login time: %v", err)
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	tracking := models.LoginTracking{
		UserID:     user.ID,
		IPAddress:  ip,
		UserAgent:  c.Get("User-Agent"),
		LoggedInAt: now,
	}
	if err := db.Create(&tracking).Error; err != nil {
		log.Printf("[AUTH] Error saving login tracking details: %v", err)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func Me(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", actor.UserID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched.", user)
}

func LoginHistoryList(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	page := validators.PageOf(c)
	db := database.Database.Db

	var history []models.LoginTracking
	if err := db.Where("user_id = ?", actor.UserID).
		Order("logged_in_at desc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&history).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}

	var total int64
	db.Model(&models.LoginTracking{}).Where("user_id = ?", actor.UserID).Count(&total)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": history,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

// SeedAdmin creates the configured admin account if it does not exist yet.
func SeedAdmin(db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Println("[AUTH] ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing models.User
	res := db.Where("email = ?", email).Limit(1).Find(&existing)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		if existing.Role != access.RoleAdmin {
			return db.Model(&existing).Update("role", access.RoleAdmin).Error
		}
		return nil
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{Name: "Administrator", Email: email, Role: access.RoleAdmin, Password: hashed}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("[AUTH] Seeded admin %s", email)
	return nil
}
