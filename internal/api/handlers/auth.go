package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rohits-web03/foodlink/internal/api/services"
	"github.com/rohits-web03/foodlink/internal/config"
	"github.com/rohits-web03/foodlink/internal/models"
	"github.com/rohits-web03/foodlink/internal/repositories"
	"github.com/rohits-web03/foodlink/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Claims is the payload of the auth cookie.
type Claims struct {
	UserID   string      `json:"userId"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// registrationClaims carries a pending signup between the OTP email and the
// verify call; no user row exists until the OTP checks out.
type registrationClaims struct {
	Name         string      `json:"name"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"passwordHash"`
	Role         models.Role `json:"role"`
	OTP          string      `json:"otp"`
	jwt.RegisteredClaims
}

func dashboardURL(role models.Role) string {
	switch role {
	case models.RoleNGO:
		return "/ngo-dashboard"
	case models.RoleRider:
		return "/rider-dashboard"
	default:
		return "/donor-dashboard"
	}
}

func setAuthCookie(w http.ResponseWriter, user *models.User) error {
	expiration := time.Now().Add(24 * time.Hour)
	claims := &Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(config.Envs.JWTSecret))
	if err != nil {
		return err
	}

	isProd := config.Envs.Environment == "production"
	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(time.Until(expiration).Seconds()),
		Secure:   isProd,
		HttpOnly: true,
		SameSite: sameSite,
	})
	return nil
}

func userResponse(user *models.User) map[string]any {
	return map[string]any{
		"id":           user.ID,
		"name":         user.Name,
		"username":     user.Username,
		"email":        user.Email,
		"role":         user.Role,
		"dashboardUrl": dashboardURL(user.Role),
	}
}

// POST /auth/sign-up
// RegisterUser godoc
// @Summary Start registration with role selection
// @Description Validates the signup, emails a verification OTP, and returns a short-lived registration token. The account is only created once the OTP is verified.
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/v1/auth/sign-up [post]
func RegisterUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	type Input struct {
		Name     string      `json:"name"`
		Username string      `json:"username"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}

	var input Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if !models.ValidSignupRole(input.Role) {
		utils.Fail(w, http.StatusBadRequest, "Please select a valid role: donor, ngo, or rider.")
		return
	}
	if input.Name == "" || input.Username == "" || input.Email == "" || len(input.Password) < 6 {
		utils.Fail(w, http.StatusBadRequest, "All fields are required and password must be at least 6 characters.")
		return
	}

	var existing models.User
	err := repositories.DB.Where("username = ? OR email = ?", input.Username, input.Email).First(&existing).Error
	switch err {
	case gorm.ErrRecordNotFound:
		// new signup
	case nil:
		utils.Fail(w, http.StatusConflict, "An account with this email or username already exists.")
		return
	default:
		utils.Fail(w, http.StatusInternalServerError, "Database query failed")
		return
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to generate OTP")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	claims := &registrationClaims{
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		Role:         input.Role,
		OTP:          otp,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	registrationToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.Envs.JWTSecret))
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to create registration token")
		return
	}

	body := fmt.Sprintf(
		"<p>Welcome to FoodLink as a <strong>%s</strong>!</p>"+
			"<p>Your One-Time Password (OTP) for email verification is: <strong>%s</strong></p>"+
			"<p>It will expire in 15 minutes.</p>",
		input.Role, otp)
	if err := services.Mail.Send(input.Email, "Verify Your Email Address for FoodLink", body); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to send verification email")
		return
	}

	utils.OK(w, http.StatusOK, "A verification OTP has been sent to your email.", map[string]any{
		"registrationToken": registrationToken,
		"role":              input.Role,
	})
}

// POST /auth/verify-otp
// VerifyOTP godoc
// @Summary Verify the signup OTP and create the account
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/auth/verify-otp [post]
func VerifyOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var input struct {
		OTP               string `json:"otp"`
		RegistrationToken string `json:"registrationToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.OTP == "" || input.RegistrationToken == "" {
		utils.Fail(w, http.StatusBadRequest, "OTP and registration token are required.")
		return
	}

	var claims registrationClaims
	_, err := jwt.ParseWithClaims(input.RegistrationToken, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.Envs.JWTSecret), nil
	})
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "The verification link is invalid or has expired. Please sign up again.")
		return
	}
	if claims.OTP != input.OTP {
		utils.Fail(w, http.StatusBadRequest, "The OTP is incorrect.")
		return
	}

	var existing models.User
	err = repositories.DB.Where("username = ? OR email = ?", claims.Username, claims.Email).First(&existing).Error
	if err == nil {
		utils.Fail(w, http.StatusConflict, "An account with this email or username already exists.")
		return
	}
	if err != gorm.ErrRecordNotFound {
		utils.Fail(w, http.StatusInternalServerError, "Database query failed")
		return
	}

	user := models.User{
		ID:        uuid.New(),
		Name:      claims.Name,
		Username:  claims.Username,
		Email:     claims.Email,
		Password:  claims.PasswordHash,
		Role:      claims.Role,
		LastLogin: time.Now(),
	}
	if err := repositories.DB.Create(&user).Error; err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Database insert failed")
		return
	}

	if err := setAuthCookie(w, &user); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to create token")
		return
	}

	utils.OK(w, http.StatusCreated, "Account verified and created successfully!", userResponse(&user))
}

// POST /auth/login
// LoginUser godoc
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/v1/auth/login [post]
func LoginUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil || input.Email == "" || input.Password == "" {
		utils.Fail(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	var user models.User
	err := repositories.DB.Where("email = ?", input.Email).First(&user).Error
	switch err {
	case nil:
		// user found
	case gorm.ErrRecordNotFound:
		utils.Fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	default:
		utils.Fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	if user.Password == "" {
		utils.Fail(w, http.StatusUnauthorized, "This account uses Google Sign-In.")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.Fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	user.LastLogin = time.Now()
	if err := repositories.DB.Model(&user).Update("last_login", user.LastLogin).Error; err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := setAuthCookie(w, &user); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to create token")
		return
	}

	utils.OK(w, http.StatusOK, "Login successful", userResponse(&user))
}

// POST /api/v1/auth/logout
func Logout(w http.ResponseWriter, r *http.Request) {
	isProd := config.Envs.Environment == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // maxAge < 0 deletes the cookie
		Secure:   isProd,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	utils.OK(w, http.StatusOK, "Logged out successfully", nil)
}

// GET /auth/google/login
func HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	flow := r.URL.Query().Get("flow") // "login" or "register"
	if flow == "" {
		flow = "login"
	}
	role := models.Role(r.URL.Query().Get("role"))
	if flow == "register" && !models.ValidSignupRole(role) {
		utils.Fail(w, http.StatusBadRequest, "Please select a valid role: donor, ngo, or rider.")
		return
	}

	state, err := EncodeState(OAuthState{Flow: flow, Role: role})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to generate OAuth state")
		return
	}

	url := services.GoogleOauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GET /auth/google/callback
func HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	state, err := DecodeState(r.FormValue("state"))
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	token, err := services.GoogleOauthConfig.Exchange(context.Background(), r.FormValue("code"))
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Code exchange failed")
		return
	}

	client := services.GoogleOauthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to get user info")
		return
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(data, &googleUser); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to parse user info")
		return
	}

	frontend := config.Envs.FrontendURL

	var user models.User
	err = repositories.DB.Where("google_id = ?", googleUser.ID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		// Fall back to email: link the Google id to a traditional account.
		err = repositories.DB.Where("email = ?", googleUser.Email).First(&user).Error
		if err == nil {
			user.GoogleID = googleUser.ID
			user.Picture = googleUser.Picture
			if err := repositories.DB.Save(&user).Error; err != nil {
				utils.Fail(w, http.StatusInternalServerError, "Database error")
				return
			}
		}
	}

	switch {
	case err == nil:
		if state.Flow == "register" {
			http.Redirect(w, r, frontend+"/login?error=user_already_exists", http.StatusTemporaryRedirect)
			return
		}
	case err == gorm.ErrRecordNotFound:
		if state.Flow == "login" {
			http.Redirect(w, r, frontend+"/register?error=user_not_found", http.StatusTemporaryRedirect)
			return
		}
		user = models.User{
			ID:       uuid.New(),
			Name:     googleUser.Name,
			Username: googleUser.Email, // email doubles as username for Google accounts
			Email:    googleUser.Email,
			Role:     state.Role,
			GoogleID: googleUser.ID,
			Picture:  googleUser.Picture,
		}
		if err := repositories.DB.Create(&user).Error; err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Failed to create user")
			return
		}
	default:
		utils.Fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	user.LastLogin = time.Now()
	_ = repositories.DB.Model(&user).Update("last_login", user.LastLogin).Error

	if err := setAuthCookie(w, &user); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to create token")
		return
	}

	redirect := frontend + dashboardURL(user.Role) + "?status=success_" + url.QueryEscape(state.Flow)
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

// POST /auth/forgot-password
// ForgotPassword godoc
// @Summary Email a password reset OTP
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/auth/forgot-password [post]
func ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Email == "" {
		utils.Fail(w, http.StatusBadRequest, "Email is required.")
		return
	}

	var user models.User
	err := repositories.DB.Where("email = ?", input.Email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		utils.Fail(w, http.StatusNotFound, "An account with this email does not exist.")
		return
	}
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to generate OTP")
		return
	}
	expiry := time.Now().Add(10 * time.Minute)
	err = repositories.DB.Model(&user).Updates(map[string]any{
		"reset_otp":        otp,
		"reset_otp_expiry": expiry,
	}).Error
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	body := fmt.Sprintf("<p>Your One-Time Password (OTP) to reset your password is: <strong>%s</strong></p>", otp)
	if err := services.Mail.Send(user.Email, "Your Password Reset OTP", body); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to send reset email")
		return
	}

	utils.OK(w, http.StatusOK, "An OTP has been sent to your email address.", nil)
}

// POST /auth/reset-password
// ResetPassword godoc
// @Summary Reset the password with an emailed OTP
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/auth/reset-password [post]
func ResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var input struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil ||
		input.Email == "" || input.OTP == "" || input.NewPassword == "" {
		utils.Fail(w, http.StatusBadRequest, "Email, OTP, and new password are required.")
		return
	}
	if len(input.NewPassword) < 6 {
		utils.Fail(w, http.StatusBadRequest, "Password must be at least 6 characters long.")
		return
	}

	var user models.User
	err := repositories.DB.Where("email = ?", input.Email).First(&user).Error
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	if user.ResetOTP == "" || user.ResetOTP != input.OTP ||
		user.ResetOTPExpiry == nil || user.ResetOTPExpiry.Before(time.Now()) {
		utils.Fail(w, http.StatusBadRequest, "OTP is invalid or has expired.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	err = repositories.DB.Model(&user).Updates(map[string]any{
		"password":         string(hashed),
		"reset_otp":        "",
		"reset_otp_expiry": nil,
	}).Error
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.OK(w, http.StatusOK, "Your password has been successfully updated.", nil)
}
