package server

import (
	"errors"
	"net/http"

	"sentisounds/core/auth"
	"sentisounds/logger"
	"sentisounds/model"
	"sentisounds/repository"
)

var errBadLogin = errors.New("incorrect email or password")

// SignupHandler validates the signup form, creates an unverified account
// and emails a one-time verification code.
func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email_address")
	password := r.FormValue("password")
	firstName := r.FormValue("first_name")
	lastInitial := r.FormValue("last_initial")

	if err := auth.ValidateName(firstName, lastInitial); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	if !auth.ValidEmail(email) {
		writeFailure(w, http.StatusBadRequest, auth.ErrInvalidEmail)
		return
	}
	if err := auth.ValidatePassword(password); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("[Signup] failed to hash password", logger.ErrorField(err))
		writeFailure(w, http.StatusBadRequest, errors.New("something went wrong processing the password"))
		return
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashed,
		DisplayName:  auth.DisplayName(firstName, lastInitial),
	}
	if _, err := h.userRepo.CreateUser(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			logger.Warn("[Signup] duplicate signup", logger.String("email", email))
			writeFailure(w, http.StatusBadRequest, errors.New("this email address was already found in the database"))
			return
		}
		logger.Error("[Signup] failed to create user", logger.ErrorField(err))
		writeFailure(w, http.StatusBadRequest, errors.New("something went wrong creating the account"))
		return
	}

	code := h.pending.Issue(email)
	if err := h.mailer.SendVerificationCode(email, code, h.cfg.AuthCodeTTL); err != nil {
		logger.Error("[Signup] failed to send verification email",
			logger.String("email", email),
			logger.ErrorField(err))
		writeFailure(w, http.StatusBadRequest, auth.ErrEmailDelivery)
		return
	}

	logger.Info("[Signup] verification code issued", logger.String("email", email))
	writeSuccess(w, nil)
}

// VerifyHandler consumes the emailed code and marks the account verified.
func (h *APIHandler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email_address")
	enteredCode := r.FormValue("entered_auth_code")

	if err := h.pending.Verify(email, enteredCode); err != nil {
		logger.Warn("[Verify] code check failed", logger.String("email", email))
		writeFailure(w, http.StatusBadRequest, err)
		return
	}

	if err := h.userRepo.MarkVerified(email); err != nil {
		logger.Error("[Verify] failed to mark user verified", logger.ErrorField(err))
		writeFailure(w, http.StatusBadRequest, errors.New("something went wrong verifying the account"))
		return
	}

	logger.Info("[Verify] account verified", logger.String("email", email))
	writeSuccess(w, nil)
}

// LoginHandler checks the email/password pair and hands out a session
// token. A wrong pair of any kind is a single 401 answer.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email_address")
	password := r.FormValue("password")

	user, err := h.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Error("[Login] failed to look up user", logger.ErrorField(err))
		writeFailure(w, http.StatusBadRequest, errors.New("something went wrong logging in"))
		return
	}
	if user == nil || !user.Verified || !auth.CheckPasswordHash(password, user.PasswordHash) {
		writeFailure(w, http.StatusUnauthorized, errBadLogin)
		return
	}

	token, err := h.jwt.Generate(email)
	if err != nil {
		logger.Error("[Login] failed to generate session token", logger.ErrorField(err))
		writeFailure(w, http.StatusBadRequest, errors.New("something went wrong logging in"))
		return
	}

	logger.Info("[Login] login successful", logger.String("email", email))
	writeSuccess(w, map[string]interface{}{"token": token})
}
