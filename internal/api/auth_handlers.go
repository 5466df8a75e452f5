package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"relogio-be/internal/db"
	"relogio-be/internal/models"
	"relogio-be/internal/utils"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionPayload is returned by every successful auth call.
type sessionPayload struct {
	Token   string      `json:"token"`
	Profile interface{} `json:"profile"`
}

// Register creates a customer account and opens a session for it.
func (s *server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "Name is required")
		return
	}
	email, err := utils.ValidateEmail(req.Email)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	phone := ""
	if req.Phone != "" {
		phone, err = utils.ValidatePhoneNumber(req.Phone)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Register: error hashing password: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	user, err := s.Store.CreateUser(req.Name, email, string(hash), phone, req.Address, false)
	if err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			writeJSONError(w, http.StatusConflict, "This email is already registered")
			return
		}
		log.Printf("Register: error creating user %s: %v", email, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	token, err := issueToken(s.Config.JWTSecret, user)
	if err != nil {
		log.Printf("Register: error issuing token for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not open session")
		return
	}
	writeJSONSuccess(w, "Account created", sessionPayload{Token: token, Profile: user.Profile()})
}

// Login authenticates a customer. Administrator accounts are refused here;
// they sign in through the admin console.
func (s *server) Login(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if user.IsAdmin {
		writeJSONError(w, http.StatusForbidden, "This account belongs to the admin console")
		return
	}
	s.openSession(w, user)
}

// AdminLogin authenticates an administrator for the admin console.
func (s *server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin {
		writeJSONError(w, http.StatusForbidden, "This account has no administrator access")
		return
	}
	s.openSession(w, user)
}

// authenticate checks email and password. It writes the error response
// itself and reports success through the bool.
func (s *server) authenticate(w http.ResponseWriter, r *http.Request) (user models.User, ok bool) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return user, false
	}

	email, err := utils.ValidateEmail(req.Email)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return user, false
	}

	found, err := s.Store.GetUserByEmail(email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		writeJSONError(w, http.StatusUnauthorized, "Incorrect email or password")
		return user, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(req.Password)); err != nil {
		writeJSONError(w, http.StatusUnauthorized, "Incorrect email or password")
		return user, false
	}
	return found, true
}

func (s *server) openSession(w http.ResponseWriter, user models.User) {
	token, err := issueToken(s.Config.JWTSecret, user)
	if err != nil {
		log.Printf("openSession: error issuing token for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not open session")
		return
	}
	writeJSONSuccess(w, "Signed in", sessionPayload{Token: token, Profile: user.Profile()})
}

// GetUserProfile returns the authenticated user's profile.
func (s *server) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "User data not found in context")
		return
	}
	writeJSONSuccess(w, "Profile", user.Profile())
}

type updateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UpdateUserProfile updates name, phone and address of the authenticated
// user.
func (s *server) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "User data not found in context")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "Name is required")
		return
	}
	phone := ""
	if req.Phone != "" {
		normalized, err := utils.ValidatePhoneNumber(req.Phone)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		phone = normalized
	}

	if err := s.Store.UpdateUserProfile(user.ID, req.Name, phone, req.Address); err != nil {
		log.Printf("UpdateUserProfile: error updating user %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not update profile")
		return
	}

	updated, err := s.Store.GetUserByID(user.ID)
	if err != nil {
		log.Printf("UpdateUserProfile: error reloading user %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load updated profile")
		return
	}
	writeJSONSuccess(w, "Profile updated", updated.Profile())
}
