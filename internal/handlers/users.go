package handlers

import (
	"errors"
	"net/http"

	"expense-service/internal/auth"
	"expense-service/internal/storage"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Register creates a user account.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		writeMessage(w, http.StatusBadRequest, "Could not register user due to missing field")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		writeMessage(w, http.StatusBadRequest, "Password is too long")
		return
	}
	if err != nil {
		h.serverError(w, r, "hash password", err)
		return
	}

	if _, err := h.db.CreateUser(r.Context(), req.Email, hash, req.FirstName, req.LastName); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeMessage(w, http.StatusConflict, "Email is already registered")
			return
		}
		h.serverError(w, r, "create user", err)
		return
	}
	writeMessage(w, http.StatusOK, "User has been created successfully")
}

// Login checks credentials and issues a token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Could not login user due to missing field")
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "get user", err)
		return
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeMessage(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := h.issuer.Sign(auth.Claims{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		h.serverError(w, r, "sign token", err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successfully", Token: token})
}
