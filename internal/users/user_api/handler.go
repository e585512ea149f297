package user_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-users/internal/logger"
	"ms-users/internal/models"
	"ms-users/internal/qr"
	users "ms-users/internal/users/service"
	"ms-users/internal/utils"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	UserService *users.UserService
	QR          *qr.QRGenerator
	Logger      *logger.Logger
}

func NewHandler(userService *users.UserService, log *logger.Logger) *Handler {
	return &Handler{
		UserService: userService,
		QR:          qr.NewQRGenerator(qr.DefaultSize),
		Logger:      log,
	}
}

// RegisterRoutes mounts the user resource at /users on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	h.RegisterRoutesAt(r, "")
}

// RegisterRoutesAt mounts the user resource at prefix+"/users". Paths match
// exactly, so "/users/" is not the collection.
func (h *Handler) RegisterRoutesAt(r chi.Router, prefix string) {
	base := prefix + "/users"
	r.Get(base, h.ListUsers)
	r.Post(base, h.CreateUser)
	r.Get(base+"/{id}", h.GetUser)
	r.Put(base+"/{id}", h.UpdateUser)
	r.Delete(base+"/{id}", h.DeleteUser)
	r.Get(base+"/{id}/qr", h.GetUserQRCode)
}

// parseID accepts only base-10 integers; anything else is treated as an id that
// cannot exist.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

var errTrailingData = errors.New("unexpected data after JSON body")

// decodeInput requires the body to be exactly one JSON value.
func decodeInput(w http.ResponseWriter, r *http.Request) (models.UserInput, error) {
	var input models.UserInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&input); err != nil {
		return input, err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return input, errTrailingData
	}
	return input, nil
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListUsers: %v", err))
		utils.WriteFailure(w, "Failed to fetch users", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.UserService.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			utils.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetUser: id=%d: %v", id, err))
		utils.WriteFailure(w, "Failed to fetch user", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	input, err := decodeInput(w, r)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CreateUser: failed to decode request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.UserService.CreateUser(r.Context(), input)
	if err != nil {
		h.writeMutationError(w, "Failed to create user", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	input, err := decodeInput(w, r)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("UpdateUser: failed to decode request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The body is validated before the id so a malformed id with a bad body is a 400.
	if err := users.Validate(input); err != nil {
		h.writeMutationError(w, "Failed to update user", err)
		return
	}

	id, ok := parseID(r)
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), id, input)
	if err != nil {
		h.writeMutationError(w, "Failed to update user", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := parseID(r); ok {
		if err := h.UserService.DeleteUser(r.Context(), id); err != nil {
			h.Logger.Error("API", fmt.Sprintf("DeleteUser: id=%d: %v", id, err))
			utils.WriteFailure(w, "Failed to delete user", err)
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, utils.MessageResponse{Message: "User deleted successfully"})
}

// GetUserQRCode renders a PNG QR code holding a mailto: link for the user.
func (h *Handler) GetUserQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.UserService.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			utils.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.WriteFailure(w, "Failed to fetch user", err)
		return
	}

	png, err := h.QR.GenerateMailtoQR(user.Email)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetUserQRCode: id=%d: %v", id, err))
		utils.WriteFailure(w, "Failed to generate QR code", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// writeMutationError maps create/update failures to 400, 404, 409 or 500.
func (h *Handler) writeMutationError(w http.ResponseWriter, failure string, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		utils.WriteError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, models.ErrUserNotFound):
		utils.WriteError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, models.ErrEmailExists):
		utils.WriteError(w, http.StatusConflict, "Email already exists")
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", failure, err))
		utils.WriteFailure(w, failure, err)
	}
}
