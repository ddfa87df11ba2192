package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
)

const imageUploadLimit = 32 << 20

// UserHandler implements account and channel endpoints.
type UserHandler struct {
	Users   UserStore
	Assets  AssetStorage
	NowFunc func() time.Time
}

// Me handles GET /api/v1/users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	user, err := h.Users.FindByID(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err, "unable to load account")
		return
	}

	respondJSON(ctx, w, http.StatusOK, accountResponse{
		UserSummary: user.PublicProfile(),
		Email:       user.Email,
		CoverImage:  user.CoverImage,
		CreatedAt:   user.CreatedAt,
	})
}

// UpdateAccount handles PATCH /api/v1/users/me. Only full name and email may
// change here.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" && req.Email == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "nothing to update"})
		return
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
			return
		}
	}

	user, err := h.Users.FindByID(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err, "unable to load account")
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	user.UpdatedAt = h.now()

	if err := h.Users.UpdateProfile(ctx, user); err != nil {
		respondError(ctx, w, err, "unable to update account")
		return
	}

	respondJSON(ctx, w, http.StatusOK, accountResponse{
		UserSummary: user.PublicProfile(),
		Email:       user.Email,
		CoverImage:  user.CoverImage,
		CreatedAt:   user.CreatedAt,
	})
}

// UpdateImages handles PATCH /api/v1/users/me/images. Either or both of the
// avatar and cover image parts may be present. New files are uploaded before
// the account row changes; the replaced files are removed afterwards on a
// best-effort basis.
func (h UserHandler) UpdateImages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	if err := r.ParseMultipartForm(imageUploadLimit); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart payload"})
		return
	}

	user, err := h.Users.FindByID(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err, "unable to load account")
		return
	}

	avatar, err := h.uploadPart(r, "avatar", "avatars")
	if err != nil {
		respondError(ctx, w, err, "unable to store avatar")
		return
	}
	coverImage, err := h.uploadPart(r, "coverImage", "covers")
	if err != nil {
		respondError(ctx, w, err, "unable to store cover image")
		return
	}
	if avatar == "" && coverImage == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "avatar or coverImage file is required"})
		return
	}

	if err := h.Users.UpdateImages(ctx, viewerID, avatar, coverImage); err != nil {
		respondError(ctx, w, err, "unable to update images")
		return
	}

	var replaced []string
	if avatar != "" && user.Avatar != "" {
		replaced = append(replaced, user.Avatar)
	}
	if coverImage != "" && user.CoverImage != "" {
		replaced = append(replaced, user.CoverImage)
	}
	if len(replaced) > 0 {
		if err := h.Assets.Delete(ctx, replaced); err != nil {
			logger.Warn("failed to remove replaced images", "error", err, "userId", viewerID)
		}
	}

	if avatar != "" {
		user.Avatar = avatar
	}
	if coverImage != "" {
		user.CoverImage = coverImage
	}

	respondJSON(ctx, w, http.StatusOK, accountResponse{
		UserSummary: user.PublicProfile(),
		Email:       user.Email,
		CoverImage:  user.CoverImage,
		CreatedAt:   user.CreatedAt,
	})
}

// ChangePassword handles POST /api/v1/users/me/password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.CurrentPassword == "" || len(req.NewPassword) < 8 {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "current password and a new password of at least 8 characters are required"})
		return
	}

	user, err := h.Users.FindByID(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err, "unable to load account")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "current password is incorrect"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, err, "failed to secure password")
		return
	}

	if err := h.Users.UpdatePassword(ctx, viewerID, string(hashed)); err != nil {
		respondError(ctx, w, err, "unable to change password")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "password changed"})
}

// Channel handles GET /api/v1/channels/{username}, the public channel page.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.TrimSpace(strings.ToLower(r.PathValue("username")))
	if username == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, username, auth.ViewerID(ctx))
	if err != nil {
		respondError(ctx, w, err, "channel not found")
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile)
}

// uploadPart stores one optional multipart file and returns its location, or
// "" when the part is absent.
func (h UserHandler) uploadPart(r *http.Request, field, prefix string) (string, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	return h.Assets.Save(r.Context(), objectKey(prefix, header), file)
}

func objectKey(prefix string, header *multipart.FileHeader) string {
	ext := path.Ext(header.Filename)
	return fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)
}

type accountResponse struct {
	models.UserSummary
	Email      string    `json:"email"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
