package handlers

import (
	"database/sql"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	db *sql.DB
}

func NewUserHandler(db *sql.DB) *UserHandler {
	return &UserHandler{db: db}
}

func (h *UserHandler) fetchUser(id int64) (*models.User, error) {
	var (
		u       models.User
		lat     sql.NullFloat64
		lon     sql.NullFloat64
		picture sql.NullString
		blocked sql.NullInt64
	)
	err := h.db.QueryRow(`
		SELECT id, name, email, phone, address, zone, latitude, longitude,
		       profile_picture, is_blocked, blocked_by, created_at
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.Zone,
		&lat, &lon, &picture, &u.IsBlocked, &blocked, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		u.Latitude = &lat.Float64
	}
	if lon.Valid {
		u.Longitude = &lon.Float64
	}
	if picture.Valid {
		u.ProfilePicture = &picture.String
	}
	if blocked.Valid {
		u.BlockedBy = &blocked.Int64
	}
	return &u, nil
}

// Profile handles GET /api/user/profile.
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	user, err := h.fetchUser(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Message: "User not found"})
	}
	if err != nil {
		log.Printf("❌ Error consultando perfil de usuario %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}
	return c.JSON(user)
}

// UpdateProfile handles PUT /api/user/profile.
// Multipart: campos de texto opcionales + profilePicture opcional. Los campos
// vacíos se ignoran, igual que en los updates parciales del dashboard.
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	sets := []string{}
	args := []any{}

	if v := strings.TrimSpace(c.FormValue("name")); v != "" {
		sets = append(sets, "name = ?")
		args = append(args, v)
	}
	if v := normalizeEmail(c.FormValue("email")); v != "" {
		sets = append(sets, "email = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(c.FormValue("phone")); v != "" {
		sets = append(sets, "phone = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(c.FormValue("address")); v != "" {
		sets = append(sets, "address = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(c.FormValue("latitude")); v != "" {
		sets = append(sets, "latitude = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(c.FormValue("longitude")); v != "" {
		sets = append(sets, "longitude = ?")
		args = append(args, v)
	}

	if file, err := c.FormFile("profilePicture"); err == nil {
		filename := uuid.NewString() + filepath.Ext(file.Filename)
		if err := c.SaveFile(file, uploadPath(filename)); err != nil {
			log.Printf("❌ Error guardando foto de perfil: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to store image"})
		}
		sets = append(sets, "profile_picture = ?")
		args = append(args, filename)
	}

	if len(sets) > 0 {
		args = append(args, userID)
		_, err = h.db.Exec("UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			if strings.Contains(err.Error(), "Duplicate entry") {
				if strings.Contains(err.Error(), "phone") {
					return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Phone number already exists"})
				}
				return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email already exists"})
			}
			log.Printf("❌ Error actualizando perfil de usuario %d: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
		}
	}

	user, err := h.fetchUser(userID)
	if err != nil {
		log.Printf("❌ Error recuperando perfil actualizado %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// DeleteAccount handles DELETE /api/user/delete-account.
// Cascada: foto de perfil, imágenes de reclamos, reclamos (vía FK) y la cuenta.
func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	user, err := h.fetchUser(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Message: "User not found"})
	}
	if err != nil {
		log.Printf("❌ Error consultando usuario %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	if user.ProfilePicture != nil {
		if err := os.Remove(uploadPath(*user.ProfilePicture)); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️ Error borrando foto de perfil: %v", err)
		}
	}

	// Borrar imágenes de reclamos antes de que la FK se lleve las filas
	rows, err := h.db.Query(`SELECT image FROM complaints WHERE user_id = ?`, userID)
	if err == nil {
		for rows.Next() {
			var image string
			if rows.Scan(&image) == nil && image != "" {
				if err := os.Remove(uploadPath(image)); err != nil && !os.IsNotExist(err) {
					log.Printf("⚠️ Error borrando imagen de reclamo: %v", err)
				}
			}
		}
		rows.Close()
	}

	// ON DELETE CASCADE elimina los reclamos junto con la cuenta
	res, err := h.db.Exec(`DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		log.Printf("❌ Error eliminando usuario %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Message: "User not found"})
	}

	log.Printf("✅ Cuenta de usuario eliminada: id=%d", userID)
	return c.JSON(models.MessageResponse{Message: "Account and all associated data deleted successfully"})
}
