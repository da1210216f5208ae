package handlers

import (
	"database/sql"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MunicipalityHandler struct {
	db *sql.DB
}

func NewMunicipalityHandler(db *sql.DB) *MunicipalityHandler {
	return &MunicipalityHandler{db: db}
}

func (h *MunicipalityHandler) fetchMunicipality(id int64) (*models.Municipality, error) {
	var (
		m       models.Municipality
		picture sql.NullString
	)
	err := h.db.QueryRow(`
		SELECT id, name, email, reg_number, location, profile_picture, created_at
		FROM municipalities WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.Email, &m.RegNumber, &m.Location, &picture, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if picture.Valid {
		m.ProfilePicture = &picture.String
	}
	return &m, nil
}

// Profile handles GET /api/municipality/profile.
func (h *MunicipalityHandler) Profile(c *fiber.Ctx) error {
	munID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	municipality, err := h.fetchMunicipality(munID)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Message: "Municipality not found"})
	}
	if err != nil {
		log.Printf("❌ Error consultando municipalidad %d: %v", munID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}
	return c.JSON(municipality)
}

// UpdateProfile handles PUT /api/municipality/profile.
func (h *MunicipalityHandler) UpdateProfile(c *fiber.Ctx) error {
	munID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	sets := []string{}
	args := []any{}

	if v := strings.TrimSpace(c.FormValue("name")); v != "" {
		sets = append(sets, "name = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(c.FormValue("location")); v != "" {
		sets = append(sets, "location = ?")
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
		args = append(args, munID)
		if _, err := h.db.Exec("UPDATE municipalities SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
			log.Printf("❌ Error actualizando municipalidad %d: %v", munID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
		}
	}

	municipality, err := h.fetchMunicipality(munID)
	if err != nil {
		log.Printf("❌ Error recuperando municipalidad %d: %v", munID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}
	return c.JSON(fiber.Map{
		"message":      "Profile updated successfully",
		"municipality": municipality,
	})
}

// BlockUser handles POST /api/municipality/block-user/:userId.
// El bloqueo corta el próximo login del usuario (no las sesiones vigentes;
// ver la decisión sobre revocación en el login handler).
func (h *MunicipalityHandler) BlockUser(c *fiber.Ctx) error {
	munID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid user id"})
	}

	res, err := h.db.Exec(`UPDATE users SET is_blocked = 1, blocked_by = ? WHERE id = ?`, munID, userID)
	if err != nil {
		log.Printf("❌ Error bloqueando usuario %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		var exists int64
		if err := h.db.QueryRow(`SELECT id FROM users WHERE id = ?`, userID).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Message: "User not found"})
		}
	}

	log.Printf("🚫 Usuario %d bloqueado por municipalidad %d", userID, munID)
	return c.JSON(models.MessageResponse{Message: "User blocked successfully"})
}

// UnblockUser handles POST /api/municipality/unblock-user/:userId.
func (h *MunicipalityHandler) UnblockUser(c *fiber.Ctx) error {
	munID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid user id"})
	}

	if _, err := h.db.Exec(`UPDATE users SET is_blocked = 0, blocked_by = NULL WHERE id = ? AND blocked_by = ?`, userID, munID); err != nil {
		log.Printf("❌ Error desbloqueando usuario %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	log.Printf("✅ Usuario %d desbloqueado por municipalidad %d", userID, munID)
	return c.JSON(models.MessageResponse{Message: "User unblocked successfully"})
}

// BlockedUsers handles GET /api/municipality/blocked-users.
func (h *MunicipalityHandler) BlockedUsers(c *fiber.Ctx) error {
	munID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	rows, err := h.db.Query(`
		SELECT id, name, email, phone FROM users
		WHERE is_blocked = 1 AND blocked_by = ?
		ORDER BY name
	`, munID)
	if err != nil {
		log.Printf("❌ Error consultando bloqueados: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}
	defer rows.Close()

	type blockedUser struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	blocked := []blockedUser{}
	for rows.Next() {
		var u blockedUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone); err != nil {
			continue
		}
		blocked = append(blocked, u)
	}
	return c.JSON(blocked)
}

// DeleteAccount handles DELETE /api/municipality/delete-account.
// Los reclamos asignados quedan con assigned_to NULL (FK ON DELETE SET NULL).
func (h *MunicipalityHandler) DeleteAccount(c *fiber.Ctx) error {
	munID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	municipality, err := h.fetchMunicipality(munID)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Message: "Municipality not found"})
	}
	if err != nil {
		log.Printf("❌ Error consultando municipalidad %d: %v", munID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	if municipality.ProfilePicture != nil {
		if err := os.Remove(uploadPath(*municipality.ProfilePicture)); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️ Error borrando foto de perfil: %v", err)
		}
	}

	if _, err := h.db.Exec(`DELETE FROM municipalities WHERE id = ?`, munID); err != nil {
		log.Printf("❌ Error eliminando municipalidad %d: %v", munID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	log.Printf("✅ Cuenta de municipalidad eliminada: id=%d", munID)
	return c.JSON(models.MessageResponse{Message: "Account deleted successfully"})
}
