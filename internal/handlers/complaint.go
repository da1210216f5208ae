package handlers

import (
	"database/sql"
	"errors"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/feed"
	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const uploadsDir = "./public/uploads"

type ComplaintHandler struct {
	db *sql.DB
}

func NewComplaintHandler(db *sql.DB) *ComplaintHandler {
	return &ComplaintHandler{db: db}
}

// principalID extrae el id de principal que dejó el role gate en Locals.
func principalID(c *fiber.Ctx) (int64, error) {
	raw, _ := c.Locals("principalID").(string)
	if raw == "" {
		return 0, errors.New("no principal in context")
	}
	return strconv.ParseInt(raw, 10, 64)
}

// ResolveZoneMunicipality mapea una zona "Zone N" a la municipalidad cuyo
// reg_number es N con dos dígitos ("Zone 7" -> "07"). Retorna nil sin error
// cuando la zona no referencia ninguna municipalidad registrada.
func ResolveZoneMunicipality(db *sql.DB, zone string) (*int64, error) {
	regNumber, ok := ZoneRegNumber(zone)
	if !ok {
		return nil, nil
	}
	var id int64
	err := db.QueryRow(`SELECT id FROM municipalities WHERE reg_number = ?`, regNumber).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ZoneRegNumber extrae el número de zona de un string "Zone N" y lo
// normaliza a dos dígitos.
func ZoneRegNumber(zone string) (string, bool) {
	parts := strings.Fields(strings.TrimSpace(zone))
	if len(parts) < 2 {
		return "", false
	}
	n := parts[1]
	if _, err := strconv.Atoi(n); err != nil {
		return "", false
	}
	if len(n) == 1 {
		n = "0" + n
	}
	return n, true
}

// CreateComplaint handles POST /api/complaint/register (user).
// Recibe multipart: imagen obligatoria + GPS obligatorio, descripción y zona
// opcionales. La imagen se guarda con nombre uuid para evitar colisiones.
func (h *ComplaintHandler) CreateComplaint(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	latRaw := strings.TrimSpace(c.FormValue("latitude"))
	lonRaw := strings.TrimSpace(c.FormValue("longitude"))
	description := strings.TrimSpace(c.FormValue("description"))
	zone := strings.TrimSpace(c.FormValue("zone"))

	file, fileErr := c.FormFile("image")
	if latRaw == "" || lonRaw == "" || fileErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Location (GPS) and image are required"})
	}

	latitude, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid latitude"})
	}
	longitude, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid longitude"})
	}

	filename := uuid.NewString() + filepath.Ext(file.Filename)
	if err := c.SaveFile(file, filepath.Join(uploadsDir, filename)); err != nil {
		log.Printf("❌ Error guardando imagen: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to store image"})
	}

	// Asignar municipalidad según la zona del reclamo
	assignedTo, err := ResolveZoneMunicipality(h.db, zone)
	if err != nil {
		log.Printf("⚠️ Error resolviendo municipalidad para zona %q: %v", zone, err)
		assignedTo = nil
	}

	res, err := h.db.Exec(`
		INSERT INTO complaints (user_id, description, image, latitude, longitude, zone, assigned_to)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, userID, description, filename, latitude, longitude, zone, assignedTo)
	if err != nil {
		log.Printf("❌ Error insertando reclamo: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to create complaint"})
	}

	complaintID, _ := res.LastInsertId()
	complaint, err := h.fetchComplaint(complaintID)
	if err != nil {
		log.Printf("⚠️ Reclamo %d creado pero no recuperable: %v", complaintID, err)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":     "Complaint registered successfully",
			"complaintId": complaintID,
		})
	}

	feed.PublishNewComplaint(complaint)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Complaint registered successfully",
		"complaint": complaint,
	})
}

const complaintSelect = `
	SELECT
		c.id, c.user_id, c.description, c.image, c.latitude, c.longitude,
		c.zone, c.status, c.assigned_to, c.created_at, c.updated_at,
		u.name, u.email, u.phone, u.address, u.profile_picture,
		m.name, m.location
	FROM complaints c
	JOIN users u ON u.id = c.user_id
	LEFT JOIN municipalities m ON m.id = c.assigned_to
`

func scanComplaint(row interface{ Scan(...any) error }) (*models.Complaint, error) {
	var (
		cmp      models.Complaint
		reporter models.ComplaintReporter
		munName  sql.NullString
		munLoc   sql.NullString
		profile  sql.NullString
	)
	err := row.Scan(
		&cmp.ID, &cmp.UserID, &cmp.Description, &cmp.Image, &cmp.Latitude, &cmp.Longitude,
		&cmp.Zone, &cmp.Status, &cmp.AssignedTo, &cmp.CreatedAt, &cmp.UpdatedAt,
		&reporter.Name, &reporter.Email, &reporter.Phone, &reporter.Address, &profile,
		&munName, &munLoc,
	)
	if err != nil {
		return nil, err
	}
	if profile.Valid {
		reporter.ProfilePicture = &profile.String
	}
	cmp.Reporter = &reporter
	if munName.Valid {
		cmp.Municipality = &models.ComplaintMunicipality{Name: munName.String, Location: munLoc.String}
	}
	return &cmp, nil
}

func (h *ComplaintHandler) fetchComplaint(id int64) (*models.Complaint, error) {
	return scanComplaint(h.db.QueryRow(complaintSelect+` WHERE c.id = ?`, id))
}

func (h *ComplaintHandler) listComplaints(where string, args ...any) ([]*models.Complaint, error) {
	rows, err := h.db.Query(complaintSelect+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	complaints := []*models.Complaint{}
	for rows.Next() {
		cmp, err := scanComplaint(rows)
		if err != nil {
			continue
		}
		complaints = append(complaints, cmp)
	}
	return complaints, rows.Err()
}

// MyComplaints handles GET /api/complaint/my-complaints (user).
func (h *ComplaintHandler) MyComplaints(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	complaints, err := h.listComplaints(` WHERE c.user_id = ? ORDER BY c.created_at DESC`, userID)
	if err != nil {
		log.Printf("❌ Error consultando reclamos: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to fetch complaints"})
	}
	return c.JSON(complaints)
}

// ComplaintStatus handles GET /api/complaint/status/:id (user).
func (h *ComplaintHandler) ComplaintStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid complaint id"})
	}

	complaint, err := h.fetchComplaint(id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Message: "Complaint not found"})
	}
	if err != nil {
		log.Printf("❌ Error consultando reclamo %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to fetch complaint"})
	}
	return c.JSON(complaint)
}

// ComplaintDetails handles GET /api/complaint/details/:id (público).
func (h *ComplaintHandler) ComplaintDetails(c *fiber.Ctx) error {
	return h.ComplaintStatus(c)
}

// NewComplaints handles GET /api/complaint/new-complaints (municipality).
// Reclamos de hoy, sin iniciar, asignados a esta municipalidad.
func (h *ComplaintHandler) NewComplaints(c *fiber.Ctx) error {
	munID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	complaints, err := h.listComplaints(`
		WHERE c.created_at >= CURDATE()
		AND c.created_at < CURDATE() + INTERVAL 1 DAY
		AND c.status = 'Not Started'
		AND c.assigned_to = ?
		ORDER BY c.created_at DESC`, munID)
	if err != nil {
		log.Printf("❌ Error consultando reclamos nuevos: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to fetch complaints"})
	}
	return c.JSON(complaints)
}

// UnsolvedComplaints handles GET /api/complaint/unsolved-complaints (municipality).
// Reclamos con más de 24 horas y aún no completados.
func (h *ComplaintHandler) UnsolvedComplaints(c *fiber.Ctx) error {
	munID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	complaints, err := h.listComplaints(`
		WHERE c.created_at < DATE_SUB(NOW(), INTERVAL 24 HOUR)
		AND c.status != 'Completed'
		AND c.assigned_to = ?
		ORDER BY c.created_at DESC`, munID)
	if err != nil {
		log.Printf("❌ Error consultando reclamos sin resolver: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to fetch complaints"})
	}
	return c.JSON(complaints)
}

// ProcessingComplaints handles GET /api/complaint/processing-complaints (municipality).
func (h *ComplaintHandler) ProcessingComplaints(c *fiber.Ctx) error {
	munID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	complaints, err := h.listComplaints(`
		WHERE c.status = 'Processing'
		AND c.assigned_to = ?
		ORDER BY c.created_at DESC`, munID)
	if err != nil {
		log.Printf("❌ Error consultando reclamos en proceso: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to fetch complaints"})
	}
	return c.JSON(complaints)
}

// ComplaintHistory handles GET /api/complaint/history (municipality).
func (h *ComplaintHandler) ComplaintHistory(c *fiber.Ctx) error {
	munID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}

	complaints, err := h.listComplaints(`
		WHERE c.status = 'Completed'
		AND c.assigned_to = ?
		ORDER BY c.updated_at DESC`, munID)
	if err != nil {
		log.Printf("❌ Error consultando historial: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to fetch complaints"})
	}
	return c.JSON(complaints)
}

// UpdateComplaintStatus handles PUT /api/complaint/update-status/:id (municipality).
func (h *ComplaintHandler) UpdateComplaintStatus(c *fiber.Ctx) error {
	munID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid complaint id"})
	}

	var req models.ComplaintStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "invalid json"})
	}
	if !models.ValidStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid status"})
	}

	res, err := h.db.Exec(`
		UPDATE complaints SET status = ?, assigned_to = ?, updated_at = NOW() WHERE id = ?
	`, req.Status, munID, id)
	if err != nil {
		log.Printf("❌ Error actualizando estado del reclamo %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to update status"})
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		// RowsAffected es 0 también cuando el estado no cambió; confirmar existencia
		var exists int64
		if err := h.db.QueryRow(`SELECT id FROM complaints WHERE id = ?`, id).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Message: "Complaint not found"})
		}
	}

	complaint, err := h.fetchComplaint(id)
	if err != nil {
		log.Printf("⚠️ Estado actualizado pero reclamo %d no recuperable: %v", id, err)
		return c.JSON(models.MessageResponse{Message: "Status updated successfully"})
	}

	feed.PublishStatusChange(complaint)

	return c.JSON(fiber.Map{
		"message":   "Status updated successfully",
		"complaint": complaint,
	})
}

// uploadPath arma la ruta en disco de un archivo subido.
func uploadPath(filename string) string {
	return filepath.Join(uploadsDir, filename)
}
