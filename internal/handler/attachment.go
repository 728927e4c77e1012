package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/note-vault/internal/service"
)

// AttachmentHandler exposes file upload, listing, download and
// removal for note attachments.
type AttachmentHandler struct {
	Attachments *service.AttachmentService
}

func NewAttachmentHandler(attachments *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{Attachments: attachments}
}

// Upload handles POST /attachments/note/:noteId with a multipart
// "file" field.
func (h *AttachmentHandler) Upload(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	noteID, err := paramID(c, "noteId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid note id"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}
	defer src.Close()

	mime := fh.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}

	att, err := h.Attachments.Create(c.Request().Context(), uid, noteID, service.UploadInput{
		Filename: fh.Filename,
		MimeType: mime,
		Size:     fh.Size,
		Content:  src,
	})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, att)
}

// ListForNote handles GET /attachments/note/:noteId.
func (h *AttachmentHandler) ListForNote(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	noteID, err := paramID(c, "noteId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid note id"})
	}
	atts, err := h.Attachments.ListForNote(c.Request().Context(), uid, noteID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, atts)
}

// Get handles GET /attachments/:id: metadata only.
func (h *AttachmentHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	att, err := h.Attachments.GetByID(c.Request().Context(), uid, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, att)
}

// Download handles GET /attachments/:id/download and streams the
// stored bytes with the original filename.
func (h *AttachmentHandler) Download(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	att, rc, err := h.Attachments.Open(c.Request().Context(), uid, id)
	if err != nil {
		return httpError(c, err)
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, att.Filename))
	return c.Stream(http.StatusOK, att.MimeType, rc)
}

// Delete handles DELETE /attachments/:id.
func (h *AttachmentHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Attachments.Remove(c.Request().Context(), uid, id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
