package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/note-vault/internal/model"
	"github.com/iliyamo/note-vault/internal/queue"
	"github.com/iliyamo/note-vault/internal/service"
)

// NoteHandler exposes the note CRUD and organization endpoints.
type NoteHandler struct {
	Notes *service.NoteService
}

func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{Notes: notes}
}

// ----- DTOs -----

type createNoteReq struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	CategoryIDs []uint64 `json:"categoryIds"`
}

type updateNoteReq struct {
	Title       *string   `json:"title"`
	Content     *string   `json:"content"`
	IsArchived  *bool     `json:"isArchived"`
	IsPinned    *bool     `json:"isPinned"`
	CategoryIDs *[]uint64 `json:"categoryIds"`
}

// listQuery parses the shared filter/sort/page query parameters.
func listQuery(c echo.Context) service.ListNotesQuery {
	var q service.ListNotesQuery
	if v := c.QueryParam("categoryId"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			q.CategoryID = &id
		}
	}
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Page = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Limit = n
		}
	}
	q.SortBy = c.QueryParam("sortBy")
	q.SortOrder = c.QueryParam("sortOrder")
	return q
}

// Create handles POST /notes.
func (h *NoteHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createNoteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	note, err := h.Notes.Create(c.Request().Context(), uid, service.CreateNoteInput{
		Title:       req.Title,
		Content:     req.Content,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, note)
}

// List handles GET /notes: active notes, filtered and paged.
func (h *NoteHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, err := h.Notes.FindActive(c.Request().Context(), uid, listQuery(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// ListArchived handles GET /notes/archived.
func (h *NoteHandler) ListArchived(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, err := h.Notes.FindArchived(c.Request().Context(), uid, listQuery(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Get handles GET /notes/:id.
func (h *NoteHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	note, err := h.Notes.GetByID(c.Request().Context(), uid, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}

// Update handles PATCH /notes/:id.
func (h *NoteHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateNoteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must not be empty"})
		}
		req.Title = &t
	}

	note, err := h.Notes.Update(c.Request().Context(), uid, id, service.UpdateNoteInput{
		Title:       req.Title,
		Content:     req.Content,
		IsArchived:  req.IsArchived,
		IsPinned:    req.IsPinned,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}

// Delete handles DELETE /notes/:id. A note.deleted event goes to the
// queue best-effort after the row and blobs are gone.
func (h *NoteHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	note, attachments, err := h.Notes.Remove(c.Request().Context(), uid, id)
	if err != nil {
		return httpError(c, err)
	}

	_ = queue.PublishNoteDeleted(c.Request().Context(), queue.NoteDeletedEvent{
		NoteID:          note.ID,
		UserID:          uid,
		Title:           note.Title,
		AttachmentCount: attachments,
		DeletedAt:       time.Now().UTC().Format(time.RFC3339),
	})
	return c.NoContent(http.StatusNoContent)
}

// ToggleArchive handles PATCH /notes/:id/archive.
func (h *NoteHandler) ToggleArchive(c echo.Context) error {
	return h.toggle(c, h.Notes.ToggleArchive)
}

// TogglePin handles PATCH /notes/:id/pin.
func (h *NoteHandler) TogglePin(c echo.Context) error {
	return h.toggle(c, h.Notes.TogglePin)
}

func (h *NoteHandler) toggle(c echo.Context, fn func(ctx context.Context, userID, id uint64) (*model.Note, error)) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	note, err := fn(c.Request().Context(), uid, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}

// AttachCategory handles POST /notes/:noteId/categories/:categoryId.
func (h *NoteHandler) AttachCategory(c echo.Context) error {
	return h.categoryLink(c, h.Notes.AddCategory)
}

// DetachCategory handles DELETE /notes/:noteId/categories/:categoryId.
func (h *NoteHandler) DetachCategory(c echo.Context) error {
	return h.categoryLink(c, h.Notes.RemoveCategory)
}

func (h *NoteHandler) categoryLink(c echo.Context, fn func(ctx context.Context, userID, noteID, categoryID uint64) (*model.Note, error)) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	noteID, err := paramID(c, "noteId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid note id"})
	}
	categoryID, err := paramID(c, "categoryId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	note, err := fn(c.Request().Context(), uid, noteID, categoryID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}
