package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Data-Dreamersambit/Audio-Player/internal/middleware"
	"github.com/Data-Dreamersambit/Audio-Player/internal/services"
	"github.com/Data-Dreamersambit/Audio-Player/internal/utils"
)

type AudioHandler struct {
	catalog    *services.CatalogService
	engagement *services.EngagementService
}

func NewAudioHandler(catalog *services.CatalogService, engagement *services.EngagementService) *AudioHandler {
	return &AudioHandler{catalog: catalog, engagement: engagement}
}

// GET /api/audios
func (h *AudioHandler) List(c *fiber.Ctx) error {
	params := services.ListParams{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Author:   c.Query("author"),
		Sort:     c.Query("sort"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 6),
	}
	if fqt := c.Query("firstQueryTime"); fqt != "" {
		t, err := time.Parse(time.RFC3339, fqt)
		if err != nil {
			return utils.JSONError(c, fiber.StatusBadRequest, "invalid firstQueryTime")
		}
		params.FirstQueryTime = t
	}

	result, err := h.catalog.List(c.Context(), params)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":        true,
		"message":        "Audios fetched successfully",
		"firstQueryTime": result.FirstQueryTime.UTC().Format(time.RFC3339Nano),
		"page":           result.Page,
		"limit":          result.Limit,
		"totalPages":     result.TotalPages,
		"totalAudios":    result.TotalAudios,
		"audios":         result.Audios,
	})
}

// GET /api/audios/:audioId
func (h *AudioHandler) Get(c *fiber.Ctx) error {
	audio, err := h.catalog.Get(c.Context(), c.Params("audioId"))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Audio successfully fetched",
		"audio":   audio,
	})
}

// POST /api/audios (multipart: thumbnailImage, audioFile + metadata fields)
func (h *AudioHandler) Upload(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	params := services.UploadParams{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
	}
	if d := c.FormValue("duration"); d != "" {
		dur, err := strconv.ParseFloat(d, 64)
		if err != nil {
			return utils.JSONError(c, fiber.StatusBadRequest, "invalid duration")
		}
		params.Duration = dur
	}
	if form, err := c.MultipartForm(); err == nil {
		for _, raw := range form.Value["tags"] {
			params.Tags = append(params.Tags, strings.Split(raw, ",")...)
		}
	}

	thumb, err := readFormFile(c, "thumbnailImage")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "thumbnail and audio files are required")
	}
	audioFile, err := readFormFile(c, "audioFile")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "thumbnail and audio files are required")
	}
	params.Thumbnail = thumb
	params.AudioFile = audioFile

	audio, err := h.catalog.Upload(c.Context(), userID, params)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Audio uploaded successfully",
		"audio":   audio,
	})
}

// PUT /api/audios/:audioId/like
func (h *AudioHandler) ToggleLike(c *fiber.Ctx) error {
	result, err := h.engagement.ToggleLike(c.Context(), c.Params("audioId"), middleware.UserID(c))
	if err != nil {
		return utils.RespondError(c, err)
	}

	message := "Audio successfully liked."
	if !result.Liked {
		message = "Like removed from this audio."
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"message":    message,
		"liked":      result.Liked,
		"audioId":    result.AudioID,
		"userId":     result.UserID,
		"totalLikes": result.TotalLikes,
		"user":       result.User,
	})
}

// PUT /api/audios/:audioId/bookmark
func (h *AudioHandler) ToggleBookmark(c *fiber.Ctx) error {
	result, err := h.engagement.ToggleBookmark(c.Context(), c.Params("audioId"), middleware.UserID(c))
	if err != nil {
		return utils.RespondError(c, err)
	}

	message := "Audio added to your saved list."
	if !result.Bookmarked {
		message = "Audio removed from your saved list."
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":    message,
		"bookmarked": result.Bookmarked,
		"user":       result.User,
		"audioId":    result.AudioID,
	})
}

// PUT /api/audios/:audioId/viewed
func (h *AudioHandler) RecordView(c *fiber.Ctx) error {
	audio, alreadyViewed, err := h.engagement.RecordView(c.Context(), c.Params("audioId"), middleware.UserID(c))
	if err != nil {
		return utils.RespondError(c, err)
	}
	if alreadyViewed {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"message": "Audio already viewed by the user",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Audio updated as viewed",
		"audio":   audio,
	})
}

type addCommentReq struct {
	Content string `json:"content"`
}

// POST /api/audios/:audioId/comment
func (h *AudioHandler) AddComment(c *fiber.Ctx) error {
	var req addCommentReq
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}

	comment, err := h.engagement.AddComment(c.Context(), c.Params("audioId"), middleware.UserID(c), req.Content)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Comment added successfully",
		"comment": comment,
	})
}

// GET /api/search?q=
func (h *AudioHandler) Search(c *fiber.Ctx) error {
	results, err := h.catalog.SearchAll(c.Context(), c.Query("q"))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Audio content retrieved successfully",
		"data":    results,
	})
}

func readFormFile(c *fiber.Ctx, field string) (*services.UploadFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return uploadFileFromHeader(fh)
}

func uploadFileFromHeader(fh *multipart.FileHeader) (*services.UploadFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &services.UploadFile{Filename: fh.Filename, ContentType: ct, Data: data}, nil
}
