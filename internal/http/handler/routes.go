package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime"
	"time"

	"github.com/gofiber/fiber/v2"

	"filedepot/internal/config"
	"filedepot/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse the request, call the service, map the result
// onto the status/message contract.
func RegisterRoutes(app *fiber.App, db *sql.DB, fileSvc service.FileService, upload config.UploadConfig) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/files", ListFiles(fileSvc))
	app.Post("/files", UploadFile(fileSvc, upload))
	app.Get("/files/:key/download", DownloadFile(fileSvc))
	app.Delete("/files/:key", DeleteFile(fileSvc))
}

// HealthCheck reports readiness; it checks metadata store connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadFile accepts a multipart form with a "file" part and an optional
// "description" field.
//
// @Summary Upload a file
// @Accept multipart/form-data
// @Success 201
// @Router /files [post]
func UploadFile(fileSvc service.FileService, upload config.UploadConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeStatus(c, fiber.StatusBadRequest, "error", "File upload failed.")
		}

		f, err := fh.Open()
		if err != nil {
			return writeStatus(c, fiber.StatusBadRequest, "error", "File upload failed.")
		}
		defer f.Close()

		stored, err := fileSvc.Upload(c.UserContext(), f, fh.Filename, c.FormValue("description"), fh.Size)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrFileTooLarge):
				return writeStatus(c, fiber.StatusBadRequest, "error",
					fmt.Sprintf("File is too large (max %dMB).", upload.MaxSizeBytes/(1024*1024)))
			case errors.Is(err, service.ErrFileType):
				return writeStatus(c, fiber.StatusBadRequest, "error",
					"Invalid file type. Only text, PDF, Word, PowerPoint and Excel files are allowed.")
			case errors.Is(err, service.ErrUploadTransport):
				return writeStatus(c, fiber.StatusBadRequest, "error", "File upload failed.")
			default:
				// Backend failure: surface the backend-provided detail.
				return writeStatus(c, fiber.StatusBadGateway, "error", "Upload failed: "+err.Error())
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"status":  "success",
			"message": "File uploaded successfully.",
			"file":    stored,
		})
	}
}

// ListFiles returns every stored file, most recent first, each with a
// time-limited download URL. A metadata scan failure degrades the listing
// to empty with a warning instead of failing the response.
//
// @Summary List files
// @Produce json
// @Success 200
// @Router /files [get]
func ListFiles(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := fileSvc.List(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"status":  "warning",
				"message": "Could not load file list.",
				"files":   []service.FileView{},
			})
		}
		return c.JSON(fiber.Map{
			"status": "success",
			"files":  res.Items,
		})
	}
}

// DownloadFile streams the stored bytes directly, with the original
// filename in the Content-Disposition header. Presigned URLs from the
// listing are the usual download path; this endpoint serves clients that
// hold only the key.
//
// @Summary Download a file
// @Success 200
// @Router /files/{key}/download [get]
func DownloadFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")

		rc, info, f, err := fileSvc.Download(c.UserContext(), key)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeStatus(c, fiber.StatusBadGateway, "error", "Download failed: "+err.Error())
		}

		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		c.Set(fiber.HeaderContentDisposition,
			mime.FormatMediaType("attachment", map[string]string{"filename": f.OriginalName}))

		return c.SendStream(rc, int(info.Size))
	}
}

// DeleteFile removes both the blob and the metadata record. Deleting a key
// that no longer exists still reports success.
//
// @Summary Delete a file
// @Success 200
// @Router /files/{key} [delete]
func DeleteFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")

		if err := fileSvc.Delete(c.UserContext(), key); err != nil {
			if errors.Is(err, service.ErrKeyRequired) {
				return writeStatus(c, fiber.StatusBadRequest, "error", "Delete failed: key is required.")
			}
			return writeStatus(c, fiber.StatusBadGateway, "error", "Delete failed: "+err.Error())
		}

		return writeStatus(c, fiber.StatusOK, "success", "File deleted successfully.")
	}
}
