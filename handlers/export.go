package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// sanitizeFilename replaces characters that are unsafe in a
// Content-Disposition filename.
func sanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-", "\"", "")
	s = replacer.Replace(s)
	if s == "" {
		return "export"
	}
	return s
}

// downloadName builds "<base>_<suffix>_<date>.<ext>".
func downloadName(base, suffix, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", sanitizeFilename(base), suffix, time.Now().Format("2006-01-02"), ext)
}

// sendAttachment writes body as a file download.
func sendAttachment(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(body)
	return err
}

// badRequest returns ozzo field errors as a JSON map, other errors as a
// plain message.
func badRequest(e *core.RequestEvent, err error) error {
	if fieldErrs, ok := err.(validation.Errors); ok {
		return e.JSON(http.StatusBadRequest, map[string]any{"errors": fieldErrs})
	}
	return e.JSON(http.StatusBadRequest, map[string]any{"message": err.Error()})
}
