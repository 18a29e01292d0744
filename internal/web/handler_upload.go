package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/journey"
)

const maxPhotoSize = 10 * 1024 * 1024 // 10 MB

// allowedImageTypes is the set of MIME types accepted for visit photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniffing standard (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// handleReportVisit accepts a multipart form with location, notes and a
// photo file, and appends the visit to the attendance journey.
func (s *Server) handleReportVisit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1<<20)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		s.writeError(w, r, domain.NewValidationError("photo", "failed to parse form"))
		return
	}

	report := journey.VisitReport{
		Location: r.FormValue("location"),
		Notes:    r.FormValue("notes"),
	}

	file, _, err := r.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Left empty; the journey rejects visits without a photo.
	case err != nil:
		s.writeError(w, r, domain.NewValidationError("photo", "failed to read photo"))
		return
	default:
		defer closeWithLog(file, "upload file", s.logger)
		data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize+1))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if len(data) > maxPhotoSize {
			s.writeError(w, r, domain.NewValidationError("photo", "photo is too large"))
			return
		}
		mimeType, ok := allowedImageMIME(data)
		if !ok && len(data) > 0 {
			s.writeError(w, r, domain.NewValidationError("photo", "unsupported image format"))
			return
		}
		report.Photo = data
		report.MimeType = mimeType
	}

	rec, err := s.svc.Journey.ReportVisit(r.Context(), id, report)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	id, index, err := journeyIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reader, mimeType, err := s.svc.Journey.Photo(r.Context(), id, index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "attendance_id", id, "index", index, "error", err)
	}
}

func (s *Server) handleRedactPhoto(w http.ResponseWriter, r *http.Request) {
	id, index, err := journeyIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Journey.RedactPhoto(r.Context(), id, index); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func journeyIndex(r *http.Request) (string, int, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		return "", 0, domain.NewValidationError("index", "invalid journey index")
	}
	return r.PathValue("id"), index, nil
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
