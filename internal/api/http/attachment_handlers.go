package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quotehub/quotehub/internal/infrastructure/blobstore"
)

const maxAttachmentBytes = 10 * 1024 * 1024

var attachmentExts = map[string]string{
	"audio/webm": "webm",
	"audio/mpeg": "mp3",
	"audio/ogg":  "ogg",
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

func (s *Server) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if kind != "voice" && kind != "image" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "kind must be voice or image")
		return
	}

	body := io.Reader(r.Body)
	contentType := r.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mt, "multipart/") {
		if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "bad multipart body")
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "missing file field")
			return
		}
		defer f.Close()
		body = f
		contentType = hdr.Header.Get("Content-Type")
	}

	ext := attachmentExts[contentType]
	ref, err := s.attachments.Save(kind, ext, body, maxAttachmentBytes)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"ref": ref})
}

func (s *Server) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "kind") + "/" + chi.URLParam(r, "name")
	if err := s.attachments.Delete(ref); err != nil {
		if errors.Is(err, blobstore.ErrInvalidRef) {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid attachment reference")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

func (s *Server) getAttachment(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "kind") + "/" + chi.URLParam(r, "name")
	f, err := s.attachments.Open(ref)
	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrNotFound):
			respondError(w, http.StatusNotFound, "NOT_FOUND", "attachment not found")
		case errors.Is(err, blobstore.ErrInvalidRef):
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid attachment reference")
		default:
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}
