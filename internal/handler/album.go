package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/storage"
	"github.com/codedbycupidity/alignr/internal/store"
	"github.com/codedbycupidity/alignr/internal/websocket"
)

const maxPhotoBytes = 10 << 20 // 10 MiB

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type AlbumHandler struct {
	eventStore *store.EventStore
	blockStore *store.BlockStore
	albumStore *store.AlbumStore
	guestStore *store.GuestStore
	photos     *storage.Store
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewAlbumHandler(
	es *store.EventStore,
	bs *store.BlockStore,
	as *store.AlbumStore,
	gs *store.GuestStore,
	photos *storage.Store,
	hub *websocket.Hub,
	logger *slog.Logger,
) *AlbumHandler {
	return &AlbumHandler{
		eventStore: es,
		blockStore: bs,
		albumStore: as,
		guestStore: gs,
		photos:     photos,
		hub:        hub,
		logger:     logger,
	}
}

// Upload accepts one multipart photo and stores the bytes in object storage,
// keeping only metadata in the database.
func (h *AlbumHandler) Upload(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeAlbum)
	if serr != nil {
		serr.write(w)
		return
	}

	if !h.photos.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "photo storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedPhotoTypes[contentType]
	if !ok {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported image type")
		return
	}

	_, by, serr := participantIdentity(r, h.guestStore, r.FormValue("name"))
	if serr != nil {
		serr.write(w)
		return
	}

	key := storage.PhotoKey(event.ID, block.ID, uuid.NewString()+ext)
	if err := h.photos.Put(r.Context(), key, bytes.NewReader(data), contentType, int64(len(data))); err != nil {
		h.logger.Error("upload photo", "block_id", block.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}

	caption := strings.TrimSpace(r.FormValue("caption"))
	if caption == "" {
		caption = path.Base(header.Filename)
	}

	photo, err := h.albumStore.Create(block.ID, key, caption, contentType, int64(len(data)), by)
	if err != nil {
		h.logger.Error("save photo metadata", "block_id", block.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("album", "uploaded", block.ID, nil))
	}
	writeJSON(w, http.StatusCreated, photo)
}

func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeAlbum)
	if serr != nil {
		serr.write(w)
		return
	}

	photos, err := h.albumStore.ListByBlock(block.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list photos")
		return
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	writeJSON(w, http.StatusOK, photos)
}

// sharedPhoto loads photo metadata scoped to the shared event.
func (h *AlbumHandler) sharedPhoto(w http.ResponseWriter, r *http.Request, event *model.Event) *model.Photo {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}
	photo, err := h.albumStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load photo")
		return nil
	}
	if photo == nil {
		writeError(w, http.StatusNotFound, "photo not found")
		return nil
	}
	block, err := h.blockStore.GetByID(photo.BlockID)
	if err != nil || block == nil || block.EventID != event.ID {
		writeError(w, http.StatusNotFound, "photo not found")
		return nil
	}
	return photo
}

// Serve streams the image bytes from object storage.
func (h *AlbumHandler) Serve(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	photo := h.sharedPhoto(w, r, event)
	if photo == nil {
		return
	}

	body, contentType, err := h.photos.Get(r.Context(), photo.StorageKey)
	if err != nil {
		h.logger.Error("download photo", "photo_id", photo.ID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch photo")
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = photo.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	io.Copy(w, body)
}

func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	photo := h.sharedPhoto(w, r, event)
	if photo == nil {
		return
	}

	if err := h.albumStore.Delete(photo.ID); err != nil {
		h.logger.Error("delete photo", "photo_id", photo.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete photo")
		return
	}
	// Losing the object after the row is gone just strands bytes; log and move on
	if err := h.photos.Delete(r.Context(), photo.StorageKey); err != nil {
		h.logger.Error("delete photo object", "key", photo.StorageKey, "error", err)
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("album", "deleted", photo.BlockID, nil))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
