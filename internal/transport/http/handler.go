package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cwrk-planet/underbyte/internal/domain"
	"github.com/cwrk-planet/underbyte/internal/service"
	"github.com/cwrk-planet/underbyte/internal/storage"
	"github.com/cwrk-planet/underbyte/pkg/errs"
	"github.com/cwrk-planet/underbyte/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	roomSvc   *service.RoomService
	memberSvc *service.MemberService
	chatSvc   *service.ChatService
	uploads   *storage.Local
}

func NewHandler(room *service.RoomService, member *service.MemberService, chat *service.ChatService, uploads *storage.Local) *Handler {
	return &Handler{
		roomSvc:   room,
		memberSvc: member,
		chatSvc:   chat,
		uploads:   uploads,
	}
}

func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := errs.ToHTTP(err)
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		httputil.Error(w, status, "Room not found")
	case errors.Is(err, domain.ErrRoomExists):
		httputil.Error(w, status, "Room already exists")
	case status == http.StatusInternalServerError:
		httputil.Logger(r.Context()).Error(op, slog.Any("err", err))
		httputil.Error(w, status, "internal error")
	default:
		httputil.Error(w, status, err.Error())
	}
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	room, err := h.roomSvc.CreateRoom(r.Context(), service.CreateRoomInput{
		Code:         req.RoomCode,
		HostName:     req.HostName,
		GuestName:    req.GuestName,
		RoomTimeout:  req.RoomTimeout,
		MessageTimer: req.MessageTimer,
		CreatedAt:    req.CreatedAt,
		Status:       req.Status,
	})
	if err != nil {
		writeError(w, r, "handler.CreateRoom", err)
		return
	}

	httputil.JSON(w, http.StatusOK, room)
}

// GET /rooms/{code}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomSvc.GetRoom(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, "handler.GetRoom", err)
		return
	}
	httputil.JSON(w, http.StatusOK, room)
}

// DELETE /rooms/{code}
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.roomSvc.DeleteRoom(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeError(w, r, "handler.DeleteRoom", err)
		return
	}
	httputil.OK(w)
}

// POST /rooms/{code}/join?guest_name=
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if _, err := h.memberSvc.JoinRoom(r.Context(), code, r.URL.Query().Get("guest_name")); err != nil {
		writeError(w, r, "handler.JoinRoom", err)
		return
	}
	httputil.OK(w)
}

// POST /rooms/{code}/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	msg, err := h.chatSvc.Send(r.Context(), chi.URLParam(r, "code"), service.SendInput{
		SenderName: req.SenderName,
		Content:    req.Content,
		FileURL:    req.FileURL,
		FileType:   req.FileType,
		Timestamp:  req.Timestamp,
	})
	if err != nil {
		writeError(w, r, "handler.SendMessage", err)
		return
	}
	httputil.JSON(w, http.StatusOK, msg)
}

// GET /rooms/{code}/messages
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	items, err := h.chatSvc.History(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, "handler.ListMessages", err)
		return
	}
	httputil.JSON(w, http.StatusOK, items)
}

// POST /upload (multipart, field "file")
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploads.MaxBytes > 0 {
		// room for multipart framing around the file itself
		r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes+1<<20)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			httputil.Error(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		httputil.Error(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	st, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		writeError(w, r, "handler.Upload", err)
		return
	}

	httputil.JSON(w, http.StatusOK, UploadResponse{
		URL:      st.URL,
		Filename: header.Filename,
		Type:     header.Header.Get("Content-Type"),
	})
}
