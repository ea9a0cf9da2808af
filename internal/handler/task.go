package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/store"
	"github.com/codedbycupidity/alignr/internal/websocket"
)

type TaskHandler struct {
	eventStore *store.EventStore
	blockStore *store.BlockStore
	taskStore  *store.TaskStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewTaskHandler(
	es *store.EventStore,
	bs *store.BlockStore,
	ts *store.TaskStore,
	hub *websocket.Hub,
	logger *slog.Logger,
) *TaskHandler {
	return &TaskHandler{
		eventStore: es,
		blockStore: bs,
		taskStore:  ts,
		hub:        hub,
		logger:     logger,
	}
}

type taskRequest struct {
	Title        string `json:"title"`
	AssigneeName string `json:"assignee_name"`
	Done         *bool  `json:"done"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeTask)
	if serr != nil {
		serr.write(w)
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	task, err := h.taskStore.Create(block.ID, req.Title, strings.TrimSpace(req.AssigneeName))
	if err != nil {
		h.logger.Error("create task", "block_id", block.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("task", "created", block.ID, nil))
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeTask)
	if serr != nil {
		serr.write(w)
		return
	}

	tasks, err := h.taskStore.ListByBlock(block.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// sharedTask loads a task by id and checks it belongs to the shared event.
func (h *TaskHandler) sharedTask(w http.ResponseWriter, r *http.Request, event *model.Event) *model.Task {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}
	task, err := h.taskStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load task")
		return nil
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return nil
	}
	block, err := h.blockStore.GetByID(task.BlockID)
	if err != nil || block == nil || block.EventID != event.ID {
		writeError(w, http.StatusNotFound, "task not found")
		return nil
	}
	return task
}

// Update toggles completion and/or reassigns a task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	task := h.sharedTask(w, r, event)
	if task == nil {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Done != nil {
		updated, err := h.taskStore.SetDone(task.ID, *req.Done)
		if err != nil {
			h.logger.Error("set task done", "task_id", task.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update task")
			return
		}
		task = updated
	}
	if assignee := strings.TrimSpace(req.AssigneeName); assignee != "" {
		updated, err := h.taskStore.Assign(task.ID, assignee)
		if err != nil {
			h.logger.Error("assign task", "task_id", task.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to assign task")
			return
		}
		task = updated
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("task", "updated", task.BlockID, nil))
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	task := h.sharedTask(w, r, event)
	if task == nil {
		return
	}

	if err := h.taskStore.Delete(task.ID); err != nil {
		h.logger.Error("delete task", "task_id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("task", "deleted", task.BlockID, nil))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
