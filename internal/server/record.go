package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/alkime/soundboard/internal/keyrec"
	"github.com/alkime/soundboard/internal/keytask"
	"github.com/gin-gonic/gin"
)

type recordStartRequest struct {
	Name string `json:"name" binding:"required"`
}

type recordStatus struct {
	Recording bool   `json:"recording"`
	Target    string `json:"target,omitempty"`
	Pending   string `json:"pending,omitempty"`
}

type bindingBody struct {
	Name        string       `json:"name"`
	KeytaskCode keytask.Code `json:"keytaskCode"`
	Label       string       `json:"label"`
}

type recordKeyResponse struct {
	recordStatus

	Step    string       `json:"step"`
	Binding *bindingBody `json:"binding,omitempty"`
}

// status reads recorder state. Callers hold s.recMu.
func (s *Server) status() recordStatus {
	return recordStatus{
		Recording: s.recorder.IsRecording(),
		Target:    s.recorder.Target(),
		Pending:   s.recorder.Pending(),
	}
}

func (s *Server) handleRecordStatus(c *gin.Context) {
	s.recMu.Lock()
	defer s.recMu.Unlock()

	c.JSON(http.StatusOK, s.status())
}

// handleRecordStart arms the recorder for an existing soundbite.
func (s *Server) handleRecordStart(c *gin.Context) {
	var req recordStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Kind: "bad_arguments", Message: err.Error()})
		return
	}

	if _, err := s.client.Soundbite(c.Request.Context(), req.Name); err != nil {
		s.abortWithError(c, "cannot record for soundbite", err)
		return
	}

	s.recMu.Lock()
	defer s.recMu.Unlock()

	if err := s.recorder.Start(req.Name, s.feed); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, keyrec.ErrAlreadyRecording) {
			status = http.StatusConflict
		}
		c.AbortWithStatusJSON(status, errorBody{Kind: "recorder", Message: err.Error()})

		return
	}

	c.JSON(http.StatusOK, s.status())
}

// handleRecordKey feeds one browser key event to the recorder. A commit is
// sent to the engine in the background and the response does not wait for it.
func (s *Server) handleRecordKey(c *gin.Context) {
	var ev keyrec.KeyEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Kind: "bad_arguments", Message: err.Error()})
		return
	}

	s.recMu.Lock()
	defer s.recMu.Unlock()

	out, ok := s.feed.Dispatch(ev)
	if !ok {
		c.AbortWithStatusJSON(http.StatusConflict, errorBody{Kind: "recorder", Message: "not recording"})
		return
	}

	resp := recordKeyResponse{recordStatus: s.status(), Step: out.Step.String()}
	if out.Commit == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	commit := out.Commit
	resp.Binding = &bindingBody{
		Name:        commit.Target,
		KeytaskCode: commit.Code,
		Label:       commit.Label,
	}

	go func(ctx context.Context) {
		// Run logs its own failures.
		_ = commit.Run(ctx)
	}(c.Request.Context())

	c.JSON(http.StatusAccepted, resp)
}

func (s *Server) handleRecordCancel(c *gin.Context) {
	s.recMu.Lock()
	defer s.recMu.Unlock()

	s.recorder.Stop()
	c.Status(http.StatusNoContent)
}
