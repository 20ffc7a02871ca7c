package server

import (
	"errors"
	"net/http"

	"github.com/alkime/soundboard/internal/engine"
	"github.com/alkime/soundboard/internal/invoke"
	"github.com/gin-gonic/gin"
)

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (s *Server) handleCommands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"commands": s.bus.Commands()})
}

// handleInvoke passes the request body straight to the named command.
func (s *Server) handleInvoke(c *gin.Context) {
	command := c.Param("command")

	raw, err := c.GetRawData()
	if err != nil {
		s.abortWithError(c, "failed to read request body", err)
		return
	}

	out, err := s.bus.Call(c.Request.Context(), command, raw)
	if err != nil {
		s.abortWithError(c, "command failed", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

// abortWithError maps err to a status and a typed JSON body.
func (s *Server) abortWithError(c *gin.Context, msg string, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, "command", c.Param("command"), requestIDKey, c.GetString(requestIDKey), "error", err)
	} else {
		s.logger.Debug(msg, "command", c.Param("command"), requestIDKey, c.GetString(requestIDKey), "error", err)
	}

	c.AbortWithStatusJSON(status, body)
}

func errorResponse(err error) (int, errorBody) {
	var engErr *engine.Error
	switch {
	case errors.As(err, &engErr):
		return engineStatus(engErr.Kind), errorBody{
			Kind:       string(engErr.Kind),
			Message:    engErr.Message,
			Suggestion: engErr.Suggestion,
		}
	case errors.Is(err, invoke.ErrUnknownCommand):
		return http.StatusNotFound, errorBody{Kind: "unknown_command", Message: err.Error()}
	case errors.Is(err, invoke.ErrBadArguments):
		return http.StatusBadRequest, errorBody{Kind: "bad_arguments", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Kind: "internal", Message: err.Error()}
	}
}

func engineStatus(kind engine.ErrorKind) int {
	switch kind { //nolint:exhaustive // everything else is a bad request
	case engine.KindNotFound, engine.KindNoSoundbiteForKey:
		return http.StatusNotFound
	case engine.KindNameUsed, engine.KindAlreadyExists, engine.KindKeyTaskUsed:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
