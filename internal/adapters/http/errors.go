package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/library-service/internal/adapters/http/dto"
)

// noRoute answers unknown paths with a 404 envelope.
func noRoute(c *gin.Context) {
	dto.Abort(c, http.StatusNotFound, dto.MsgNotFound)
}

// noMethod answers known paths called with the wrong method with a 405 envelope.
func noMethod(c *gin.Context) {
	dto.Abort(c, http.StatusMethodNotAllowed, dto.MsgMethodNotAllowed)
}
