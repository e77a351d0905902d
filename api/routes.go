package api

import (
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with recovery, request ids and request logging.
func NewRouter(h *Handler, logger *log.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), RequestLogger(logger))
	SetupRoutes(r, h)
	return r
}

func SetupRoutes(r *gin.Engine, h *Handler) {
	r.GET(TestPath, h.HandleTest)
	r.POST(CompressPath, h.HandleCompress)
}
