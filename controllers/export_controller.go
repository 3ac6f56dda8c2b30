package controllers

import (
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
)

// GET /feedback/sessions/:session_id/export?format=csv|xlsx
func (h *ResultController) Export(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	out, err := h.results.Export(c.Request.Context(), owner(c), sess.ID, c.DefaultQuery("format", "csv"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	// Send as a download
	log.WithFields(log.Fields{"session_id": sess.ID, "file": out.Filename, "bytes": len(out.Body)}).Debug("export generated")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Body)
}
