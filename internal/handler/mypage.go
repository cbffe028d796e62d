package handler

import (
	"github.com/gin-gonic/gin"

	"tripsplit/internal/middleware"
	"tripsplit/internal/service"
)

// MyPageHandler serves the personal dashboard.
type MyPageHandler struct {
	mypage *service.MyPageService
}

// NewMyPageHandler creates a new MyPageHandler.
func NewMyPageHandler(mypage *service.MyPageService) *MyPageHandler {
	return &MyPageHandler{mypage: mypage}
}

// Get handles GET /api/mypage. The page is always the authenticated
// user's own; there is no path parameter to ask for someone else's.
func (h *MyPageHandler) Get(c *gin.Context) {
	page, err := h.mypage.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "my page", page)
}
