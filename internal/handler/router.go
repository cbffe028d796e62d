package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tripsplit/internal/auth"
	"tripsplit/internal/middleware"
	"tripsplit/internal/service"
)

// Services bundles everything the router needs.
type Services struct {
	Auth     *service.AuthService
	Groups   *service.GroupService
	Expenses *service.ExpenseService
	Calendar *service.CalendarService
	Fx       *service.FxService
	MyPage   *service.MyPageService
	JWT      *auth.JWTManager
}

// NewRouter builds the gin engine with the full route table and
// middleware chain. Everything under /api except auth requires a valid
// token.
func NewRouter(svcs Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := NewAuthHandler(svcs.Auth)
	groupHandler := NewGroupHandler(svcs.Groups)
	expenseHandler := NewExpenseHandler(svcs.Expenses)
	calendarHandler := NewCalendarHandler(svcs.Calendar)
	fxHandler := NewFxHandler(svcs.Fx)
	myPageHandler := NewMyPageHandler(svcs.MyPage)

	api := router.Group("/api")
	{
		api.POST("/auth/sign-up", authHandler.SignUp)
		api.POST("/auth/sign-in", authHandler.SignIn)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(svcs.JWT))
	{
		protected.GET("/groups", groupHandler.List)
		protected.POST("/groups", groupHandler.Create)
		protected.GET("/groups/:groupId", groupHandler.Get)
		protected.PATCH("/groups/:groupId", groupHandler.Rename)
		protected.PUT("/groups/:groupId/members", groupHandler.UpdateMembers)

		protected.GET("/groups/:groupId/expenses", expenseHandler.ListByGroup)
		protected.POST("/groups/:groupId/expenses", expenseHandler.Create)
		protected.GET("/expenses/:expenseId", expenseHandler.Get)
		protected.POST("/expenses/:expenseId/receipt", expenseHandler.UploadReceipt)
		protected.GET("/expenses/:expenseId/receipt", expenseHandler.GetReceipt)

		protected.GET("/groups/:groupId/calendar", calendarHandler.List)
		protected.POST("/groups/:groupId/events", calendarHandler.AddEvent)

		protected.GET("/fx/weekly", fxHandler.WeeklyRates)
		protected.GET("/mypage", myPageHandler.Get)
	}

	return router
}
