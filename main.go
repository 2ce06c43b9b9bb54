package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/sirupsen/logrus"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/routes"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/services"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/storage"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/utils"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	db := storage.InitializeDB()
	rdb := storage.InitializeRedis()

	notifier := services.NewQueueNotifier(db, rdb, logger)
	engine := services.NewReservationService(db, services.NewSystemClock(), nil, notifier, logger)
	routes.InitEngine(engine)

	// Delivery to push gateways happens out of process; the worker
	// drains the queue and records the attempt.
	worker := services.NewNotificationWorker(rdb, logger, func(event services.NotificationEvent) error {
		logger.WithFields(logrus.Fields{
			"event":   event.Event,
			"user_id": event.UserID,
		}).Info("notification dispatched")
		return nil
	})
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go worker.Run(workerCtx)

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	// Health check endpoint - CRITICAL for Render
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	reservations := app.Party("/api/reservations", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		reservations.Post("/", routes.CreateReservation)
		reservations.Post("/quote", routes.QuoteReservation)
		reservations.Get("/mine", routes.GetMyReservations)
		reservations.Get("/number/{number:string}", routes.GetReservationByNumber)
		reservations.Get("/{id:uint}", routes.GetReservation)
		reservations.Post("/{id:uint}/confirm", routes.ConfirmReservation)
		reservations.Post("/{id:uint}/checkin", routes.CheckInReservation)
		reservations.Post("/{id:uint}/checkout", routes.CheckOutReservation)
		reservations.Post("/{id:uint}/cancel", routes.CancelReservation)
		reservations.Patch("/{id:uint}/dates", routes.ModifyReservationDates)
		reservations.Post("/{id:uint}/payments", routes.ApplyReservationPayment)
	}

	units := app.Party("/api/units")
	{
		units.Get("/{id:uint}", routes.GetUnit)
		units.Get("/host/{id}", routes.GetUnitsByHost)
		units.Post("/", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware, routes.CreateUnit)
		units.Patch("/{id:uint}", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware, routes.UpdateUnit)
		units.Post("/{id:uint}/deactivate", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware, routes.DeactivateUnit)
		units.Get("/{id:uint}/reservations", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware, routes.GetUnitReservations)
		units.Post("/{id:uint}/rooms", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware, routes.CreateRoom)
		units.Patch("/rooms/{roomID:uint}", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware, routes.UpdateRoom)
		units.Post("/rooms/{roomID:uint}/deactivate", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware, routes.DeactivateRoom)
	}

	availability := app.Party("/api/availability")
	{
		availability.Get("/{resourceType:string}/{id:uint}/calendar", routes.GetResourceCalendar)
		availability.Post("/override", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware, routes.SetAvailabilityOverride)
		availability.Delete("/override/{id:uint}", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware, routes.DeleteAvailabilityOverride)
	}

	policies := app.Party("/api/policies")
	{
		policies.Get("/", routes.ListCancellationPolicies)
	}

	notifications := app.Party("/api/notifications", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		notifications.Get("/", routes.GetMyNotifications)
		notifications.Post("/{id:uint}/read", routes.MarkNotificationRead)
		notifications.Post("/read-all", routes.MarkAllNotificationsRead)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/reservations", routes.AdminListReservations)
		admin.Get("/reservations/{id:uint}", routes.AdminGetReservation)
		admin.Post("/reservations/{id:uint}/cancel", routes.AdminCancelReservation)
		admin.Post("/reservations/{id:uint}/payments", routes.AdminApplyPayment)
		admin.Post("/policies", routes.CreateCancellationPolicy)
		admin.Patch("/policies/{id:uint}", routes.UpdateCancellationPolicy)
		admin.Delete("/policies/{id:uint}", routes.DeleteCancellationPolicy)
		admin.Get("/coupons", routes.ListCoupons)
		admin.Post("/coupons", routes.CreateCoupon)
		admin.Patch("/coupons/{id:uint}", routes.UpdateCoupon)
		admin.Get("/coupons/{id:uint}/redemptions", routes.GetCouponRedemptions)
		admin.Get("/audit-logs", routes.AdminListAuditLogs)
	}

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	// Start server
	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
