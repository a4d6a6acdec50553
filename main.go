package main

import (
	"context"
	"log"
	"os"

	"zerobroker-server/routes"
	"zerobroker-server/services"
	"zerobroker-server/storage"
	"zerobroker-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	storage.InitializeDB()
	storage.InitializeRedis()

	relayCtx, cancelRelay := context.WithCancel(context.Background())
	defer cancelRelay()
	go services.RunMessageRelay(relayCtx)

	app := iris.New()
	app.Validator = validator.New()

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

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	// WebSocket clients cannot set the Authorization header, so the access
	// token may also arrive as a query parameter.
	accessTokenVerifier.Extractors = append(accessTokenVerifier.Extractors, func(ctx iris.Context) string {
		return ctx.URLParam("token")
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}

		return tokenInput.RefreshToken
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/logout", accessTokenVerifierMiddleware, routes.Logout)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		user.Get("/profile", accessTokenVerifierMiddleware, routes.GetProfile)
		user.Put("/profile", accessTokenVerifierMiddleware, routes.UpdateProfile)
		user.Patch("/pushtoken", accessTokenVerifierMiddleware, routes.AlterPushToken)
		user.Patch("/settings/notifications", accessTokenVerifierMiddleware, routes.AllowsNotifications)
	}

	property := app.Party("/api/property")
	{
		property.Get("/listings", routes.GetListings)
		property.Get("/search", routes.SearchProperties)
		property.Get("/{id:uint}", routes.GetProperty)
		property.Post("/", accessTokenVerifierMiddleware, routes.CreateProperty)
		property.Get("/mine", accessTokenVerifierMiddleware, routes.GetMyProperties)
		property.Patch("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateProperty)
		property.Patch("/{id:uint}/status", accessTokenVerifierMiddleware, routes.UpdatePropertyStatus)
	}

	messages := app.Party("/api/messages")
	{
		messages.Post("/", accessTokenVerifierMiddleware, routes.CreateMessage)
		messages.Get("/inbox", accessTokenVerifierMiddleware, routes.GetInbox)
		messages.Post("/read", accessTokenVerifierMiddleware, routes.MarkMessagesRead)
		messages.Get("/ws", accessTokenVerifierMiddleware, routes.MessageSocket)
	}

	assistant := app.Party("/api/assistant")
	{
		assistant.Post("/chat", routes.ChatWithAssistant)
	}

	upload := app.Party("/api/upload")
	{
		upload.Post("/", accessTokenVerifierMiddleware, routes.UploadImage)
		upload.Delete("/", accessTokenVerifierMiddleware, routes.DeleteUploadedImage)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Println("Server starting on port " + port)
	app.Listen(":" + port)
}
