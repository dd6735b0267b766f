package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chancia/quizlive/internal/adapters/signal"
	"github.com/chancia/quizlive/internal/app"
	"github.com/chancia/quizlive/internal/config"
	"github.com/chancia/quizlive/internal/core"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware mints the connection-scoped identity used as the
// member id on the quiz socket.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, gw *app.Gateway, oracle core.QuestionOracle) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("QuizSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewQuizWSController(gw, cfg)

	api := r.Group("/api")

	api.GET("/ws/quiz", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws quiz endpoint hit")
		ctrl.HandleQuiz(ctx, c)
	})

	api.GET("/questions", func(c *gin.Context) {
		if oracle == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "questions unavailable"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		questions, err := oracle.Questions(c.Request.Context(), limit)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("questions lookup failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "questions unavailable"})
			return
		}
		c.JSON(http.StatusOK, questions)
	})

	return r
}
