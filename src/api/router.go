package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/stake-plus/groupgov/src/config"
	"github.com/stake-plus/groupgov/src/governance"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, engine *governance.Engine, roster governance.RosterProvider) *gin.Engine {
	r := gin.Default()
	attachRoutes(r, cfg, db, rdb, engine, roster)
	return r
}

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, engine *governance.Engine, roster governance.RosterProvider) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(rdb, []byte(cfg.JWTSecret))
	propH := NewProposals(engine, roster)
	blackH := NewBlacklist(db)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/challenge", authH.Challenge)
		v1.POST("/auth/verify", authH.Verify)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.GET("/proposals/:group", propH.List)
		secured.POST("/proposals", propH.Create)
		secured.DELETE("/proposals/:id", propH.Cancel)
		secured.POST("/votes", propH.Vote)
		secured.GET("/blacklist/:group", blackH.List)
	}
}
