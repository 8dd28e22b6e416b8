package api

import (
	"net/http"
	"time"

	"launchpad-token-factory/core"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// RateLimit is requests per second per client IP; zero disables limiting.
	RateLimit uint
}

type Server struct {
	factory *core.Factory
	secret  []byte
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
		Error:   "TooManyRequests",
		Message: "too many requests, try again in " + time.Until(info.ResetTime).String(),
	})
}

func NewRouter(factory *core.Factory, opts Options) *gin.Engine {
	s := &Server{factory: factory, secret: opts.JWTSecret}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger())
	router.Use(corsMiddleware(opts.AllowedOrigins))

	limited := []gin.HandlerFunc{}
	if opts.RateLimit > 0 {
		store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Second,
			Limit: opts.RateLimit,
		})
		limited = append(limited, ratelimit.RateLimiter(store, &ratelimit.Options{
			ErrorHandler: errorHandler,
			KeyFunc:      keyFunc,
		}))
	}
	auth := Auth(opts.JWTSecret)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/events", s.streamEvents)

	public := router.Group("/", limited...)
	{
		public.GET("/fee", s.getFee)
		public.GET("/min-withdrawal", s.getMinWithdrawal)
		public.GET("/referral-percent", s.getReferralPercent)
		public.GET("/owner", s.getOwner)
		public.GET("/treasury", s.getTreasury)
		public.GET("/tokens/:address", s.getToken)
		public.GET("/referral-codes/:code", s.getReferralCode)
		public.GET("/users/:address/referral-code", s.getUserReferralCode)
		public.GET("/users/:address/referral-info", s.getReferralInfo)
		public.GET("/users/:address/referral-details", s.getReferralDetails)
		public.GET("/users/:address/referral-transactions", s.getReferralTransactions)
		public.GET("/users/:address/tokens", s.getCreatorTokens)
		public.GET("/users/:address/balance", s.getBalance)
	}

	private := router.Group("/", append(limited, auth)...)
	{
		private.POST("/tokens", s.createToken)
		private.POST("/referrals/code", s.generateReferralCode)
		private.PUT("/referrals/code", s.updateReferralCode)
		private.POST("/referrals/withdraw", s.withdrawReferralEarnings)
		private.PUT("/admin/fee", s.setFee)
		private.PUT("/admin/referral-percent", s.setReferralPercent)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", requestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", requestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	return cors.New(corsConfig)
}
